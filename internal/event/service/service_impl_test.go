package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/pulsehub/pulsehub/internal/clock"
	"github.com/pulsehub/pulsehub/internal/event/domain"
	eventrepo "github.com/pulsehub/pulsehub/internal/event/repository"
	"github.com/pulsehub/pulsehub/internal/spacectx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	svc   domain.Service
	genID *snowflake.Node
	clock *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&domain.Event{},
		&domain.EventResponse{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fakeClock,
		Repo:  eventrepo.Provide(),
	})

	return &fixture{db: conn, svc: svc, genID: node, clock: fakeClock}
}

func (f *fixture) spaceCtx() (context.Context, snowflake.ID) {
	spaceID := f.genID.Generate()
	return spacectx.WithSpaceID(context.Background(), int64(spaceID)), spaceID
}

func (f *fixture) createEvent(ctx context.Context, t *testing.T, startsAt time.Time) domain.Event {
	t.Helper()
	event, err := f.svc.Create(ctx, domain.CreateEventRequest{
		ChannelID: f.genID.Generate().String(),
		OwnerID:   f.genID.Generate().String(),
		Title:     "Sunrise Yoga",
		StartsAt:  startsAt,
	})
	require.NoError(t, err)
	return event
}

func TestCreateAppliesDefaults(t *testing.T) {
	f := newFixture(t)
	ctx, spaceID := f.spaceCtx()

	event := f.createEvent(ctx, t, f.clock.Now().Add(48*time.Hour))

	assert.Equal(t, spaceID, event.SpaceID)
	assert.Equal(t, domain.TypeTBD, event.Type)
	assert.Equal(t, "USD", event.Currency)
	assert.Zero(t, event.PriceCents)

	settings := domain.ParseSettings(event.Settings)
	assert.True(t, settings.Reminders.EmailEnabled)
	assert.True(t, settings.Reminders.InAppEnabled)
	assert.False(t, settings.Reminders.SystemEmailSent)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.spaceCtx()
	startsAt := f.clock.Now().Add(time.Hour)

	_, err := f.svc.Create(context.Background(), domain.CreateEventRequest{
		ChannelID: f.genID.Generate().String(),
		OwnerID:   f.genID.Generate().String(),
		Title:     "x",
		StartsAt:  startsAt,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSpace)

	_, err = f.svc.Create(ctx, domain.CreateEventRequest{
		ChannelID: "nope",
		OwnerID:   f.genID.Generate().String(),
		Title:     "x",
		StartsAt:  startsAt,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidChannel)

	_, err = f.svc.Create(ctx, domain.CreateEventRequest{
		ChannelID: f.genID.Generate().String(),
		OwnerID:   f.genID.Generate().String(),
		Title:     "  ",
		StartsAt:  startsAt,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTitle)

	_, err = f.svc.Create(ctx, domain.CreateEventRequest{
		ChannelID: f.genID.Generate().String(),
		OwnerID:   f.genID.Generate().String(),
		Title:     "x",
		Type:      "webinar",
		StartsAt:  startsAt,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidType)

	_, err = f.svc.Create(ctx, domain.CreateEventRequest{
		ChannelID: f.genID.Generate().String(),
		OwnerID:   f.genID.Generate().String(),
		Title:     "x",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStart)
}

func TestUpdateTouchesOnlyProvidedFields(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.spaceCtx()
	event := f.createEvent(ctx, t, f.clock.Now().Add(48*time.Hour))

	f.clock.Advance(10 * time.Minute)
	price := int64(1500)
	updated, err := f.svc.Update(ctx, domain.UpdateEventRequest{
		ID:         event.ID.String(),
		Title:      "Sunset Yoga",
		PriceCents: &price,
	})
	require.NoError(t, err)

	assert.Equal(t, "Sunset Yoga", updated.Title)
	assert.Equal(t, int64(1500), updated.PriceCents)
	assert.Equal(t, event.Type, updated.Type)
	assert.True(t, updated.StartsAt.Equal(event.StartsAt))
	assert.Equal(t, f.clock.Now(), updated.UpdatedAt)
}

func TestUpdateUnknownEvent(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.spaceCtx()

	_, err := f.svc.Update(ctx, domain.UpdateEventRequest{
		ID:    f.genID.Generate().String(),
		Title: "Sunset Yoga",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteRemovesResponses(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.spaceCtx()
	event := f.createEvent(ctx, t, f.clock.Now().Add(48*time.Hour))

	require.NoError(t, f.db.Create(&domain.EventResponse{
		ID:      f.genID.Generate(),
		EventID: event.ID,
		UserID:  f.genID.Generate(),
		Status:  domain.ResponseAttending,
	}).Error)

	require.NoError(t, f.svc.Delete(ctx, event.ID.String()))

	var events, responses int64
	require.NoError(t, f.db.Model(&domain.Event{}).Count(&events).Error)
	require.NoError(t, f.db.Model(&domain.EventResponse{}).Count(&responses).Error)
	assert.Zero(t, events)
	assert.Zero(t, responses)
}

func TestListFiltersByStartTime(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.spaceCtx()

	f.createEvent(ctx, t, f.clock.Now().Add(time.Hour))
	later := f.createEvent(ctx, t, f.clock.Now().Add(3*time.Hour))

	from := f.clock.Now().Add(2 * time.Hour)
	events, err := f.svc.List(ctx, domain.ListEventsRequest{From: &from})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, later.ID, events[0].ID)

	all, err := f.svc.List(ctx, domain.ListEventsRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
