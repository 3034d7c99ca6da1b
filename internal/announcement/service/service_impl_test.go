package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/pulsehub/pulsehub/internal/announcement/domain"
	announcementrepo "github.com/pulsehub/pulsehub/internal/announcement/repository"
	"github.com/pulsehub/pulsehub/internal/clock"
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
	require.NoError(t, conn.AutoMigrate(&domain.ScheduledAnnouncement{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fakeClock,
		Repo:  announcementrepo.Provide(),
	})

	return &fixture{db: conn, svc: svc, genID: node, clock: fakeClock}
}

func TestCreateDefaultsAudience(t *testing.T) {
	f := newFixture(t)

	announcement, err := f.svc.Create(context.Background(), domain.CreateAnnouncementRequest{
		SpaceID:     f.genID.Generate().String(),
		EventID:     f.genID.Generate().String(),
		Subject:     "Bring water",
		Body:        "It will be hot.",
		ScheduledAt: f.clock.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.AudienceGoing, announcement.Audience)
	assert.Equal(t, domain.StatusPending, announcement.Status)
	assert.Equal(t, time.UTC, announcement.ScheduledAt.Location())
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	spaceID := f.genID.Generate().String()
	eventID := f.genID.Generate().String()
	at := f.clock.Now().Add(time.Hour)

	_, err := f.svc.Create(context.Background(), domain.CreateAnnouncementRequest{
		SpaceID: spaceID, EventID: eventID, Audience: "everyone", Subject: "x", ScheduledAt: at,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAudience)

	_, err = f.svc.Create(context.Background(), domain.CreateAnnouncementRequest{
		SpaceID: spaceID, EventID: eventID, Subject: "  ", ScheduledAt: at,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSubject)

	_, err = f.svc.Create(context.Background(), domain.CreateAnnouncementRequest{
		SpaceID: spaceID, EventID: eventID, Subject: "x",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSchedule)

	_, err = f.svc.Create(context.Background(), domain.CreateAnnouncementRequest{
		SpaceID: "bad", EventID: eventID, Subject: "x", ScheduledAt: at,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSpace)
}

func TestListByEventOrdersBySchedule(t *testing.T) {
	f := newFixture(t)
	spaceID := f.genID.Generate().String()
	eventID := f.genID.Generate()

	for _, offset := range []time.Duration{2 * time.Hour, time.Hour} {
		_, err := f.svc.Create(context.Background(), domain.CreateAnnouncementRequest{
			SpaceID:     spaceID,
			EventID:     eventID.String(),
			Subject:     "update",
			ScheduledAt: f.clock.Now().Add(offset),
		})
		require.NoError(t, err)
	}

	listed, err := f.svc.ListByEvent(context.Background(), eventID.String())
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.True(t, listed[0].ScheduledAt.Before(listed[1].ScheduledAt))
}

func TestDeleteUnknownAnnouncement(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Delete(context.Background(), f.genID.Generate().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteRemovesRow(t *testing.T) {
	f := newFixture(t)

	announcement, err := f.svc.Create(context.Background(), domain.CreateAnnouncementRequest{
		SpaceID:     f.genID.Generate().String(),
		EventID:     f.genID.Generate().String(),
		Subject:     "update",
		ScheduledAt: f.clock.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), announcement.ID.String()))

	var count int64
	require.NoError(t, f.db.Model(&domain.ScheduledAnnouncement{}).Count(&count).Error)
	assert.Zero(t, count)
}
