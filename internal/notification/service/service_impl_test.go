package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/pulsehub/pulsehub/internal/clock"
	"github.com/pulsehub/pulsehub/internal/notification/domain"
	notificationrepo "github.com/pulsehub/pulsehub/internal/notification/repository"
	"github.com/pulsehub/pulsehub/pkg/db/pagination"
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
	require.NoError(t, conn.AutoMigrate(&domain.Notification{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		Clock: fakeClock,
		Repo:  notificationrepo.Provide(),
	})

	return &fixture{db: conn, svc: svc, genID: node, clock: fakeClock}
}

func (f *fixture) notify(t *testing.T, userID snowflake.ID, title string) *domain.Notification {
	t.Helper()
	n := &domain.Notification{
		ID:        f.genID.Generate(),
		SpaceID:   f.genID.Generate(),
		UserID:    userID,
		Kind:      domain.KindEventReminder,
		Title:     title,
		CreatedAt: f.clock.Now(),
	}
	require.NoError(t, f.db.Create(n).Error)
	f.clock.Advance(time.Minute)
	return n
}

func TestListPaginatesNewestFirst(t *testing.T) {
	f := newFixture(t)
	userID := f.genID.Generate()
	f.notify(t, userID, "first")
	f.notify(t, userID, "second")
	f.notify(t, userID, "third")

	page1, info, err := f.svc.List(context.Background(), userID.String(), false, pagination.Pagination{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, "third", page1[0].Title)
	assert.Equal(t, "second", page1[1].Title)
	assert.True(t, info.HasMore)
	require.NotEmpty(t, info.NextPageToken)

	page2, info, err := f.svc.List(context.Background(), userID.String(), false, pagination.Pagination{
		PageSize:  2,
		PageToken: info.NextPageToken,
	})
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "first", page2[0].Title)
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextPageToken)
}

func TestListUnreadOnly(t *testing.T) {
	f := newFixture(t)
	userID := f.genID.Generate()
	read := f.notify(t, userID, "read")
	f.notify(t, userID, "unread")

	require.NoError(t, f.svc.MarkRead(context.Background(), read.ID.String(), userID.String()))

	unread, _, err := f.svc.List(context.Background(), userID.String(), true, pagination.Pagination{})
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "unread", unread[0].Title)
}

func TestMarkReadOwnershipEnforced(t *testing.T) {
	f := newFixture(t)
	owner := f.genID.Generate()
	other := f.genID.Generate()
	n := f.notify(t, owner, "hello")

	err := f.svc.MarkRead(context.Background(), n.ID.String(), other.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var stored domain.Notification
	require.NoError(t, f.db.First(&stored, "id = ?", n.ID).Error)
	assert.Nil(t, stored.ReadAt)
}

func TestMarkAllReadCountsRows(t *testing.T) {
	f := newFixture(t)
	userID := f.genID.Generate()
	f.notify(t, userID, "a")
	f.notify(t, userID, "b")
	f.notify(t, f.genID.Generate(), "someone else")

	count, err := f.svc.MarkAllRead(context.Background(), userID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = f.svc.MarkAllRead(context.Background(), userID.String())
	require.NoError(t, err)
	assert.Zero(t, count)
}
