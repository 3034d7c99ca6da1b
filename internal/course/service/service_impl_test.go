package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/pulsehub/pulsehub/internal/clock"
	"github.com/pulsehub/pulsehub/internal/course/domain"
	courserepo "github.com/pulsehub/pulsehub/internal/course/repository"
	paywalldomain "github.com/pulsehub/pulsehub/internal/paywall/domain"
	paywallrepo "github.com/pulsehub/pulsehub/internal/paywall/repository"
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
		&domain.Course{},
		&domain.CourseEnrollment{},
		&paywalldomain.Paywall{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:          conn,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       fakeClock,
		Repo:        courserepo.Provide(),
		PaywallRepo: paywallrepo.Provide(),
	})

	return &fixture{db: conn, svc: svc, genID: node, clock: fakeClock}
}

func (f *fixture) createCourse(t *testing.T) *domain.Course {
	t.Helper()
	course, err := f.svc.Create(context.Background(), domain.CreateCourseRequest{
		SpaceID:   f.genID.Generate().String(),
		ChannelID: f.genID.Generate().String(),
		Title:     "Mobility Reset",
		Published: true,
	})
	require.NoError(t, err)
	return course
}

func TestCreateSlugsTitle(t *testing.T) {
	f := newFixture(t)
	course := f.createCourse(t)
	assert.Equal(t, "mobility-reset", course.Slug)
	assert.True(t, course.Published)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), domain.CreateCourseRequest{
		SpaceID: "nope", ChannelID: "1", Title: "x",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSpace)

	_, err = f.svc.Create(context.Background(), domain.CreateCourseRequest{
		SpaceID: f.genID.Generate().String(), ChannelID: f.genID.Generate().String(), Title: "  ",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTitle)
}

func TestEnrollFreeCourse(t *testing.T) {
	f := newFixture(t)
	course := f.createCourse(t)
	userID := f.genID.Generate()

	enrollment, err := f.svc.Enroll(context.Background(), course.ID.String(), userID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.EnrollmentActive, enrollment.Status)
	assert.Equal(t, course.ID, enrollment.CourseID)
}

func TestEnrollTwiceFoldsToExisting(t *testing.T) {
	f := newFixture(t)
	course := f.createCourse(t)
	userID := f.genID.Generate()

	first, err := f.svc.Enroll(context.Background(), course.ID.String(), userID.String())
	require.NoError(t, err)
	second, err := f.svc.Enroll(context.Background(), course.ID.String(), userID.String())
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, f.db.Model(&domain.CourseEnrollment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnrollPaywalledCourseRejected(t *testing.T) {
	f := newFixture(t)
	course := f.createCourse(t)
	userID := f.genID.Generate()

	require.NoError(t, f.db.Create(&paywalldomain.Paywall{
		ID:         f.genID.Generate(),
		SpaceID:    course.SpaceID,
		CourseID:   &course.ID,
		PriceCents: 2900,
		Currency:   "USD",
	}).Error)

	_, err := f.svc.Enroll(context.Background(), course.ID.String(), userID.String())
	assert.ErrorIs(t, err, domain.ErrPaywalled)

	var count int64
	require.NoError(t, f.db.Model(&domain.CourseEnrollment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEnrollUnknownCourse(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Enroll(context.Background(), f.genID.Generate().String(), f.genID.Generate().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListEnrollmentsByUser(t *testing.T) {
	f := newFixture(t)
	userID := f.genID.Generate()
	first := f.createCourse(t)
	second := f.createCourse(t)

	_, err := f.svc.Enroll(context.Background(), first.ID.String(), userID.String())
	require.NoError(t, err)
	_, err = f.svc.Enroll(context.Background(), second.ID.String(), userID.String())
	require.NoError(t, err)

	enrollments, err := f.svc.ListEnrollments(context.Background(), userID.String())
	require.NoError(t, err)
	assert.Len(t, enrollments, 2)
}