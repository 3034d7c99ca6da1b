package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/pulsehub/pulsehub/internal/clock"
	"github.com/pulsehub/pulsehub/internal/config"
	coursedomain "github.com/pulsehub/pulsehub/internal/course/domain"
	courserepo "github.com/pulsehub/pulsehub/internal/course/repository"
	"github.com/pulsehub/pulsehub/internal/paywall/domain"
	paywallrepo "github.com/pulsehub/pulsehub/internal/paywall/repository"
	profiledomain "github.com/pulsehub/pulsehub/internal/profile/domain"
	profilerepo "github.com/pulsehub/pulsehub/internal/profile/repository"
	"github.com/pulsehub/pulsehub/internal/providers/payment"
	spacedomain "github.com/pulsehub/pulsehub/internal/space/domain"
	spacerepo "github.com/pulsehub/pulsehub/internal/space/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	svc     domain.Service
	gateway *payment.FakeGateway
	genID   *snowflake.Node
	clock   *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&domain.Paywall{},
		&domain.PaywallPurchase{},
		&coursedomain.Course{},
		&coursedomain.CourseEnrollment{},
		&spacedomain.Space{},
		&profiledomain.Profile{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	gateway := payment.NewFakeGateway()

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fakeClock,
		Config: config.Config{
			PublicBaseURL: "https://pulsehub.test",
			Gateway:       config.GatewayConfig{CommissionRate: 0.10},
		},
		Repo:        paywallrepo.Provide(),
		CourseRepo:  courserepo.Provide(),
		SpaceRepo:   spacerepo.Provide(),
		ProfileRepo: profilerepo.Provide(),
		Gateway:     gateway,
	})

	return &fixture{db: conn, svc: svc, gateway: gateway, genID: node, clock: fakeClock}
}

// createCourse seeds a course plus its space, with the space owner's
// payout key configured unless payoutKey is empty.
func (f *fixture) createCourse(t *testing.T, payoutKey string) *coursedomain.Course {
	t.Helper()
	ownerID := f.genID.Generate()

	profile := &profiledomain.Profile{
		UserID:      ownerID,
		DisplayName: "Owner",
		Email:       "owner@pulsehub.test",
	}
	if payoutKey != "" {
		profile.PayoutKey = &payoutKey
	}
	require.NoError(t, f.db.Create(profile).Error)

	space := &spacedomain.Space{
		ID:      f.genID.Generate(),
		Slug:    "studio-" + f.genID.Generate().String(),
		Name:    "Studio",
		OwnerID: ownerID,
	}
	require.NoError(t, f.db.Create(space).Error)

	course := &coursedomain.Course{
		ID:        f.genID.Generate(),
		SpaceID:   space.ID,
		ChannelID: f.genID.Generate(),
		Title:     "Strength Foundations",
		Slug:      "strength-foundations",
		Published: true,
	}
	require.NoError(t, f.db.Create(course).Error)
	return course
}

func (f *fixture) setPaywall(t *testing.T, course *coursedomain.Course, priceCents int64) *domain.Paywall {
	t.Helper()
	paywall, err := f.svc.Upsert(context.Background(), domain.UpsertPaywallRequest{
		SpaceID:    course.SpaceID.String(),
		EntityID:   course.ID.String(),
		Kind:       domain.KindCourse,
		PriceCents: priceCents,
	})
	require.NoError(t, err)
	return paywall
}

func TestUpsertCreatesThenUpdatesInPlace(t *testing.T) {
	f := newFixture(t)
	course := f.createCourse(t, "acct_owner")

	created := f.setPaywall(t, course, 4900)
	require.NotNil(t, created.CourseID)
	assert.Equal(t, course.ID, *created.CourseID)
	assert.Nil(t, created.ChannelID)
	assert.Equal(t, "USD", created.Currency)

	updated, err := f.svc.Upsert(context.Background(), domain.UpsertPaywallRequest{
		SpaceID:    course.SpaceID.String(),
		EntityID:   course.ID.String(),
		Kind:       domain.KindCourse,
		PriceCents: 5900,
		Currency:   "eur",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, int64(5900), updated.PriceCents)
	assert.Equal(t, "EUR", updated.Currency)

	var count int64
	require.NoError(t, f.db.Model(&domain.Paywall{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpsertValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Upsert(context.Background(), domain.UpsertPaywallRequest{
		SpaceID: "1", EntityID: "2", Kind: "bundle", PriceCents: 100,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidKind)

	_, err = f.svc.Upsert(context.Background(), domain.UpsertPaywallRequest{
		SpaceID: "1", EntityID: "2", Kind: domain.KindCourse, PriceCents: 0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = f.svc.Upsert(context.Background(), domain.UpsertPaywallRequest{
		SpaceID: "", EntityID: "2", Kind: domain.KindCourse, PriceCents: 100,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSpace)
}

func TestDeleteRemovesPaywall(t *testing.T) {
	f := newFixture(t)
	course := f.createCourse(t, "acct_owner")
	f.setPaywall(t, course, 4900)

	require.NoError(t, f.svc.Delete(context.Background(), course.ID.String(), domain.KindCourse))

	paywall, err := f.svc.Get(context.Background(), course.ID.String(), domain.KindCourse)
	require.NoError(t, err)
	assert.Nil(t, paywall)
}

func TestInitiateCoursePurchase(t *testing.T) {
	f := newFixture(t)
	course := f.createCourse(t, "acct_owner")
	paywall := f.setPaywall(t, course, 4900)
	buyerID := f.genID.Generate()

	result, err := f.svc.InitiateCoursePurchase(context.Background(), course.ID.String(), buyerID.String())
	require.NoError(t, err)

	assert.Equal(t, "https://gateway.test/checkout/"+*result.Purchase.SessionToken, result.CheckoutURL)
	assert.Equal(t, paywall.ID, result.Purchase.PaywallID)
	assert.Equal(t, domain.PurchasePending, result.Purchase.Status)
	assert.Equal(t, int64(4900), result.Purchase.AmountCents)

	req, ok := f.gateway.LastRequest(*result.Purchase.SessionToken)
	require.True(t, ok)
	assert.Equal(t, "acct_owner", req.SellerPayoutKey)
	assert.Equal(t, int64(4900), req.AmountCents)
	assert.Equal(t, int64(490), req.CommissionCents)
	assert.Equal(t, "Strength Foundations", req.ItemName)
	assert.Equal(t, "https://pulsehub.test/callbacks/checkout", req.CallbackURL)

	var count int64
	require.NoError(t, f.db.Model(&domain.PaywallPurchase{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestInitiateCoursePurchaseNotForSale(t *testing.T) {
	f := newFixture(t)
	course := f.createCourse(t, "acct_owner")
	buyerID := f.genID.Generate()

	_, err := f.svc.InitiateCoursePurchase(context.Background(), course.ID.String(), buyerID.String())
	assert.ErrorIs(t, err, domain.ErrNotForSale)
}

func TestInitiateCoursePurchaseAlreadyEnrolled(t *testing.T) {
	f := newFixture(t)
	course := f.createCourse(t, "acct_owner")
	f.setPaywall(t, course, 4900)
	buyerID := f.genID.Generate()

	require.NoError(t, f.db.Create(&coursedomain.CourseEnrollment{
		ID:       f.genID.Generate(),
		UserID:   buyerID,
		CourseID: course.ID,
		Status:   coursedomain.EnrollmentActive,
	}).Error)

	_, err := f.svc.InitiateCoursePurchase(context.Background(), course.ID.String(), buyerID.String())
	assert.ErrorIs(t, err, domain.ErrAlreadyEnrolled)
}

func TestInitiateCoursePurchasePayoutMissing(t *testing.T) {
	f := newFixture(t)
	course := f.createCourse(t, "")
	f.setPaywall(t, course, 4900)
	buyerID := f.genID.Generate()

	_, err := f.svc.InitiateCoursePurchase(context.Background(), course.ID.String(), buyerID.String())
	assert.ErrorIs(t, err, domain.ErrPayoutNotConfigured)

	var count int64
	require.NoError(t, f.db.Model(&domain.PaywallPurchase{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestInitiateCoursePurchaseUnknownCourse(t *testing.T) {
	f := newFixture(t)
	buyerID := f.genID.Generate()

	_, err := f.svc.InitiateCoursePurchase(context.Background(), f.genID.Generate().String(), buyerID.String())
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)
}
