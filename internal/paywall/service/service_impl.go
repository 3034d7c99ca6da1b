package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/pulsehub/pulsehub/internal/clock"
	"github.com/pulsehub/pulsehub/internal/config"
	coursedomain "github.com/pulsehub/pulsehub/internal/course/domain"
	obsmetrics "github.com/pulsehub/pulsehub/internal/observability/metrics"
	"github.com/pulsehub/pulsehub/internal/paywall/domain"
	profiledomain "github.com/pulsehub/pulsehub/internal/profile/domain"
	"github.com/pulsehub/pulsehub/internal/providers/payment"
	spacedomain "github.com/pulsehub/pulsehub/internal/space/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Config      config.Config
	Repo        domain.Repository
	CourseRepo  coursedomain.Repository
	SpaceRepo   spacedomain.Repository
	ProfileRepo profiledomain.Repository
	Gateway     payment.Gateway
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	cfg         config.Config
	repo        domain.Repository
	courseRepo  coursedomain.Repository
	spaceRepo   spacedomain.Repository
	profileRepo profiledomain.Repository
	gateway     payment.Gateway
	metrics     *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("paywall.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		cfg:         p.Config,
		repo:        p.Repo,
		courseRepo:  p.CourseRepo,
		spaceRepo:   p.SpaceRepo,
		profileRepo: p.ProfileRepo,
		gateway:     p.Gateway,
		metrics:     p.Metrics,
	}
}

func parseKind(kind string) (string, error) {
	switch kind {
	case domain.KindCourse, domain.KindChannel:
		return kind, nil
	default:
		return "", domain.ErrInvalidKind
	}
}

func (s *Service) Get(ctx context.Context, entityID, kind string) (*domain.Paywall, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(entityID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidEntity
	}
	k, err := parseKind(kind)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByEntity(ctx, s.db, id, k)
}

func (s *Service) Upsert(ctx context.Context, req domain.UpsertPaywallRequest) (*domain.Paywall, error) {
	spaceID, err := snowflake.ParseString(strings.TrimSpace(req.SpaceID))
	if err != nil || spaceID == 0 {
		return nil, domain.ErrInvalidSpace
	}
	entityID, err := snowflake.ParseString(strings.TrimSpace(req.EntityID))
	if err != nil || entityID == 0 {
		return nil, domain.ErrInvalidEntity
	}
	kind, err := parseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	if req.PriceCents <= 0 {
		return nil, domain.ErrInvalidPrice
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}

	existing, err := s.repo.FindByEntity(ctx, s.db, entityID, kind)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if existing != nil {
		if err := s.repo.UpdatePrice(ctx, s.db, existing.ID, req.PriceCents, currency, now); err != nil {
			return nil, err
		}
		existing.PriceCents = req.PriceCents
		existing.Currency = currency
		existing.UpdatedAt = now
		return existing, nil
	}

	paywall := domain.Paywall{
		ID:         s.genID.Generate(),
		SpaceID:    spaceID,
		PriceCents: req.PriceCents,
		Currency:   currency,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if kind == domain.KindCourse {
		paywall.CourseID = &entityID
	} else {
		paywall.ChannelID = &entityID
	}
	if err := s.repo.Insert(ctx, s.db, &paywall); err != nil {
		return nil, err
	}
	return &paywall, nil
}

func (s *Service) Delete(ctx context.Context, entityID, kind string) error {
	id, err := snowflake.ParseString(strings.TrimSpace(entityID))
	if err != nil || id == 0 {
		return domain.ErrInvalidEntity
	}
	k, err := parseKind(kind)
	if err != nil {
		return err
	}
	return s.repo.DeleteByEntity(ctx, s.db, id, k)
}

func (s *Service) InitiateCoursePurchase(ctx context.Context, courseID, buyerID string) (domain.PurchaseResult, error) {
	cID, err := snowflake.ParseString(strings.TrimSpace(courseID))
	if err != nil || cID == 0 {
		return domain.PurchaseResult{}, domain.ErrInvalidEntity
	}
	uID, err := snowflake.ParseString(strings.TrimSpace(buyerID))
	if err != nil || uID == 0 {
		return domain.PurchaseResult{}, domain.ErrInvalidUser
	}

	course, err := s.courseRepo.FindByID(ctx, s.db, cID)
	if err != nil {
		return domain.PurchaseResult{}, err
	}
	if course == nil {
		return domain.PurchaseResult{}, domain.ErrCourseNotFound
	}

	paywall, err := s.repo.FindByEntity(ctx, s.db, cID, domain.KindCourse)
	if err != nil {
		return domain.PurchaseResult{}, err
	}
	if paywall == nil || paywall.PriceCents <= 0 {
		return domain.PurchaseResult{}, domain.ErrNotForSale
	}

	enrollment, err := s.courseRepo.FindEnrollment(ctx, s.db, uID, cID)
	if err != nil {
		return domain.PurchaseResult{}, err
	}
	if enrollment != nil {
		return domain.PurchaseResult{}, domain.ErrAlreadyEnrolled
	}

	space, err := s.spaceRepo.FindByID(ctx, s.db, course.SpaceID)
	if err != nil {
		return domain.PurchaseResult{}, err
	}
	if space == nil {
		return domain.PurchaseResult{}, domain.ErrNotForSale
	}
	owner, err := s.profileRepo.FindByUserID(ctx, s.db, space.OwnerID)
	if err != nil {
		return domain.PurchaseResult{}, err
	}
	if owner == nil || owner.PayoutKey == nil || strings.TrimSpace(*owner.PayoutKey) == "" {
		return domain.PurchaseResult{}, domain.ErrPayoutNotConfigured
	}

	buyerEmail := ""
	if buyer, err := s.profileRepo.FindByUserID(ctx, s.db, uID); err == nil && buyer != nil {
		buyerEmail = buyer.Email
	}

	commission, _ := payment.Split(paywall.PriceCents, s.cfg.Gateway.CommissionRate)
	session, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		BuyerID:         uID.String(),
		BuyerEmail:      buyerEmail,
		SellerPayoutKey: *owner.PayoutKey,
		ItemName:        course.Title,
		AmountCents:     paywall.PriceCents,
		Currency:        paywall.Currency,
		CommissionCents: commission,
		CallbackURL:     s.cfg.PublicBaseURL + "/callbacks/checkout",
	})
	if err != nil {
		return domain.PurchaseResult{}, fmt.Errorf("%w: %v", payment.ErrCheckoutInit, err)
	}

	now := s.clock.Now()
	token := session.SessionToken
	purchase := domain.PaywallPurchase{
		ID:           s.genID.Generate(),
		PaywallID:    paywall.ID,
		UserID:       uID,
		AmountCents:  paywall.PriceCents,
		Currency:     paywall.Currency,
		Status:       domain.PurchasePending,
		SessionToken: &token,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.InsertPurchase(ctx, s.db, &purchase); err != nil {
		return domain.PurchaseResult{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordCheckoutSession(ctx, "course")
	}
	return domain.PurchaseResult{Purchase: purchase, CheckoutURL: session.CheckoutURL}, nil
}
