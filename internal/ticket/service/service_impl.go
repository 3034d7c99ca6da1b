package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/pulsehub/pulsehub/internal/clock"
	"github.com/pulsehub/pulsehub/internal/config"
	eventdomain "github.com/pulsehub/pulsehub/internal/event/domain"
	obsmetrics "github.com/pulsehub/pulsehub/internal/observability/metrics"
	profiledomain "github.com/pulsehub/pulsehub/internal/profile/domain"
	"github.com/pulsehub/pulsehub/internal/providers/payment"
	"github.com/pulsehub/pulsehub/internal/ticket/domain"
	"github.com/pulsehub/pulsehub/pkg/db"
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
	EventRepo   eventdomain.Repository
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
	eventRepo   eventdomain.Repository
	profileRepo profiledomain.Repository
	gateway     payment.Gateway
	metrics     *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("ticket.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		cfg:         p.Config,
		repo:        p.Repo,
		eventRepo:   p.EventRepo,
		profileRepo: p.ProfileRepo,
		gateway:     p.Gateway,
		metrics:     p.Metrics,
	}
}

func (s *Service) RequestTicket(ctx context.Context, eventID, userID string) (domain.TicketResult, error) {
	evID, err := snowflake.ParseString(strings.TrimSpace(eventID))
	if err != nil || evID == 0 {
		return domain.TicketResult{}, domain.ErrInvalidEvent
	}
	uID, err := snowflake.ParseString(strings.TrimSpace(userID))
	if err != nil || uID == 0 {
		return domain.TicketResult{}, domain.ErrInvalidUser
	}

	event, err := s.eventRepo.FindByID(ctx, s.db, evID)
	if err != nil {
		return domain.TicketResult{}, err
	}
	if event == nil {
		return domain.TicketResult{}, domain.ErrEventNotFound
	}

	existing, err := s.repo.FindByEventAndUser(ctx, s.db, evID, uID)
	if err != nil {
		return domain.TicketResult{}, err
	}
	if existing != nil {
		return s.restore(ctx, event, existing, uID)
	}

	if event.Free() {
		return s.issueFree(ctx, event, uID)
	}
	return s.initiatePaid(ctx, event, uID)
}

// restore self-heals a missing event response for an already ticketed user.
func (s *Service) restore(ctx context.Context, event *eventdomain.Event, ticket *domain.Ticket, userID snowflake.ID) (domain.TicketResult, error) {
	if err := s.upsertResponse(ctx, s.db, event.ID, userID); err != nil {
		return domain.TicketResult{}, err
	}
	return domain.TicketResult{Ticket: *ticket, Restored: true}, nil
}

func (s *Service) issueFree(ctx context.Context, event *eventdomain.Event, userID snowflake.ID) (domain.TicketResult, error) {
	now := s.clock.Now()
	ticket := domain.Ticket{
		ID:        s.genID.Generate(),
		EventID:   event.ID,
		UserID:    userID,
		Status:    domain.StatusConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &ticket); err != nil {
			return err
		}
		return s.upsertResponse(ctx, tx, event.ID, userID)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			// lost the race to a concurrent request, fold into restore
			existing, findErr := s.repo.FindByEventAndUser(ctx, s.db, event.ID, userID)
			if findErr != nil {
				return domain.TicketResult{}, findErr
			}
			if existing != nil {
				return s.restore(ctx, event, existing, userID)
			}
		}
		return domain.TicketResult{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordTicketIssued(ctx, domain.StatusConfirmed)
	}
	return domain.TicketResult{Ticket: ticket, Free: true}, nil
}

func (s *Service) initiatePaid(ctx context.Context, event *eventdomain.Event, userID snowflake.ID) (domain.TicketResult, error) {
	owner, err := s.profileRepo.FindByUserID(ctx, s.db, event.OwnerID)
	if err != nil {
		return domain.TicketResult{}, err
	}
	if owner == nil || owner.PayoutKey == nil || strings.TrimSpace(*owner.PayoutKey) == "" {
		return domain.TicketResult{}, domain.ErrPayoutNotConfigured
	}

	if event.MaxAttendees != nil && *event.MaxAttendees > 0 {
		count, err := s.repo.CountByEvent(ctx, s.db, event.ID)
		if err != nil {
			return domain.TicketResult{}, err
		}
		if count >= int64(*event.MaxAttendees) {
			return domain.TicketResult{}, domain.ErrEventFull
		}
	}

	buyerEmail := ""
	if buyer, err := s.profileRepo.FindByUserID(ctx, s.db, userID); err == nil && buyer != nil {
		buyerEmail = buyer.Email
	}

	commission, _ := payment.Split(event.PriceCents, s.cfg.Gateway.CommissionRate)
	session, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		BuyerID:         userID.String(),
		BuyerEmail:      buyerEmail,
		SellerPayoutKey: *owner.PayoutKey,
		ItemName:        event.Title,
		AmountCents:     event.PriceCents,
		Currency:        event.Currency,
		CommissionCents: commission,
		CallbackURL:     s.cfg.PublicBaseURL + "/callbacks/checkout",
	})
	if err != nil {
		return domain.TicketResult{}, fmt.Errorf("%w: %v", payment.ErrCheckoutInit, err)
	}

	now := s.clock.Now()
	token := session.SessionToken
	ticket := domain.Ticket{
		ID:           s.genID.Generate(),
		EventID:      event.ID,
		UserID:       userID,
		Status:       domain.StatusPending,
		SessionToken: &token,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, s.db, &ticket); err != nil {
		if db.IsDuplicateKeyErr(err) {
			existing, findErr := s.repo.FindByEventAndUser(ctx, s.db, event.ID, userID)
			if findErr != nil {
				return domain.TicketResult{}, findErr
			}
			if existing != nil {
				return s.restore(ctx, event, existing, userID)
			}
		}
		return domain.TicketResult{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordCheckoutSession(ctx, "ticket")
	}
	return domain.TicketResult{Ticket: ticket, CheckoutURL: session.CheckoutURL}, nil
}

func (s *Service) upsertResponse(ctx context.Context, tx *gorm.DB, eventID, userID snowflake.ID) error {
	return s.eventRepo.UpsertResponse(ctx, tx, &eventdomain.EventResponse{
		ID:        s.genID.Generate(),
		EventID:   eventID,
		UserID:    userID,
		Status:    eventdomain.ResponseAttending,
		CreatedAt: s.clock.Now(),
	})
}
