package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/pulsehub/pulsehub/internal/checkout/domain"
	"github.com/pulsehub/pulsehub/internal/clock"
	coursedomain "github.com/pulsehub/pulsehub/internal/course/domain"
	eventdomain "github.com/pulsehub/pulsehub/internal/event/domain"
	obsmetrics "github.com/pulsehub/pulsehub/internal/observability/metrics"
	paywalldomain "github.com/pulsehub/pulsehub/internal/paywall/domain"
	"github.com/pulsehub/pulsehub/internal/providers/payment"
	ticketdomain "github.com/pulsehub/pulsehub/internal/ticket/domain"
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
	Gateway     payment.Gateway
	TicketRepo  ticketdomain.Repository
	EventRepo   eventdomain.Repository
	PaywallRepo paywalldomain.Repository
	CourseRepo  coursedomain.Repository
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	gateway     payment.Gateway
	ticketRepo  ticketdomain.Repository
	eventRepo   eventdomain.Repository
	paywallRepo paywalldomain.Repository
	courseRepo  coursedomain.Repository
	metrics     *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("checkout.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		gateway:     p.Gateway,
		ticketRepo:  p.TicketRepo,
		eventRepo:   p.EventRepo,
		paywallRepo: p.PaywallRepo,
		courseRepo:  p.CourseRepo,
		metrics:     p.Metrics,
	}
}

func (s *Service) Resolve(ctx context.Context, token string) (domain.Outcome, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Outcome{}, domain.ErrInvalidToken
	}

	verification, err := s.gateway.VerifyPayment(ctx, token)
	if errors.Is(err, payment.ErrSessionNotFound) {
		return s.resolveFailure(ctx, token, "session_not_found")
	}
	if err != nil {
		// Transient gateway trouble must not destroy pending rows; the
		// gateway will redirect the buyer again on retry.
		s.log.Warn("payment verification unavailable",
			zap.String("session_token", token),
			zap.Error(err),
		)
		return domain.Outcome{
			Kind:        domain.OutcomePaymentFailed,
			RedirectURL: "/payment/error?reason=verification_unavailable",
		}, nil
	}

	if !verification.Confirmed {
		return s.resolveFailure(ctx, token, verification.FailureReason)
	}
	return s.resolveSuccess(ctx, token, verification.PaymentID)
}

func (s *Service) resolveFailure(ctx context.Context, token, reason string) (domain.Outcome, error) {
	kind := domain.OutcomeUnknown

	ticket, err := s.ticketRepo.FindBySessionToken(ctx, s.db, token)
	if err != nil {
		return domain.Outcome{}, err
	}
	if ticket != nil {
		kind = "ticket"
		if err := s.ticketRepo.DeleteBySessionToken(ctx, s.db, token); err != nil {
			return domain.Outcome{}, err
		}
	}

	purchase, err := s.paywallRepo.FindPurchaseBySessionToken(ctx, s.db, token)
	if err != nil {
		return domain.Outcome{}, err
	}
	if purchase != nil {
		kind = "course"
		now := s.clock.Now()
		if err := s.paywallRepo.MarkPurchaseFailed(ctx, s.db, purchase.ID, now); err != nil {
			return domain.Outcome{}, err
		}
		if err := s.paywallRepo.DeletePurchase(ctx, s.db, purchase.ID); err != nil {
			return domain.Outcome{}, err
		}
	}

	if reason == "" {
		reason = "payment_failed"
	}
	if s.metrics != nil {
		s.metrics.RecordCheckoutResolved(ctx, kind, "failed")
	}
	return domain.Outcome{
		Kind:        domain.OutcomePaymentFailed,
		RedirectURL: "/payment/error?reason=" + url.QueryEscape(reason),
	}, nil
}

func (s *Service) resolveSuccess(ctx context.Context, token, paymentID string) (domain.Outcome, error) {
	ticket, err := s.ticketRepo.FindBySessionToken(ctx, s.db, token)
	if err != nil {
		return domain.Outcome{}, err
	}
	if ticket != nil {
		return s.confirmTicket(ctx, ticket, paymentID)
	}

	purchase, err := s.paywallRepo.FindPurchaseBySessionToken(ctx, s.db, token)
	if err != nil {
		return domain.Outcome{}, err
	}
	if purchase != nil {
		return s.confirmPurchase(ctx, purchase, paymentID)
	}

	// Unknown or already resolved token; the callback is retried by
	// gateways, so this is a benign landing.
	if s.metrics != nil {
		s.metrics.RecordCheckoutResolved(ctx, domain.OutcomeUnknown, "confirmed")
	}
	return domain.Outcome{
		Kind:        domain.OutcomeUnknown,
		RedirectURL: "/payment/success",
	}, nil
}

func (s *Service) confirmTicket(ctx context.Context, ticket *ticketdomain.Ticket, paymentID string) (domain.Outcome, error) {
	now := s.clock.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ticketRepo.Confirm(ctx, tx, ticket.ID, paymentID, now); err != nil {
			return err
		}
		return s.eventRepo.UpsertResponse(ctx, tx, &eventdomain.EventResponse{
			ID:        s.genID.Generate(),
			EventID:   ticket.EventID,
			UserID:    ticket.UserID,
			Status:    eventdomain.ResponseAttending,
			CreatedAt: now,
		})
	})
	if err != nil {
		return domain.Outcome{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordCheckoutResolved(ctx, "ticket", "confirmed")
		s.metrics.RecordTicketIssued(ctx, ticketdomain.StatusConfirmed)
	}
	return domain.Outcome{
		Kind:        domain.OutcomeTicketConfirmed,
		RedirectURL: fmt.Sprintf("/events/%s?payment=success", ticket.EventID),
	}, nil
}

func (s *Service) confirmPurchase(ctx context.Context, purchase *paywalldomain.PaywallPurchase, paymentID string) (domain.Outcome, error) {
	paywall, err := s.paywallRepo.FindByID(ctx, s.db, purchase.PaywallID)
	if err != nil {
		return domain.Outcome{}, err
	}

	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.paywallRepo.ConfirmPurchase(ctx, tx, purchase.ID, paymentID, now); err != nil {
			return err
		}
		if paywall == nil || paywall.CourseID == nil {
			return nil
		}
		insertErr := s.courseRepo.InsertEnrollment(ctx, tx, &coursedomain.CourseEnrollment{
			ID:        s.genID.Generate(),
			UserID:    purchase.UserID,
			CourseID:  *paywall.CourseID,
			Status:    coursedomain.EnrollmentActive,
			CreatedAt: now,
		})
		if insertErr != nil && !db.IsDuplicateKeyErr(insertErr) {
			return insertErr
		}
		return nil
	})
	if err != nil {
		return domain.Outcome{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordCheckoutResolved(ctx, "course", "confirmed")
		s.metrics.RecordEnrollment(ctx, "purchase")
	}

	redirect := "/payment/success"
	if paywall != nil && paywall.CourseID != nil {
		course, err := s.courseRepo.FindByID(ctx, s.db, *paywall.CourseID)
		if err != nil {
			return domain.Outcome{}, err
		}
		if course != nil {
			redirect = fmt.Sprintf("/courses/%s?payment=success", course.ID)
		} else {
			redirect = "/dashboard/courses?payment=success"
		}
	}
	return domain.Outcome{
		Kind:        domain.OutcomePurchaseConfirmed,
		RedirectURL: redirect,
	}, nil
}
