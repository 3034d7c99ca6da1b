package reminder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	announcementdomain "github.com/pulsehub/pulsehub/internal/announcement/domain"
	"github.com/pulsehub/pulsehub/internal/authorization"
	"github.com/pulsehub/pulsehub/internal/clock"
	"github.com/pulsehub/pulsehub/internal/config"
	eventdomain "github.com/pulsehub/pulsehub/internal/event/domain"
	"github.com/pulsehub/pulsehub/internal/lock"
	notificationdomain "github.com/pulsehub/pulsehub/internal/notification/domain"
	obsmetrics "github.com/pulsehub/pulsehub/internal/observability/metrics"
	paywalldomain "github.com/pulsehub/pulsehub/internal/paywall/domain"
	profiledomain "github.com/pulsehub/pulsehub/internal/profile/domain"
	"github.com/pulsehub/pulsehub/internal/providers/email"
	spacedomain "github.com/pulsehub/pulsehub/internal/space/domain"
	ticketdomain "github.com/pulsehub/pulsehub/internal/ticket/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	DB               *gorm.DB
	Log              *zap.Logger
	GenID            *snowflake.Node
	Clock            clock.Clock
	AppConfig        config.Config
	Holder           *config.ReminderConfigHolder
	EventRepo        eventdomain.Repository
	TicketRepo       ticketdomain.Repository
	PaywallRepo      paywalldomain.Repository
	NotificationRepo notificationdomain.Repository
	AnnouncementRepo announcementdomain.Repository
	SpaceRepo        spacedomain.Repository
	ProfileRepo      profiledomain.Repository
	Email            email.Provider
	AuthzSvc         authorization.Service
	Locker           *lock.Locker        `optional:"true"`
	Metrics          *obsmetrics.Metrics `optional:"true"`
	Config           Config              `optional:"true"`
}

type Scheduler struct {
	db               *gorm.DB
	log              *zap.Logger
	cfg              Config
	genID            *snowflake.Node
	clock            clock.Clock
	appCfg           config.Config
	holder           *config.ReminderConfigHolder
	eventRepo        eventdomain.Repository
	ticketRepo       ticketdomain.Repository
	paywallRepo      paywalldomain.Repository
	notificationRepo notificationdomain.Repository
	announcementRepo announcementdomain.Repository
	spaceRepo        spacedomain.Repository
	profileRepo      profiledomain.Repository
	email            email.Provider
	authzSvc         authorization.Service
	locker           *lock.Locker
	metrics          *obsmetrics.Metrics
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.GenID == nil || p.Clock == nil || p.Holder == nil ||
		p.EventRepo == nil || p.TicketRepo == nil || p.PaywallRepo == nil ||
		p.NotificationRepo == nil || p.AnnouncementRepo == nil || p.SpaceRepo == nil ||
		p.ProfileRepo == nil || p.Email == nil || p.AuthzSvc == nil {
		return nil, ErrInvalidConfig
	}
	cfg := p.Config.withDefaults()
	return &Scheduler{
		db:               p.DB,
		log:              p.Log.Named("reminder").With(zap.String("component", "scheduler")),
		cfg:              cfg,
		genID:            p.GenID,
		clock:            p.Clock,
		appCfg:           p.AppConfig,
		holder:           p.Holder,
		eventRepo:        p.EventRepo,
		ticketRepo:       p.TicketRepo,
		paywallRepo:      p.PaywallRepo,
		notificationRepo: p.NotificationRepo,
		announcementRepo: p.AnnouncementRepo,
		spaceRepo:        p.SpaceRepo,
		profileRepo:      p.ProfileRepo,
		email:            p.Email,
		authzSvc:         p.AuthzSvc,
		locker:           p.Locker,
		metrics:          p.Metrics,
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	batchSize int,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	ctx, run, owner := s.ensureJobRun(ctx, name, batchSize)
	if owner {
		s.logJobStart(ctx, run)
	}
	log := s.logger(ctx).With(
		zap.String("job", name),
		zap.String("run_id", run.runID),
	)
	schedMetrics := obsmetrics.Scheduler()
	schedMetrics.IncJobRun(name)

	err := fn(ctx)
	schedMetrics.ObserveJobDuration(name, time.Since(start))
	if owner {
		if err != nil && run != nil && run.errorCount == 0 {
			run.IncError()
		}
		s.logJobFinish(ctx, run)
	}
	if err == nil {
		return nil
	}

	isTimeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
	if isTimeout {
		schedMetrics.IncJobTimeout(name)
	}
	schedMetrics.IncJobError(name, err)
	if isTimeout {
		log.Warn("job timed out",
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error

	jobs := []struct {
		Name    string
		Enabled bool
		Run     func(context.Context) error
	}{
		{"email_reminders", s.isJobEnabled("email_reminders"), func(ctx context.Context) error {
			return s.runJob(ctx, "email_reminders", s.cfg.BatchSize, s.cfg.JobTimeout, s.EmailRemindersJob)
		}},
		{"in_app_reminders", s.isJobEnabled("in_app_reminders"), func(ctx context.Context) error {
			return s.runJob(ctx, "in_app_reminders", s.cfg.BatchSize, s.cfg.JobTimeout, s.InAppRemindersJob)
		}},
		{"announcements", s.isJobEnabled("announcements"), func(ctx context.Context) error {
			return s.runJob(ctx, "announcements", s.cfg.BatchSize, s.cfg.JobTimeout, s.AnnouncementsJob)
		}},
		{"expire_pending", s.isJobEnabled("expire_pending"), func(ctx context.Context) error {
			return s.runJob(ctx, "expire_pending", s.cfg.BatchSize, s.cfg.JobTimeout, s.ExpirePendingJob)
		}},
	}

	for _, job := range jobs {
		if job.Enabled {
			err = errors.Join(err, job.Run(parent))
		}
	}

	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()
	nextRun := s.clock.Now().Add(s.cfg.RunInterval)
	schedMetrics := obsmetrics.Scheduler()

	for {
		runLag := time.Since(nextRun)
		if runLag > 0 {
			schedMetrics.ObserveRunLoopLag(runLag)
		}
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}
		nextRun = nextRun.Add(s.cfg.RunInterval)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	// Empty EnabledJobs means all jobs run (monolith mode).
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}

func (s *Scheduler) authorizeSystem(ctx context.Context, spaceID snowflake.ID, object, action string) error {
	if s.authzSvc == nil {
		return authorization.ErrForbidden
	}
	return s.authzSvc.Authorize(ctx, "system", spaceID.String(), object, action)
}

// withSweepLock takes the named redis lock around fn when a locker is
// configured. Lock trouble is never fatal; the reminder-state table keeps
// duplicate sweeps harmless.
func (s *Scheduler) withSweepLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if s.locker == nil {
		return fn(ctx)
	}
	token, ok, err := s.locker.TryLock(ctx, key, s.cfg.LockTTL)
	if err != nil {
		s.log.Warn("sweep lock unavailable, continuing without it",
			zap.String("lock_key", key),
			zap.Error(err),
		)
		return fn(ctx)
	}
	if !ok {
		s.log.Debug("sweep lock held elsewhere, skipping pass",
			zap.String("lock_key", key),
		)
		return nil
	}
	defer func() {
		if releaseErr := s.locker.Release(context.WithoutCancel(ctx), key, token); releaseErr != nil {
			s.log.Warn("sweep lock release failed",
				zap.String("lock_key", key),
				zap.Error(releaseErr),
			)
		}
	}()
	return fn(ctx)
}
