package reminder

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/snowflake"
	announcementdomain "github.com/pulsehub/pulsehub/internal/announcement/domain"
	"github.com/pulsehub/pulsehub/internal/authorization"
	eventdomain "github.com/pulsehub/pulsehub/internal/event/domain"
	notificationdomain "github.com/pulsehub/pulsehub/internal/notification/domain"
	obsmetrics "github.com/pulsehub/pulsehub/internal/observability/metrics"
	profiledomain "github.com/pulsehub/pulsehub/internal/profile/domain"
	"github.com/pulsehub/pulsehub/pkg/db"
	"go.uber.org/zap"
)

const (
	lockKeyEmailSweep    = "reminders:sweep:email"
	lockKeyInAppSweep    = "reminders:sweep:in_app"
	lockKeyAnnouncements = "reminders:sweep:announcements"
	lockKeyExpirePending = "reminders:sweep:expire_pending"
)

// EmailRunStats reports a single email sweep; the HTTP trigger echoes it
// back to the caller.
type EmailRunStats struct {
	EventsProcessed int `json:"eventsProcessed"`
	EmailsSent      int `json:"emailsSent"`
	EmailsFailed    int `json:"emailsFailed"`
}

func (s *Scheduler) EmailRemindersJob(ctx context.Context) error {
	_, err := s.RunEmailReminders(ctx)
	return err
}

func (s *Scheduler) RunEmailReminders(ctx context.Context) (EmailRunStats, error) {
	ctx, run, owner := s.ensureJobRun(ctx, "email_reminders", s.cfg.BatchSize)
	if owner {
		s.logJobStart(ctx, run)
		defer s.logJobFinish(ctx, run)
	}

	var stats EmailRunStats
	err := s.withSweepLock(ctx, lockKeyEmailSweep, func(ctx context.Context) error {
		return s.emailSweep(ctx, run, &stats)
	})
	return stats, err
}

func (s *Scheduler) emailSweep(ctx context.Context, run *jobRun, stats *EmailRunStats) error {
	now := s.clock.Now()
	window := s.holder.Get().Email
	from := now.Add(time.Duration(window.MinOffsetMin) * time.Minute)
	to := now.Add(time.Duration(window.MaxOffsetMin) * time.Minute)
	schedMetrics := obsmetrics.Scheduler()
	jobName := "email_reminders"

	lockStart := time.Now()
	events, err := s.eventRepo.ListStartingBetween(ctx, s.db, from, to, s.cfg.BatchSize)
	schedMetrics.ObserveDBLockWait(obsmetrics.LockResourceEventsForEmailReminders, time.Since(lockStart))
	if err != nil {
		s.logSchedulerError(ctx, run, "scheduler.event.fetch.failed", jobName, 0, err)
		return err
	}
	if len(events) == 0 {
		schedMetrics.IncBatchDeferred(jobName, obsmetrics.SchedulerBatchDeferredReasonSkipLockedEmpty)
		return nil
	}

	var jobErr error
	for _, event := range events {
		if ctx.Err() != nil {
			jobErr = errors.Join(jobErr, ctx.Err())
			break
		}
		settings := eventdomain.ParseSettings(event.Settings)
		if !settings.Reminders.EmailEnabled {
			continue
		}
		if settings.Reminders.SystemEmailSent {
			schedMetrics.IncBatchDeferred(jobName, obsmetrics.SchedulerBatchDeferredReasonAlreadySent)
			continue
		}
		if err := s.authorizeSystem(ctx, event.SpaceID, authorization.ObjectReminder, authorization.ActionReminderRun); err != nil {
			jobErr = errors.Join(jobErr, err)
			s.logSchedulerError(ctx, run, "scheduler.authorize.failed", jobName, event.SpaceID, err,
				zap.String("event_id", idString(event.ID)),
			)
			continue
		}

		claimed, err := s.claimReminder(ctx, event.ID, eventdomain.ReminderChannelEmail, now)
		if err != nil {
			jobErr = errors.Join(jobErr, err)
			s.logSchedulerError(ctx, run, "scheduler.reminder.claim.failed", jobName, event.SpaceID, err,
				zap.String("event_id", idString(event.ID)),
			)
			continue
		}
		if !claimed {
			schedMetrics.IncBatchDeferred(jobName, obsmetrics.SchedulerBatchDeferredReasonAlreadySent)
			continue
		}
		s.logEventClaimed(ctx, jobName, event.SpaceID, event.ID, eventdomain.ReminderChannelEmail)

		sent, failed := s.fanOutEmails(ctx, event)
		stats.EmailsSent += sent
		stats.EmailsFailed += failed
		stats.EventsProcessed++
		run.AddProcessed(1)

		// The claim row already guards re-delivery; the flag mirrors it
		// for read models even when some recipients failed.
		settings.Reminders.SystemEmailSent = true
		if err := s.eventRepo.UpdateSettings(ctx, s.db, event.ID, settings.ToBlob()); err != nil {
			jobErr = errors.Join(jobErr, err)
			s.logSchedulerError(ctx, run, "scheduler.settings.mirror.failed", jobName, event.SpaceID, err,
				zap.String("event_id", idString(event.ID)),
			)
		}
	}

	if stats.EventsProcessed > 0 {
		schedMetrics.AddBatchProcessed(jobName, "events", stats.EventsProcessed)
	}
	return jobErr
}

func (s *Scheduler) fanOutEmails(ctx context.Context, event *eventdomain.Event) (sent int, failed int) {
	recipients, err := s.reminderRecipients(ctx, event.ID)
	if err != nil {
		s.logger(ctx).Warn("reminder recipients lookup failed",
			zap.String("event_id", idString(event.ID)),
			zap.Error(err),
		)
		return 0, 0
	}

	var (
		wg       sync.WaitGroup
		sentN    atomic.Int64
		failedN  atomic.Int64
		startFmt = event.StartsAt.Format(time.RFC1123)
	)
	for _, recipient := range recipients {
		if recipient.Email == "" {
			continue
		}
		wg.Add(1)
		go func(p *profiledomain.Profile) {
			defer wg.Done()
			data := map[string]interface{}{
				"event_title":  event.Title,
				"display_name": p.DisplayName,
				"start_time":   startFmt,
				"location":     event.Location,
				"event_url":    s.appCfg.PublicBaseURL + "/events/" + event.ID.String(),
			}
			if err := s.email.SendTemplate(ctx, []string{p.Email}, "event_reminder", data); err != nil {
				failedN.Add(1)
				s.logger(ctx).Warn("reminder email failed",
					zap.String("event_id", idString(event.ID)),
					zap.String("user_id", idString(p.UserID)),
					zap.Error(err),
				)
				return
			}
			sentN.Add(1)
			if s.metrics != nil {
				s.metrics.RecordReminderSent(ctx, eventdomain.ReminderChannelEmail)
			}
		}(recipient)
	}
	wg.Wait()
	return int(sentN.Load()), int(failedN.Load())
}

func (s *Scheduler) InAppRemindersJob(ctx context.Context) error {
	ctx, run, owner := s.ensureJobRun(ctx, "in_app_reminders", s.cfg.BatchSize)
	if owner {
		s.logJobStart(ctx, run)
		defer s.logJobFinish(ctx, run)
	}
	return s.withSweepLock(ctx, lockKeyInAppSweep, func(ctx context.Context) error {
		return s.inAppSweep(ctx, run)
	})
}

func (s *Scheduler) inAppSweep(ctx context.Context, run *jobRun) error {
	now := s.clock.Now()
	window := s.holder.Get().InApp
	from := now.Add(time.Duration(window.MinOffsetMin) * time.Minute)
	to := now.Add(time.Duration(window.MaxOffsetMin) * time.Minute)
	schedMetrics := obsmetrics.Scheduler()
	jobName := "in_app_reminders"

	lockStart := time.Now()
	events, err := s.eventRepo.ListStartingBetween(ctx, s.db, from, to, s.cfg.BatchSize)
	schedMetrics.ObserveDBLockWait(obsmetrics.LockResourceEventsForInAppReminders, time.Since(lockStart))
	if err != nil {
		s.logSchedulerError(ctx, run, "scheduler.event.fetch.failed", jobName, 0, err)
		return err
	}
	if len(events) == 0 {
		schedMetrics.IncBatchDeferred(jobName, obsmetrics.SchedulerBatchDeferredReasonSkipLockedEmpty)
		return nil
	}

	var jobErr error
	processed := 0
	for _, event := range events {
		if ctx.Err() != nil {
			jobErr = errors.Join(jobErr, ctx.Err())
			break
		}
		settings := eventdomain.ParseSettings(event.Settings)
		if !settings.Reminders.InAppEnabled {
			continue
		}
		if settings.Reminders.SystemInAppSent {
			schedMetrics.IncBatchDeferred(jobName, obsmetrics.SchedulerBatchDeferredReasonAlreadySent)
			continue
		}
		if err := s.authorizeSystem(ctx, event.SpaceID, authorization.ObjectReminder, authorization.ActionReminderRun); err != nil {
			jobErr = errors.Join(jobErr, err)
			s.logSchedulerError(ctx, run, "scheduler.authorize.failed", jobName, event.SpaceID, err,
				zap.String("event_id", idString(event.ID)),
			)
			continue
		}

		claimed, err := s.claimReminder(ctx, event.ID, eventdomain.ReminderChannelInApp, now)
		if err != nil {
			jobErr = errors.Join(jobErr, err)
			s.logSchedulerError(ctx, run, "scheduler.reminder.claim.failed", jobName, event.SpaceID, err,
				zap.String("event_id", idString(event.ID)),
			)
			continue
		}
		if !claimed {
			schedMetrics.IncBatchDeferred(jobName, obsmetrics.SchedulerBatchDeferredReasonAlreadySent)
			continue
		}
		s.logEventClaimed(ctx, jobName, event.SpaceID, event.ID, eventdomain.ReminderChannelInApp)

		holders, err := s.ticketRepo.ListConfirmedHolders(ctx, s.db, event.ID)
		if err != nil {
			jobErr = errors.Join(jobErr, err)
			s.logSchedulerError(ctx, run, "scheduler.holders.fetch.failed", jobName, event.SpaceID, err,
				zap.String("event_id", idString(event.ID)),
			)
			continue
		}

		notifications := make([]*notificationdomain.Notification, 0, len(holders))
		eventID := event.ID
		for _, userID := range holders {
			notifications = append(notifications, &notificationdomain.Notification{
				ID:        s.genID.Generate(),
				SpaceID:   event.SpaceID,
				UserID:    userID,
				Kind:      notificationdomain.KindEventReminder,
				Title:     "Starting soon: " + event.Title,
				Body:      event.Title + " starts at " + event.StartsAt.Format(time.RFC1123),
				EventID:   &eventID,
				CreatedAt: now,
			})
		}
		if err := s.notificationRepo.InsertBatch(ctx, s.db, notifications); err != nil {
			jobErr = errors.Join(jobErr, err)
			s.logSchedulerError(ctx, run, "scheduler.notification.insert.failed", jobName, event.SpaceID, err,
				zap.String("event_id", idString(event.ID)),
			)
			continue
		}
		if s.metrics != nil {
			for range notifications {
				s.metrics.RecordReminderSent(ctx, eventdomain.ReminderChannelInApp)
			}
		}

		processed++
		run.AddProcessed(1)
		settings.Reminders.SystemInAppSent = true
		if err := s.eventRepo.UpdateSettings(ctx, s.db, event.ID, settings.ToBlob()); err != nil {
			jobErr = errors.Join(jobErr, err)
			s.logSchedulerError(ctx, run, "scheduler.settings.mirror.failed", jobName, event.SpaceID, err,
				zap.String("event_id", idString(event.ID)),
			)
		}
	}

	if processed > 0 {
		schedMetrics.AddBatchProcessed(jobName, "events", processed)
	}
	return jobErr
}

func (s *Scheduler) AnnouncementsJob(ctx context.Context) error {
	ctx, run, owner := s.ensureJobRun(ctx, "announcements", s.cfg.BatchSize)
	if owner {
		s.logJobStart(ctx, run)
		defer s.logJobFinish(ctx, run)
	}
	return s.withSweepLock(ctx, lockKeyAnnouncements, func(ctx context.Context) error {
		return s.announcementSweep(ctx, run)
	})
}

func (s *Scheduler) announcementSweep(ctx context.Context, run *jobRun) error {
	now := s.clock.Now()
	schedMetrics := obsmetrics.Scheduler()
	jobName := "announcements"

	lockStart := time.Now()
	due, err := s.announcementRepo.ListDue(ctx, s.db, now, s.cfg.BatchSize)
	schedMetrics.ObserveDBLockWait(obsmetrics.LockResourceAnnouncementsDue, time.Since(lockStart))
	if err != nil {
		s.logSchedulerError(ctx, run, "scheduler.announcement.fetch.failed", jobName, 0, err)
		return err
	}
	if len(due) == 0 {
		schedMetrics.IncBatchDeferred(jobName, obsmetrics.SchedulerBatchDeferredReasonSkipLockedEmpty)
		return nil
	}

	var jobErr error
	processed := 0
	for _, item := range due {
		if ctx.Err() != nil {
			jobErr = errors.Join(jobErr, ctx.Err())
			break
		}
		if err := s.deliverAnnouncement(ctx, item, now); err != nil {
			jobErr = errors.Join(jobErr, err)
			s.logSchedulerError(ctx, run, "scheduler.announcement.deliver.failed", jobName, item.SpaceID, err,
				zap.String("announcement_id", idString(item.ID)),
				zap.String("event_id", idString(item.EventID)),
			)
			if markErr := s.announcementRepo.MarkFailed(ctx, s.db, item.ID, err.Error(), now); markErr != nil {
				jobErr = errors.Join(jobErr, markErr)
			}
			continue
		}
		processed++
		run.AddProcessed(1)
	}

	if processed > 0 {
		schedMetrics.AddBatchProcessed(jobName, "announcements", processed)
	}
	return jobErr
}

func (s *Scheduler) deliverAnnouncement(ctx context.Context, item *announcementdomain.ScheduledAnnouncement, now time.Time) error {
	if err := s.authorizeSystem(ctx, item.SpaceID, authorization.ObjectAnnouncement, authorization.ActionAnnouncementDeliver); err != nil {
		return err
	}

	event, err := s.eventRepo.FindByID(ctx, s.db, item.EventID)
	if err != nil {
		return err
	}
	if event == nil {
		return eventdomain.ErrNotFound
	}
	space, err := s.spaceRepo.FindByID(ctx, s.db, item.SpaceID)
	if err != nil {
		return err
	}
	spaceName := ""
	if space != nil {
		spaceName = space.Name
	}

	replacer := strings.NewReplacer(
		"{{event_title}}", event.Title,
		"{{event_start}}", event.StartsAt.Format(time.RFC1123),
		"{{space_name}}", spaceName,
	)
	subject := replacer.Replace(item.Subject)
	body := replacer.Replace(item.Body)

	// Both audiences resolve to confirmed ticket holders.
	recipients, err := s.reminderRecipients(ctx, item.EventID)
	if err != nil {
		return err
	}

	failures := 0
	var lastErr error
	for _, recipient := range recipients {
		if recipient.Email == "" {
			continue
		}
		if err := s.email.Send(ctx, []string{recipient.Email}, subject, body); err != nil {
			failures++
			lastErr = err
			s.logger(ctx).Warn("announcement email failed",
				zap.String("announcement_id", idString(item.ID)),
				zap.String("user_id", idString(recipient.UserID)),
				zap.Error(err),
			)
		}
	}
	if len(recipients) > 0 && failures == len(recipients) && lastErr != nil {
		return lastErr
	}
	return s.announcementRepo.MarkSent(ctx, s.db, item.ID, now)
}

func (s *Scheduler) ExpirePendingJob(ctx context.Context) error {
	ctx, run, owner := s.ensureJobRun(ctx, "expire_pending", s.cfg.BatchSize)
	if owner {
		s.logJobStart(ctx, run)
		defer s.logJobFinish(ctx, run)
	}
	return s.withSweepLock(ctx, lockKeyExpirePending, func(ctx context.Context) error {
		return s.expirePendingSweep(ctx, run)
	})
}

// expirePendingSweep drops pending tickets and purchases whose checkout
// never resolved. Pending rows are not business truth; confirmed rows are
// never touched.
func (s *Scheduler) expirePendingSweep(ctx context.Context, run *jobRun) error {
	now := s.clock.Now()
	ttl := time.Duration(s.holder.Get().PendingTTLHrs) * time.Hour
	cutoff := now.Add(-ttl)
	schedMetrics := obsmetrics.Scheduler()
	jobName := "expire_pending"

	var jobErr error
	for {
		if ctx.Err() != nil {
			return errors.Join(jobErr, ctx.Err())
		}
		removed, err := s.ticketRepo.DeletePendingOlderThan(ctx, s.db, cutoff, s.cfg.BatchSize)
		if err != nil {
			jobErr = errors.Join(jobErr, err)
			s.logSchedulerError(ctx, run, "scheduler.expire.tickets.failed", jobName, 0, err)
			break
		}
		if removed == 0 {
			break
		}
		run.AddProcessed(int(removed))
		schedMetrics.AddBatchProcessed(jobName, "tickets", int(removed))
	}

	lockStart := time.Now()
	for {
		if ctx.Err() != nil {
			return errors.Join(jobErr, ctx.Err())
		}
		removed, err := s.paywallRepo.DeletePendingOlderThan(ctx, s.db, cutoff, s.cfg.BatchSize)
		if err != nil {
			jobErr = errors.Join(jobErr, err)
			s.logSchedulerError(ctx, run, "scheduler.expire.purchases.failed", jobName, 0, err)
			break
		}
		if removed == 0 {
			break
		}
		run.AddProcessed(int(removed))
		schedMetrics.AddBatchProcessed(jobName, "purchases", int(removed))
	}
	schedMetrics.ObserveDBLockWait(obsmetrics.LockResourcePendingPurchases, time.Since(lockStart))

	return jobErr
}

// claimReminder is the at-most-once gate: the UNIQUE(event_id, channel)
// insert either succeeds once or reports the reminder as already claimed.
func (s *Scheduler) claimReminder(ctx context.Context, eventID snowflake.ID, channel string, now time.Time) (bool, error) {
	err := s.eventRepo.InsertReminderState(ctx, s.db, &eventdomain.EventReminderState{
		ID:      s.genID.Generate(),
		EventID: eventID,
		Channel: channel,
		SentAt:  now,
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Scheduler) reminderRecipients(ctx context.Context, eventID snowflake.ID) ([]*profiledomain.Profile, error) {
	holders, err := s.ticketRepo.ListConfirmedHolders(ctx, s.db, eventID)
	if err != nil {
		return nil, err
	}
	if len(holders) == 0 {
		return nil, nil
	}
	return s.profileRepo.FindByUserIDs(ctx, s.db, holders)
}
