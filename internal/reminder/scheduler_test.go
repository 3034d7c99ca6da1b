package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	announcementdomain "github.com/pulsehub/pulsehub/internal/announcement/domain"
	announcementrepo "github.com/pulsehub/pulsehub/internal/announcement/repository"
	"github.com/pulsehub/pulsehub/internal/clock"
	"github.com/pulsehub/pulsehub/internal/config"
	eventdomain "github.com/pulsehub/pulsehub/internal/event/domain"
	eventrepo "github.com/pulsehub/pulsehub/internal/event/repository"
	notificationdomain "github.com/pulsehub/pulsehub/internal/notification/domain"
	notificationrepo "github.com/pulsehub/pulsehub/internal/notification/repository"
	paywalldomain "github.com/pulsehub/pulsehub/internal/paywall/domain"
	paywallrepo "github.com/pulsehub/pulsehub/internal/paywall/repository"
	profiledomain "github.com/pulsehub/pulsehub/internal/profile/domain"
	profilerepo "github.com/pulsehub/pulsehub/internal/profile/repository"
	spacedomain "github.com/pulsehub/pulsehub/internal/space/domain"
	spacerepo "github.com/pulsehub/pulsehub/internal/space/repository"
	ticketdomain "github.com/pulsehub/pulsehub/internal/ticket/domain"
	ticketrepo "github.com/pulsehub/pulsehub/internal/ticket/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type sentMail struct {
	To       []string
	Subject  string
	Body     string
	Template string
}

// recordingEmail captures sends; fanout delivers concurrently so every
// method takes the mutex.
type recordingEmail struct {
	mu      sync.Mutex
	sent    []sentMail
	FailAll bool
}

func (p *recordingEmail) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailAll {
		return errors.New("smtp unavailable")
	}
	p.sent = append(p.sent, sentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func (p *recordingEmail) SendTemplate(ctx context.Context, to []string, templateName string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailAll {
		return errors.New("smtp unavailable")
	}
	p.sent = append(p.sent, sentMail{To: to, Template: templateName})
	return nil
}

func (p *recordingEmail) Sent() []sentMail {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]sentMail, len(p.sent))
	copy(out, p.sent)
	return out
}

type allowAllAuthz struct{}

func (allowAllAuthz) Authorize(ctx context.Context, actor, spaceID, object, action string) error {
	return nil
}

type fixture struct {
	db    *gorm.DB
	sched *Scheduler
	email *recordingEmail
	genID *snowflake.Node
	clock *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&eventdomain.Event{},
		&eventdomain.EventResponse{},
		&eventdomain.EventReminderState{},
		&ticketdomain.Ticket{},
		&paywalldomain.Paywall{},
		&paywalldomain.PaywallPurchase{},
		&notificationdomain.Notification{},
		&announcementdomain.ScheduledAnnouncement{},
		&profiledomain.Profile{},
		&spacedomain.Space{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	provider := &recordingEmail{}

	sched, err := New(Params{
		DB:               conn,
		Log:              zap.NewNop(),
		GenID:            node,
		Clock:            fakeClock,
		AppConfig:        config.Config{PublicBaseURL: "https://pulsehub.test"},
		Holder:           config.StaticReminderConfigHolder(config.DefaultReminderConfig()),
		EventRepo:        eventrepo.Provide(),
		TicketRepo:       ticketrepo.Provide(),
		PaywallRepo:      paywallrepo.Provide(),
		NotificationRepo: notificationrepo.Provide(),
		AnnouncementRepo: announcementrepo.Provide(),
		SpaceRepo:        spacerepo.Provide(),
		ProfileRepo:      profilerepo.Provide(),
		Email:            provider,
		AuthzSvc:         allowAllAuthz{},
	})
	require.NoError(t, err)

	return &fixture{db: conn, sched: sched, email: provider, genID: node, clock: fakeClock}
}

func (f *fixture) createEvent(t *testing.T, startsIn time.Duration, settings eventdomain.EventSettings) *eventdomain.Event {
	t.Helper()
	event := &eventdomain.Event{
		ID:        f.genID.Generate(),
		SpaceID:   f.genID.Generate(),
		ChannelID: f.genID.Generate(),
		OwnerID:   f.genID.Generate(),
		Title:     "Sunset Run",
		Type:      eventdomain.TypeInPerson,
		StartsAt:  f.clock.Now().Add(startsIn),
		Settings:  settings.ToBlob(),
	}
	require.NoError(t, f.db.Create(event).Error)
	return event
}

func (f *fixture) confirmHolder(t *testing.T, eventID snowflake.ID, email string) snowflake.ID {
	t.Helper()
	userID := f.genID.Generate()
	paymentID := "pay_" + userID.String()
	require.NoError(t, f.db.Create(&ticketdomain.Ticket{
		ID:        f.genID.Generate(),
		EventID:   eventID,
		UserID:    userID,
		Status:    ticketdomain.StatusConfirmed,
		PaymentID: &paymentID,
	}).Error)
	if email != "" {
		require.NoError(t, f.db.Create(&profiledomain.Profile{
			UserID:      userID,
			DisplayName: "Member",
			Email:       email,
		}).Error)
	}
	return userID
}

func TestEmailSweepSendsOnce(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, time.Hour, eventdomain.DefaultSettings())
	f.confirmHolder(t, event.ID, "a@pulsehub.test")
	f.confirmHolder(t, event.ID, "b@pulsehub.test")

	stats, err := f.sched.RunEmailReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.EventsProcessed)
	assert.Equal(t, 2, stats.EmailsSent)
	assert.Zero(t, stats.EmailsFailed)

	for _, mail := range f.email.Sent() {
		assert.Equal(t, "event_reminder", mail.Template)
	}

	var state eventdomain.EventReminderState
	require.NoError(t, f.db.Where("event_id = ? AND channel = ?", event.ID, eventdomain.ReminderChannelEmail).First(&state).Error)

	var stored eventdomain.Event
	require.NoError(t, f.db.First(&stored, "id = ?", event.ID).Error)
	assert.True(t, eventdomain.ParseSettings(stored.Settings).Reminders.SystemEmailSent)

	// second pass is a no-op; the claim row and mirror flag both hold
	stats, err = f.sched.RunEmailReminders(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.EventsProcessed)
	assert.Len(t, f.email.Sent(), 2)
}

func TestEmailSweepSkipsEventsOutsideWindow(t *testing.T) {
	f := newFixture(t)
	f.createEvent(t, 3*time.Hour, eventdomain.DefaultSettings())
	f.createEvent(t, 5*time.Minute, eventdomain.DefaultSettings())

	stats, err := f.sched.RunEmailReminders(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.EventsProcessed)
	assert.Empty(t, f.email.Sent())
}

func TestEmailSweepWindowUpperBoundInclusive(t *testing.T) {
	f := newFixture(t)
	edge := f.createEvent(t, 65*time.Minute, eventdomain.DefaultSettings())
	f.confirmHolder(t, edge.ID, "edge@pulsehub.test")
	beyond := f.createEvent(t, 66*time.Minute, eventdomain.DefaultSettings())
	f.confirmHolder(t, beyond.ID, "beyond@pulsehub.test")

	stats, err := f.sched.RunEmailReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.EventsProcessed)
	assert.Equal(t, 1, stats.EmailsSent)

	sent := f.email.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"edge@pulsehub.test"}, sent[0].To)

	// only the event on the edge of the window is claimed
	var states []eventdomain.EventReminderState
	require.NoError(t, f.db.Find(&states).Error)
	require.Len(t, states, 1)
	assert.Equal(t, edge.ID, states[0].EventID)
}

func TestEmailSweepRespectsDisabledToggle(t *testing.T) {
	f := newFixture(t)
	settings := eventdomain.DefaultSettings()
	settings.Reminders.EmailEnabled = false
	event := f.createEvent(t, time.Hour, settings)
	f.confirmHolder(t, event.ID, "a@pulsehub.test")

	stats, err := f.sched.RunEmailReminders(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.EventsProcessed)
	assert.Empty(t, f.email.Sent())
}

func TestEmailSweepClaimAlreadyTaken(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, time.Hour, eventdomain.DefaultSettings())
	f.confirmHolder(t, event.ID, "a@pulsehub.test")

	// another instance claimed the send between fetch and claim
	require.NoError(t, f.db.Create(&eventdomain.EventReminderState{
		ID:      f.genID.Generate(),
		EventID: event.ID,
		Channel: eventdomain.ReminderChannelEmail,
		SentAt:  f.clock.Now(),
	}).Error)

	stats, err := f.sched.RunEmailReminders(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.EventsProcessed)
	assert.Empty(t, f.email.Sent())
}

func TestEmailSweepCountsFailures(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, time.Hour, eventdomain.DefaultSettings())
	f.confirmHolder(t, event.ID, "a@pulsehub.test")
	f.email.FailAll = true

	stats, err := f.sched.RunEmailReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.EventsProcessed)
	assert.Zero(t, stats.EmailsSent)
	assert.Equal(t, 1, stats.EmailsFailed)

	// delivery is at most once even when every recipient failed
	var count int64
	require.NoError(t, f.db.Model(&eventdomain.EventReminderState{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestInAppSweepInsertsNotifications(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, 15*time.Minute, eventdomain.DefaultSettings())
	first := f.confirmHolder(t, event.ID, "")
	second := f.confirmHolder(t, event.ID, "")

	require.NoError(t, f.sched.InAppRemindersJob(context.Background()))

	var notifications []notificationdomain.Notification
	require.NoError(t, f.db.Order("user_id").Find(&notifications).Error)
	require.Len(t, notifications, 2)
	users := []snowflake.ID{notifications[0].UserID, notifications[1].UserID}
	assert.ElementsMatch(t, []snowflake.ID{first, second}, users)
	for _, n := range notifications {
		assert.Equal(t, notificationdomain.KindEventReminder, n.Kind)
		require.NotNil(t, n.EventID)
		assert.Equal(t, event.ID, *n.EventID)
		assert.Contains(t, n.Title, "Sunset Run")
	}

	require.NoError(t, f.sched.InAppRemindersJob(context.Background()))

	var count int64
	require.NoError(t, f.db.Model(&notificationdomain.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestAnnouncementSweepDeliversDue(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, 48*time.Hour, eventdomain.DefaultSettings())
	f.confirmHolder(t, event.ID, "a@pulsehub.test")

	space := &spacedomain.Space{
		ID:      event.SpaceID,
		Slug:    "runners",
		Name:    "Runners Club",
		OwnerID: f.genID.Generate(),
	}
	require.NoError(t, f.db.Create(space).Error)

	announcement := &announcementdomain.ScheduledAnnouncement{
		ID:          f.genID.Generate(),
		SpaceID:     event.SpaceID,
		EventID:     event.ID,
		Audience:    announcementdomain.AudienceGoing,
		Subject:     "{{event_title}} update",
		Body:        "See you at {{event_title}}, from {{space_name}}",
		ScheduledAt: f.clock.Now().Add(-time.Minute),
		Status:      announcementdomain.StatusPending,
	}
	require.NoError(t, f.db.Create(announcement).Error)

	require.NoError(t, f.sched.AnnouncementsJob(context.Background()))

	sent := f.email.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Sunset Run update", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "Runners Club")

	var stored announcementdomain.ScheduledAnnouncement
	require.NoError(t, f.db.First(&stored, "id = ?", announcement.ID).Error)
	assert.Equal(t, announcementdomain.StatusSent, stored.Status)
	assert.NotNil(t, stored.SentAt)
}

func TestAnnouncementSweepMarksFailed(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, 48*time.Hour, eventdomain.DefaultSettings())
	f.confirmHolder(t, event.ID, "a@pulsehub.test")
	f.email.FailAll = true

	announcement := &announcementdomain.ScheduledAnnouncement{
		ID:          f.genID.Generate(),
		SpaceID:     event.SpaceID,
		EventID:     event.ID,
		Audience:    announcementdomain.AudienceGoing,
		Subject:     "update",
		Body:        "body",
		ScheduledAt: f.clock.Now().Add(-time.Minute),
		Status:      announcementdomain.StatusPending,
	}
	require.NoError(t, f.db.Create(announcement).Error)

	err := f.sched.AnnouncementsJob(context.Background())
	require.Error(t, err)

	var stored announcementdomain.ScheduledAnnouncement
	require.NoError(t, f.db.First(&stored, "id = ?", announcement.ID).Error)
	assert.Equal(t, announcementdomain.StatusFailed, stored.Status)
	require.NotNil(t, stored.Error)
}

func TestAnnouncementSweepIsolatesFailingItems(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, 48*time.Hour, eventdomain.DefaultSettings())
	f.confirmHolder(t, event.ID, "a@pulsehub.test")

	// points at an event that no longer exists, delivery cannot resolve it
	broken := &announcementdomain.ScheduledAnnouncement{
		ID:          f.genID.Generate(),
		SpaceID:     event.SpaceID,
		EventID:     f.genID.Generate(),
		Audience:    announcementdomain.AudienceGoing,
		Subject:     "orphan",
		Body:        "body",
		ScheduledAt: f.clock.Now().Add(-2 * time.Minute),
		Status:      announcementdomain.StatusPending,
	}
	healthy := &announcementdomain.ScheduledAnnouncement{
		ID:          f.genID.Generate(),
		SpaceID:     event.SpaceID,
		EventID:     event.ID,
		Audience:    announcementdomain.AudienceGoing,
		Subject:     "update",
		Body:        "see you there",
		ScheduledAt: f.clock.Now().Add(-time.Minute),
		Status:      announcementdomain.StatusPending,
	}
	require.NoError(t, f.db.Create(broken).Error)
	require.NoError(t, f.db.Create(healthy).Error)

	err := f.sched.AnnouncementsJob(context.Background())
	require.Error(t, err)

	// the earlier failure does not keep the later item from going out
	sent := f.email.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "update", sent[0].Subject)

	var storedBroken, storedHealthy announcementdomain.ScheduledAnnouncement
	require.NoError(t, f.db.First(&storedBroken, "id = ?", broken.ID).Error)
	require.NoError(t, f.db.First(&storedHealthy, "id = ?", healthy.ID).Error)
	assert.Equal(t, announcementdomain.StatusFailed, storedBroken.Status)
	require.NotNil(t, storedBroken.Error)
	assert.Equal(t, announcementdomain.StatusSent, storedHealthy.Status)
}

func TestExpirePendingSweep(t *testing.T) {
	f := newFixture(t)
	now := f.clock.Now()
	stale := now.Add(-48 * time.Hour)
	fresh := now.Add(-time.Hour)
	token := func() *string { s := "tok_" + f.genID.Generate().String(); return &s }

	staleTicket := &ticketdomain.Ticket{
		ID: f.genID.Generate(), EventID: f.genID.Generate(), UserID: f.genID.Generate(),
		Status: ticketdomain.StatusPending, SessionToken: token(), CreatedAt: stale,
	}
	freshTicket := &ticketdomain.Ticket{
		ID: f.genID.Generate(), EventID: f.genID.Generate(), UserID: f.genID.Generate(),
		Status: ticketdomain.StatusPending, SessionToken: token(), CreatedAt: fresh,
	}
	paymentID := "pay_old"
	confirmedTicket := &ticketdomain.Ticket{
		ID: f.genID.Generate(), EventID: f.genID.Generate(), UserID: f.genID.Generate(),
		Status: ticketdomain.StatusConfirmed, PaymentID: &paymentID, CreatedAt: stale,
	}
	require.NoError(t, f.db.Create([]*ticketdomain.Ticket{staleTicket, freshTicket, confirmedTicket}).Error)

	stalePurchase := &paywalldomain.PaywallPurchase{
		ID: f.genID.Generate(), PaywallID: f.genID.Generate(), UserID: f.genID.Generate(),
		AmountCents: 4900, Currency: "USD", Status: paywalldomain.PurchasePending,
		SessionToken: token(), CreatedAt: stale,
	}
	freshPurchase := &paywalldomain.PaywallPurchase{
		ID: f.genID.Generate(), PaywallID: f.genID.Generate(), UserID: f.genID.Generate(),
		AmountCents: 4900, Currency: "USD", Status: paywalldomain.PurchasePending,
		SessionToken: token(), CreatedAt: fresh,
	}
	require.NoError(t, f.db.Create([]*paywalldomain.PaywallPurchase{stalePurchase, freshPurchase}).Error)

	require.NoError(t, f.sched.ExpirePendingJob(context.Background()))

	var ticketIDs []snowflake.ID
	require.NoError(t, f.db.Model(&ticketdomain.Ticket{}).Pluck("id", &ticketIDs).Error)
	assert.ElementsMatch(t, []snowflake.ID{freshTicket.ID, confirmedTicket.ID}, ticketIDs)

	var purchaseIDs []snowflake.ID
	require.NoError(t, f.db.Model(&paywalldomain.PaywallPurchase{}).Pluck("id", &purchaseIDs).Error)
	assert.ElementsMatch(t, []snowflake.ID{freshPurchase.ID}, purchaseIDs)
}

func TestRunOnceHonorsEnabledJobs(t *testing.T) {
	f := newFixture(t)
	f.sched.cfg.EnabledJobs = []string{"expire_pending"}

	event := f.createEvent(t, time.Hour, eventdomain.DefaultSettings())
	f.confirmHolder(t, event.ID, "a@pulsehub.test")

	require.NoError(t, f.sched.RunOnce(context.Background()))
	assert.Empty(t, f.email.Sent())
}
