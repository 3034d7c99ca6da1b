package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectSpace        = "space"
	ObjectChannel      = "channel"
	ObjectEvent        = "event"
	ObjectTicket       = "ticket"
	ObjectPaywall      = "paywall"
	ObjectCourse       = "course"
	ObjectEnrollment   = "enrollment"
	ObjectAnnouncement = "announcement"
	ObjectNotification = "notification"
	ObjectProfile      = "profile"
	ObjectReminder     = "reminder"
)

const (
	ActionSpaceView   = "space.view"
	ActionSpaceUpdate = "space.update"

	ActionChannelView   = "channel.view"
	ActionChannelCreate = "channel.create"
	ActionChannelUpdate = "channel.update"
	ActionChannelDelete = "channel.delete"

	ActionEventView   = "event.view"
	ActionEventCreate = "event.create"
	ActionEventUpdate = "event.update"
	ActionEventDelete = "event.delete"

	ActionTicketRequest = "ticket.request"
	ActionTicketView    = "ticket.view"

	ActionPaywallView   = "paywall.view"
	ActionPaywallManage = "paywall.manage"

	ActionCourseView     = "course.view"
	ActionCourseManage   = "course.manage"
	ActionCoursePurchase = "course.purchase"

	ActionEnrollmentView   = "enrollment.view"
	ActionEnrollmentCreate = "enrollment.create"

	ActionAnnouncementView     = "announcement.view"
	ActionAnnouncementSchedule = "announcement.schedule"
	ActionAnnouncementCancel   = "announcement.cancel"
	ActionAnnouncementDeliver  = "announcement.deliver"

	ActionNotificationView = "notification.view"
	ActionNotificationSend = "notification.send"

	ActionProfileView   = "profile.view"
	ActionProfileUpdate = "profile.update"

	ActionReminderRun = "reminder.run"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor string, spaceID string, object string, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	spaceID = strings.TrimSpace(spaceID)
	if spaceID == "" {
		return ErrInvalidSpace
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, roleName, err := s.resolveActor(ctx, actor, spaceID)
	if err != nil {
		return err
	}

	domain := fmt.Sprintf("space:%s", spaceID)
	if err := s.ensureGrouping(subject, roleName, domain); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, domain, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) resolveActor(ctx context.Context, actor string, spaceID string) (string, string, error) {
	if actor == "system" {
		return actor, "role:system", nil
	}
	if strings.HasPrefix(actor, "user:") {
		userIDRaw := strings.TrimPrefix(actor, "user:")
		userID, err := snowflake.ParseString(userIDRaw)
		if err != nil || userID == 0 {
			return "", "", ErrInvalidActor
		}
		parsedSpaceID, err := snowflake.ParseString(spaceID)
		if err != nil || parsedSpaceID == 0 {
			return "", "", ErrInvalidSpace
		}
		role, err := s.roleForUser(ctx, parsedSpaceID, userID)
		if err != nil {
			return "", "", err
		}
		return actor, fmt.Sprintf("role:%s", strings.ToLower(role)), nil
	}
	return "", "", ErrInvalidActor
}

func (s *ServiceImpl) roleForUser(ctx context.Context, spaceID snowflake.ID, userID snowflake.ID) (string, error) {
	var row struct {
		Role string `gorm:"column:role"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT role
		 FROM space_members
		 WHERE space_id = ? AND user_id = ?
		 LIMIT 1`,
		spaceID,
		userID,
	).Scan(&row).Error; err != nil {
		return "", err
	}

	role := strings.TrimSpace(row.Role)
	if role == "" {
		return "", ErrForbidden
	}
	return role, nil
}

func (s *ServiceImpl) ensureGrouping(subject string, roleName string, domain string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", domain)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, domain)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, domain)
	return err
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Member permissions
		{"role:member", ObjectSpace, ActionSpaceView},
		{"role:member", ObjectChannel, ActionChannelView},
		{"role:member", ObjectEvent, ActionEventView},
		{"role:member", ObjectTicket, ActionTicketRequest},
		{"role:member", ObjectTicket, ActionTicketView},
		{"role:member", ObjectCourse, ActionCourseView},
		{"role:member", ObjectCourse, ActionCoursePurchase},
		{"role:member", ObjectEnrollment, ActionEnrollmentView},
		{"role:member", ObjectNotification, ActionNotificationView},
		{"role:member", ObjectProfile, ActionProfileView},

		// Admin permissions
		{"role:admin", ObjectSpace, ActionSpaceView},
		{"role:admin", ObjectChannel, ActionChannelView},
		{"role:admin", ObjectChannel, ActionChannelCreate},
		{"role:admin", ObjectChannel, ActionChannelUpdate},
		{"role:admin", ObjectEvent, ActionEventView},
		{"role:admin", ObjectEvent, ActionEventCreate},
		{"role:admin", ObjectEvent, ActionEventUpdate},
		{"role:admin", ObjectEvent, ActionEventDelete},
		{"role:admin", ObjectTicket, ActionTicketRequest},
		{"role:admin", ObjectTicket, ActionTicketView},
		{"role:admin", ObjectPaywall, ActionPaywallView},
		{"role:admin", ObjectPaywall, ActionPaywallManage},
		{"role:admin", ObjectCourse, ActionCourseView},
		{"role:admin", ObjectCourse, ActionCourseManage},
		{"role:admin", ObjectCourse, ActionCoursePurchase},
		{"role:admin", ObjectEnrollment, ActionEnrollmentView},
		{"role:admin", ObjectAnnouncement, ActionAnnouncementView},
		{"role:admin", ObjectAnnouncement, ActionAnnouncementSchedule},
		{"role:admin", ObjectAnnouncement, ActionAnnouncementCancel},
		{"role:admin", ObjectNotification, ActionNotificationView},
		{"role:admin", ObjectProfile, ActionProfileView},

		// Owner permissions
		{"role:owner", ObjectSpace, ActionSpaceView},
		{"role:owner", ObjectSpace, ActionSpaceUpdate},
		{"role:owner", ObjectChannel, ActionChannelView},
		{"role:owner", ObjectChannel, ActionChannelCreate},
		{"role:owner", ObjectChannel, ActionChannelUpdate},
		{"role:owner", ObjectChannel, ActionChannelDelete},
		{"role:owner", ObjectEvent, ActionEventView},
		{"role:owner", ObjectEvent, ActionEventCreate},
		{"role:owner", ObjectEvent, ActionEventUpdate},
		{"role:owner", ObjectEvent, ActionEventDelete},
		{"role:owner", ObjectTicket, ActionTicketRequest},
		{"role:owner", ObjectTicket, ActionTicketView},
		{"role:owner", ObjectPaywall, ActionPaywallView},
		{"role:owner", ObjectPaywall, ActionPaywallManage},
		{"role:owner", ObjectCourse, ActionCourseView},
		{"role:owner", ObjectCourse, ActionCourseManage},
		{"role:owner", ObjectCourse, ActionCoursePurchase},
		{"role:owner", ObjectEnrollment, ActionEnrollmentView},
		{"role:owner", ObjectAnnouncement, ActionAnnouncementView},
		{"role:owner", ObjectAnnouncement, ActionAnnouncementSchedule},
		{"role:owner", ObjectAnnouncement, ActionAnnouncementCancel},
		{"role:owner", ObjectNotification, ActionNotificationView},
		{"role:owner", ObjectProfile, ActionProfileView},
		{"role:owner", ObjectProfile, ActionProfileUpdate},

		// System permissions (scheduler and reconciler)
		{"role:system", ObjectTicket, ActionTicketView},
		{"role:system", ObjectEnrollment, ActionEnrollmentCreate},
		{"role:system", ObjectAnnouncement, ActionAnnouncementDeliver},
		{"role:system", ObjectNotification, ActionNotificationSend},
		{"role:system", ObjectReminder, ActionReminderRun},
	}

	for _, policy := range policies {
		if len(policy) < 3 {
			continue
		}
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
