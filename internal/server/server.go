package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pulsehub/pulsehub/internal/announcement"
	announcementdomain "github.com/pulsehub/pulsehub/internal/announcement/domain"
	"github.com/pulsehub/pulsehub/internal/authorization"
	"github.com/pulsehub/pulsehub/internal/checkout"
	checkoutdomain "github.com/pulsehub/pulsehub/internal/checkout/domain"
	"github.com/pulsehub/pulsehub/internal/config"
	"github.com/pulsehub/pulsehub/internal/course"
	coursedomain "github.com/pulsehub/pulsehub/internal/course/domain"
	"github.com/pulsehub/pulsehub/internal/event"
	eventdomain "github.com/pulsehub/pulsehub/internal/event/domain"
	"github.com/pulsehub/pulsehub/internal/notification"
	notificationdomain "github.com/pulsehub/pulsehub/internal/notification/domain"
	"github.com/pulsehub/pulsehub/internal/observability"
	obsmiddleware "github.com/pulsehub/pulsehub/internal/observability/logger"
	obsmetrics "github.com/pulsehub/pulsehub/internal/observability/metrics"
	obstracing "github.com/pulsehub/pulsehub/internal/observability/tracing"
	"github.com/pulsehub/pulsehub/internal/paywall"
	paywalldomain "github.com/pulsehub/pulsehub/internal/paywall/domain"
	"github.com/pulsehub/pulsehub/internal/profile"
	profiledomain "github.com/pulsehub/pulsehub/internal/profile/domain"
	"github.com/pulsehub/pulsehub/internal/providers"
	"github.com/pulsehub/pulsehub/internal/ratelimit"
	"github.com/pulsehub/pulsehub/internal/reminder"
	"github.com/pulsehub/pulsehub/internal/space"
	spacedomain "github.com/pulsehub/pulsehub/internal/space/domain"
	"github.com/pulsehub/pulsehub/internal/ticket"
	ticketdomain "github.com/pulsehub/pulsehub/internal/ticket/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	providers.Module,
	space.Module,
	profile.Module,
	event.Module,
	ticket.Module,
	paywall.Module,
	course.Module,
	notification.Module,
	announcement.Module,
	checkout.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine) {
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	authzSvc        authorization.Service
	spaceSvc        spacedomain.Service
	profileSvc      profiledomain.Service
	eventSvc        eventdomain.Service
	ticketSvc       ticketdomain.Service
	paywallSvc      paywalldomain.Service
	courseSvc       coursedomain.Service
	notificationSvc notificationdomain.Service
	announcementSvc announcementdomain.Service
	checkoutSvc     checkoutdomain.Service
	checkoutLimiter *ratelimit.CheckoutLimiter

	scheduler *reminder.Scheduler
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	AuthzSvc        authorization.Service
	SpaceSvc        spacedomain.Service
	ProfileSvc      profiledomain.Service
	EventSvc        eventdomain.Service
	TicketSvc       ticketdomain.Service
	PaywallSvc      paywalldomain.Service
	CourseSvc       coursedomain.Service
	NotificationSvc notificationdomain.Service
	AnnouncementSvc announcementdomain.Service
	CheckoutSvc     checkoutdomain.Service
	CheckoutLimiter *ratelimit.CheckoutLimiter `optional:"true"`

	Scheduler *reminder.Scheduler `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		authzSvc:        p.AuthzSvc,
		spaceSvc:        p.SpaceSvc,
		profileSvc:      p.ProfileSvc,
		eventSvc:        p.EventSvc,
		ticketSvc:       p.TicketSvc,
		paywallSvc:      p.PaywallSvc,
		courseSvc:       p.CourseSvc,
		notificationSvc: p.NotificationSvc,
		announcementSvc: p.AnnouncementSvc,
		checkoutSvc:     p.CheckoutSvc,
		checkoutLimiter: p.CheckoutLimiter,
		scheduler:       p.Scheduler,
	}

	svc.registerCallbackRoutes()
	svc.registerAPIRoutes()
	svc.registerAdminRoutes()
	svc.registerInternalRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerCallbackRoutes mounts the unauthenticated gateway-facing
// surface. The buyer's browser lands here after hosted checkout.
func (s *Server) registerCallbackRoutes() {
	s.engine.POST("/callbacks/checkout", s.ResolveCheckout)
	s.engine.GET("/callbacks/checkout", s.ResolveCheckout)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.UserRequired())

	api.POST("/spaces", s.CreateSpace)
	api.GET("/spaces/:idOrSlug", s.GetSpace)

	api.GET("/profile", s.GetProfile)
	api.PUT("/profile", s.UpdateProfile)

	api.GET("/notifications", s.ListNotifications)
	api.POST("/notifications/:id/read", s.MarkNotificationRead)
	api.POST("/notifications/read-all", s.MarkAllNotificationsRead)

	api.GET("/enrollments", s.ListMyEnrollments)

	scoped := api.Group("", s.SpaceContext())
	{
		scoped.GET("/channels", s.ListChannels)
		scoped.GET("/members", s.ListSpaceMembers)

		scoped.GET("/events", s.ListEvents)
		scoped.GET("/events/:id", s.GetEvent)
		scoped.POST("/events/:id/tickets", s.CheckoutRateLimit(), s.RequestTicket)

		scoped.GET("/courses", s.ListCourses)
		scoped.GET("/courses/:id", s.GetCourse)
		scoped.POST("/courses/:id/enroll", s.EnrollCourse)
		scoped.POST("/courses/:id/purchase", s.CheckoutRateLimit(), s.PurchaseCourse)

		scoped.GET("/paywalls", s.GetPaywall)
	}
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")

	admin.Use(s.UserRequired())

	admin.PUT("/profile/payout-key", s.SetPayoutKey)

	scoped := admin.Group("", s.SpaceContext())
	manage := scoped.Group("", s.RequireRole(spacedomain.RoleOwner, spacedomain.RoleAdmin))
	{
		manage.POST("/channels", s.CreateChannel)
		manage.POST("/members", s.AddSpaceMember)
		manage.DELETE("/members/:userId", s.RemoveSpaceMember)

		manage.POST("/events", s.CreateEvent)
		manage.PATCH("/events/:id", s.UpdateEvent)
		manage.DELETE("/events/:id", s.DeleteEvent)

		manage.POST("/courses", s.CreateCourse)

		manage.PUT("/paywalls", s.UpsertPaywall)
		manage.DELETE("/paywalls", s.DeletePaywall)

		manage.POST("/events/:id/announcements", s.CreateAnnouncement)
		manage.GET("/events/:id/announcements", s.ListAnnouncements)
		manage.DELETE("/announcements/:id", s.DeleteAnnouncement)
	}
}

// registerInternalRoutes mounts operator endpoints guarded by the
// shared scheduler secret rather than user identity.
func (s *Server) registerInternalRoutes() {
	internal := s.engine.Group("/internal", s.SchedulerSecretRequired())

	internal.POST("/reminders/run", s.RunReminders)
}
