package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/pulsehub/pulsehub/internal/announcement"
	"github.com/pulsehub/pulsehub/internal/authorization"
	"github.com/pulsehub/pulsehub/internal/clock"
	"github.com/pulsehub/pulsehub/internal/config"
	"github.com/pulsehub/pulsehub/internal/course"
	"github.com/pulsehub/pulsehub/internal/event"
	"github.com/pulsehub/pulsehub/internal/lock"
	"github.com/pulsehub/pulsehub/internal/notification"
	"github.com/pulsehub/pulsehub/internal/observability"
	"github.com/pulsehub/pulsehub/internal/paywall"
	"github.com/pulsehub/pulsehub/internal/profile"
	"github.com/pulsehub/pulsehub/internal/providers"
	"github.com/pulsehub/pulsehub/internal/reminder"
	"github.com/pulsehub/pulsehub/internal/space"
	"github.com/pulsehub/pulsehub/internal/ticket"
	"github.com/pulsehub/pulsehub/pkg/db"
	"go.uber.org/fx"
)

// Standalone reminder scheduler. No HTTP server; sweeps run on the
// configured interval until the process is stopped.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		lock.Module,

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

		reminder.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
