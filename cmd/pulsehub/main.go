package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/pulsehub/pulsehub/internal/clock"
	"github.com/pulsehub/pulsehub/internal/config"
	"github.com/pulsehub/pulsehub/internal/lock"
	"github.com/pulsehub/pulsehub/internal/migration"
	"github.com/pulsehub/pulsehub/internal/observability"
	"github.com/pulsehub/pulsehub/internal/reminder"
	"github.com/pulsehub/pulsehub/internal/server"
	"github.com/pulsehub/pulsehub/pkg/db"
	"go.uber.org/fx"
)

// The monolith runs the HTTP API and the reminder scheduler in one
// process. Split deployments use apps/api and apps/scheduler instead.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		lock.Module,
		migration.Module,

		server.Module,
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
