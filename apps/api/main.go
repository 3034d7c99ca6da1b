package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/pulsehub/pulsehub/internal/clock"
	"github.com/pulsehub/pulsehub/internal/config"
	"github.com/pulsehub/pulsehub/internal/migration"
	"github.com/pulsehub/pulsehub/internal/observability"
	"github.com/pulsehub/pulsehub/internal/server"
	"github.com/pulsehub/pulsehub/pkg/db"
	"go.uber.org/fx"
)

// API-only deployment. The reminder scheduler runs separately; the
// /internal/reminders/run trigger responds 404 here.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		server.Module,
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
