package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/agrimarket/internal/clock"
	"github.com/smallbiznis/agrimarket/internal/config"
	"github.com/smallbiznis/agrimarket/internal/migration"
	"github.com/smallbiznis/agrimarket/internal/observability"
	"github.com/smallbiznis/agrimarket/internal/scheduler"
	"github.com/smallbiznis/agrimarket/internal/server"
	"github.com/smallbiznis/agrimarket/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// HTTP API and every domain service behind it
		server.Module,

		// Consistency auditor, runs in-process when SCHEDULER_ENABLED is set
		scheduler.Module,
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
