package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/agrimarket/internal/authorization"
	"github.com/smallbiznis/agrimarket/internal/bulkpurchase"
	"github.com/smallbiznis/agrimarket/internal/clock"
	"github.com/smallbiznis/agrimarket/internal/config"
	"github.com/smallbiznis/agrimarket/internal/farmer"
	"github.com/smallbiznis/agrimarket/internal/listing"
	"github.com/smallbiznis/agrimarket/internal/observability"
	"github.com/smallbiznis/agrimarket/internal/panchayat"
	"github.com/smallbiznis/agrimarket/internal/payment"
	"github.com/smallbiznis/agrimarket/internal/ratelimit"
	"github.com/smallbiznis/agrimarket/internal/scheduler"
	"github.com/smallbiznis/agrimarket/pkg/db"
	"go.uber.org/fx"
)

// The standalone auditor expects SCHEDULER_ENABLED=true; with it unset the
// process starts and idles.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		scheduler.Module,
		authorization.Module,
		ratelimit.Module,

		// Transitive dependencies (bulk purchases need listings, payments and farmers)
		bulkpurchase.Module,
		listing.Module,
		payment.Module,
		farmer.Module,
		panchayat.Module,

		// No server module!
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(2)
	if err != nil {
		panic(err)
	}
	return node
}
