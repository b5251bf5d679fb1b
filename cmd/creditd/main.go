package main

import (
	"github.com/SyedTahirHussan/codebuff-sub001/internal/analytics"
	"github.com/SyedTahirHussan/codebuff-sub001/internal/clock"
	"github.com/SyedTahirHussan/codebuff-sub001/internal/config"
	"github.com/SyedTahirHussan/codebuff-sub001/internal/consumption"
	"github.com/SyedTahirHussan/codebuff-sub001/internal/cycle"
	"github.com/SyedTahirHussan/codebuff-sub001/internal/delegation"
	"github.com/SyedTahirHussan/codebuff-sub001/internal/grant"
	"github.com/SyedTahirHussan/codebuff-sub001/internal/logger"
	"github.com/SyedTahirHussan/codebuff-sub001/internal/metering"
	"github.com/SyedTahirHussan/codebuff-sub001/internal/migration"
	"github.com/SyedTahirHussan/codebuff-sub001/internal/observability/metrics"
	"github.com/SyedTahirHussan/codebuff-sub001/internal/scheduler"
	"github.com/SyedTahirHussan/codebuff-sub001/internal/server"
	"github.com/SyedTahirHussan/codebuff-sub001/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		metrics.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Functional domains
		metering.Module,
		analytics.Module,
		grant.Module,
		consumption.Module,
		cycle.Module,
		delegation.Module,
		scheduler.Module,

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
