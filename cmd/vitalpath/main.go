package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/vitalpath/vitalpath/internal/auth"
	"github.com/vitalpath/vitalpath/internal/catalog"
	"github.com/vitalpath/vitalpath/internal/checkout"
	"github.com/vitalpath/vitalpath/internal/clock"
	"github.com/vitalpath/vitalpath/internal/config"
	"github.com/vitalpath/vitalpath/internal/confirmation"
	"github.com/vitalpath/vitalpath/internal/events"
	"github.com/vitalpath/vitalpath/internal/guestsession"
	"github.com/vitalpath/vitalpath/internal/migration"
	"github.com/vitalpath/vitalpath/internal/payment"
	"github.com/vitalpath/vitalpath/internal/providers"
	"github.com/vitalpath/vitalpath/internal/purchase"
	"github.com/vitalpath/vitalpath/internal/ratelimit"
	"github.com/vitalpath/vitalpath/internal/reconcile"
	"github.com/vitalpath/vitalpath/internal/server"
	"github.com/vitalpath/vitalpath/internal/user"
	"github.com/vitalpath/vitalpath/pkg/db"
	"github.com/vitalpath/vitalpath/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		events.Module,
		auth.Module,
		ratelimit.Module,
		providers.Module,

		// Functional domains
		catalog.Module,
		user.Module,
		guestsession.Module,
		purchase.Module,
		payment.Module,
		checkout.Module,
		confirmation.Module,
		reconcile.Module,

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
