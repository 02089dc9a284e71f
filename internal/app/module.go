package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/ezstay/payrecon/internal/app/api/server"
	"github.com/ezstay/payrecon/internal/app/service/ledger"
	notificationlog "github.com/ezstay/payrecon/internal/app/service/notification_log"
	"github.com/ezstay/payrecon/internal/app/service/query"
	"github.com/ezstay/payrecon/internal/app/service/reconciler"
	"github.com/ezstay/payrecon/internal/app/service/settlement"
	"github.com/ezstay/payrecon/internal/app/service/statistics"
	"github.com/ezstay/payrecon/internal/app/service/sweep"
	"github.com/ezstay/payrecon/internal/platform/billing"
	"github.com/ezstay/payrecon/internal/platform/db"
	"github.com/ezstay/payrecon/internal/platform/redis"
	"github.com/ezstay/payrecon/pkg/config"
	"github.com/ezstay/payrecon/pkg/logger"
	"github.com/ezstay/payrecon/pkg/metrics"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

// Platform is everything below the services: config, logging, storage and
// the billing service client. cmd/reconcilectl reuses it without the HTTP server.
var Platform = fx.Options(
	logger.Module,
	config.Module,
	metrics.Module,
	db.Module,
	redis.Module,
	billing.Module,
)

var Services = fx.Options(
	ledger.Module,
	settlement.Module,
	notificationlog.Module,
	query.Module,
	statistics.Module,
	reconciler.Module,
	sweep.Module,
)

// Module wires the API process. The server comes last so its stop hook runs
// first and in-flight requests finish before background work is drained.
var Module = fx.Options(
	Platform,
	Services,
	server.Module,
)
