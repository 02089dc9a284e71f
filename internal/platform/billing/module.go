package billing

import (
	"github.com/go-redis/redis/v8"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/ezstay/payrecon/internal/app/service/settlement"
	"github.com/ezstay/payrecon/pkg/config"
)

func newDirectory(cfg *config.Config, c *Client, rc *redis.Client, log *zap.SugaredLogger) settlement.BillDirectory {
	if rc == nil {
		return c
	}
	return NewCachedDirectory(c, rc, cfg.Billing.CacheTTL, log)
}

func newNotifier(c *Client) settlement.Notifier { return c }

// Module provides the billing service client as the bill directory and the
// settlement notifier. The directory is redis cached when redis is configured.
var Module = fx.Options(
	fx.Provide(NewClient),
	fx.Provide(newDirectory, newNotifier),
)
