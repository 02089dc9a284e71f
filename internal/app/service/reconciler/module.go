package reconciler

import (
	"context"

	"go.uber.org/fx"

	"github.com/ezstay/payrecon/internal/app/service/ledger"
	notificationlog "github.com/ezstay/payrecon/internal/app/service/notification_log"
	"github.com/ezstay/payrecon/internal/app/service/settlement"
)

func newPaymentStore(l ledger.Ledger) PaymentStore { return l }

func newSettler(s *settlement.Service) Settler { return s }

func newAuditLog(s *notificationlog.Service) AuditLog { return s }

func registerDrain(lc fx.Lifecycle, r *Reconciler) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			r.Wait()
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(newPaymentStore, newSettler, newAuditLog),
	fx.Provide(New),
	fx.Invoke(registerDrain),
)
