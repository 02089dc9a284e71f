package settlement

import (
	"go.uber.org/fx"

	"github.com/ezstay/payrecon/internal/app/service/ledger"
)

func newAttemptRecorder(l ledger.Ledger) AttemptRecorder { return l }

// Module exposes the settlement step. Notifier comes from the billing platform module.
var Module = fx.Options(
	fx.Provide(newAttemptRecorder),
	fx.Provide(NewService),
)
