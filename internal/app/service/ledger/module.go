package ledger

import "go.uber.org/fx"

// Module exposes the gorm backed ledger via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
	fx.Provide(NewLedger),
)
