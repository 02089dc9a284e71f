package sweep

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/ezstay/payrecon/internal/app/service/ledger"
	"github.com/ezstay/payrecon/internal/app/service/settlement"
)

func newUnsettledLister(l ledger.Ledger) UnsettledLister { return l }

func newSettler(s *settlement.Service) Settler { return s }

func registerLoop(lc fx.Lifecycle, log *zap.SugaredLogger, s *Sweeper) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Infow("starting settlement sweep", "interval", s.interval)
			go func() {
				defer close(done)
				s.Run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(newUnsettledLister, newSettler),
	fx.Provide(NewSweeper),
	fx.Invoke(registerLoop),
)
