// Package sweep retries bill settlement for linked payments the billing
// service never acknowledged.
package sweep

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ezstay/payrecon/internal/app/service/settlement"
	"github.com/ezstay/payrecon/internal/models"
	"github.com/ezstay/payrecon/pkg/config"
	"github.com/ezstay/payrecon/pkg/types"
)

type UnsettledLister interface {
	ListUnsettled(ctx context.Context, recordedBefore time.Time, limit int) ([]*models.Payment, error)
}

type Settler interface {
	Settle(ctx context.Context, p *models.Payment, trigger types.SettlementTrigger) (settlement.Result, error)
}

type Result struct {
	Scanned int `json:"scanned"`
	Settled int `json:"settled"`
	Failed  int `json:"failed"`
}

type Sweeper struct {
	payments  UnsettledLister
	settler   Settler
	interval  time.Duration
	batchSize int
	minAge    time.Duration
	log       *zap.SugaredLogger
	now       func() time.Time
}

func NewSweeper(cfg *config.Config, payments UnsettledLister, settler Settler, log *zap.SugaredLogger) *Sweeper {
	s := &Sweeper{payments: payments, settler: settler, batchSize: 50, minAge: 2 * time.Minute, log: log, now: time.Now}
	if cfg != nil {
		s.interval = cfg.Sweep.Interval
		if cfg.Sweep.BatchSize > 0 {
			s.batchSize = cfg.Sweep.BatchSize
		}
		if cfg.Sweep.MinAge >= 0 {
			s.minAge = cfg.Sweep.MinAge
		}
	}
	return s
}

// RunOnce settles one batch of unsettled payments. Payments younger than
// the configured minimum age are left to the webhook path.
func (s *Sweeper) RunOnce(ctx context.Context) (*Result, error) {
	rows, err := s.payments.ListUnsettled(ctx, s.now().Add(-s.minAge), s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}
	res := &Result{Scanned: len(rows)}
	for _, p := range rows {
		if ctx.Err() != nil {
			break
		}
		r, _ := s.settler.Settle(ctx, p, types.SettlementTriggerSweep)
		switch r {
		case settlement.ResultSettled:
			res.Settled++
		case settlement.ResultFailed:
			res.Failed++
		}
	}
	if res.Scanned > 0 {
		s.log.Infow("sweep_completed", "scanned", res.Scanned, "settled", res.Settled, "failed", res.Failed)
	}
	return res, nil
}

// Run sweeps every interval until ctx is done. A zero interval disables it.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.log.Errorw("sweep_failed", "err", err)
			}
		}
	}
}
