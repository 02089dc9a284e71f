package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ezstay/payrecon/internal/models"
	"github.com/ezstay/payrecon/pkg/config"
	"github.com/ezstay/payrecon/pkg/logctx"
	"github.com/ezstay/payrecon/pkg/metrics"
	"github.com/ezstay/payrecon/pkg/types"
)

// AttemptRecorder persists settlement attempts.
type AttemptRecorder interface {
	RecordSettlementAttempt(ctx context.Context, a *models.SettlementAttempt) error
}

type Result string

const (
	ResultSettled Result = "settled"
	ResultFailed  Result = "failed"
	ResultPending Result = "pending"
	ResultSkipped Result = "skipped"
)

// Service runs the mark-paid step for recorded payments: one bounded call to
// the Notifier, never retried inline, with every attempt recorded.
type Service struct {
	notifier Notifier
	attempts AttemptRecorder
	timeout  time.Duration
	log      *zap.SugaredLogger
	metrics  *metrics.Business
}

func NewService(cfg *config.Config, notifier Notifier, attempts AttemptRecorder, log *zap.SugaredLogger, m *metrics.Business) *Service {
	timeout := 3 * time.Second
	if cfg != nil && cfg.Settlement.Timeout > 0 {
		timeout = cfg.Settlement.Timeout
	}
	return &Service{notifier: notifier, attempts: attempts, timeout: timeout, log: log, metrics: m}
}

// Settle notifies the billing service for p. Unlinked payments are skipped.
// The returned error is the notifier's; a failure to record the attempt is
// only logged.
func (s *Service) Settle(ctx context.Context, p *models.Payment, trigger types.SettlementTrigger) (Result, error) {
	log := logctx.FromCtx(ctx, s.log).With("payment_id", p.ID, "bill_reference", p.BillReference, "trigger", trigger)
	if !p.IsLinked() {
		return ResultSkipped, nil
	}
	billID, err := uuid.Parse(p.BillReference)
	if err != nil {
		log.Errorw("settlement_invalid_bill_reference", "err", err)
		return ResultSkipped, nil
	}

	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	notifyErr := s.notifier.Notify(callCtx, billID)
	cancel()
	elapsed := time.Since(start)
	s.metrics.ObserveProcess("settle", string(trigger), start)

	attempt := &models.SettlementAttempt{
		PaymentID:     p.ID,
		BillReference: p.BillReference,
		Succeeded:     notifyErr == nil,
		Trigger:       trigger,
		DurationMs:    elapsed.Milliseconds(),
		AttemptedAt:   start,
	}
	if notifyErr != nil {
		attempt.Error = notifyErr.Error()
	}
	// the attempt is recorded even when the caller's context is already done
	if err := s.attempts.RecordSettlementAttempt(context.WithoutCancel(ctx), attempt); err != nil {
		log.Errorw("settlement_attempt_record_failed", "err", err)
	}

	if notifyErr != nil {
		s.metrics.IncSettlement(string(trigger), string(ResultFailed))
		log.Warnw("settlement_notify_failed", "err", notifyErr, "duration_ms", attempt.DurationMs)
		return ResultFailed, fmt.Errorf("notify bill %s: %w", billID, notifyErr)
	}
	s.metrics.IncSettlement(string(trigger), string(ResultSettled))
	log.Infow("settlement_notified", "duration_ms", attempt.DurationMs)
	return ResultSettled, nil
}
