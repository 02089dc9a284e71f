package sweep

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ezstay/payrecon/internal/app/service/ledger"
	"github.com/ezstay/payrecon/internal/app/service/settlement"
	"github.com/ezstay/payrecon/internal/models"
	"github.com/ezstay/payrecon/internal/platform/db/dbtest"
	"github.com/ezstay/payrecon/pkg/config"
	"github.com/ezstay/payrecon/pkg/types"
)

type flakyNotifier struct {
	fail  map[uuid.UUID]bool
	calls []uuid.UUID
}

func (n *flakyNotifier) Notify(_ context.Context, billID uuid.UUID) error {
	n.calls = append(n.calls, billID)
	if n.fail[billID] {
		return errors.New("503 from billing")
	}
	return nil
}

func TestRunOnce_SettlesOnlyUnsettledLinkedPayments(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop().Sugar()
	cfg := &config.Config{
		Settlement: config.SettlementConfig{Timeout: time.Second},
		Sweep:      config.SweepConfig{BatchSize: 10, MinAge: time.Minute},
	}
	l := ledger.NewService(dbtest.New(t), log)

	old := time.Now().Add(-time.Hour)
	billOK, billDown, billDone := uuid.New(), uuid.New(), uuid.New()
	mk := func(id string, bill uuid.UUID, recordedAt time.Time) *models.Payment {
		p := &models.Payment{
			BillReference:        bill.String(),
			GatewayTransactionID: id,
			Amount:               decimal.NewFromInt(1000),
			RecordedAt:           recordedAt,
		}
		require.NoError(t, l.Create(ctx, p))
		return p
	}
	mk("tx-ok", billOK, old)
	mk("tx-down", billDown, old)
	done := mk("tx-done", billDone, old)
	mk("tx-fresh", uuid.New(), time.Now())
	unlinked := &models.Payment{GatewayTransactionID: "tx-unlinked", UnlinkedReason: types.UnlinkedReasonNoReference, Amount: decimal.NewFromInt(1), RecordedAt: old}
	require.NoError(t, l.Create(ctx, unlinked))
	require.NoError(t, l.RecordSettlementAttempt(ctx, &models.SettlementAttempt{
		PaymentID: done.ID, BillReference: done.BillReference, Succeeded: true, Trigger: types.SettlementTriggerWebhook,
	}))

	n := &flakyNotifier{fail: map[uuid.UUID]bool{billDown: true}}
	s := NewSweeper(cfg, l, settlement.NewService(cfg, n, l, log, nil), log)

	res, err := s.RunOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, &Result{Scanned: 2, Settled: 1, Failed: 1}, res)
	require.ElementsMatch(t, []uuid.UUID{billOK, billDown}, n.calls)

	// the failed bill is retried on the next pass, the settled one is not
	delete(n.fail, billDown)
	n.calls = nil
	res, err = s.RunOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, &Result{Scanned: 1, Settled: 1}, res)
	require.Equal(t, []uuid.UUID{billDown}, n.calls)

	res, err = s.RunOnce(ctx)
	require.NoError(t, err)
	require.Zero(t, res.Scanned)
}

type stubLister struct{ err error }

func (s stubLister) ListUnsettled(context.Context, time.Time, int) ([]*models.Payment, error) {
	return nil, s.err
}

func TestRunOnce_ListError(t *testing.T) {
	s := NewSweeper(nil, stubLister{err: errors.New("db down")}, nil, zap.NewNop().Sugar())
	_, err := s.RunOnce(context.Background())
	require.Error(t, err)
}

func TestRun_ZeroIntervalReturns(t *testing.T) {
	s := NewSweeper(&config.Config{}, stubLister{}, nil, zap.NewNop().Sugar())
	finished := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Run did not return with a zero interval")
	}
}
