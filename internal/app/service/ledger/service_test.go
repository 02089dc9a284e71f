package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ezstay/payrecon/internal/models"
	"github.com/ezstay/payrecon/internal/platform/db/dbtest"
	"github.com/ezstay/payrecon/pkg/types"
)

const billA = "148a4d2e-8ed5-4d16-abea-10d3974e288f"

func newTestService(t *testing.T) *Service {
	return NewService(dbtest.New(t), zap.NewNop().Sugar())
}

func payment(gatewayID, bill string, amount int64, occurredAt time.Time) *models.Payment {
	return &models.Payment{
		BillReference:        bill,
		ExtractedReference:   bill,
		PayerID:              "tenant-1",
		PayeeID:              "owner-1",
		GatewayTransactionID: gatewayID,
		Amount:               decimal.NewFromInt(amount),
		Direction:            types.TransferDirectionIn,
		OccurredAt:           occurredAt,
	}
}

func TestCreate_AssignsIDsAndRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	p := payment("998877", billA, 500000, time.Time{})
	require.NoError(t, s.Create(ctx, p))
	require.NotEmpty(t, p.ID)
	require.False(t, p.RecordedAt.IsZero())
	require.Equal(t, p.RecordedAt, p.OccurredAt)

	err := s.Create(ctx, payment("998877", billA, 500000, time.Now()))
	require.ErrorIs(t, err, ErrDuplicateTransaction)

	got, err := s.GetByGatewayTransactionID(ctx, "998877")
	require.NoError(t, err)
	require.Equal(t, p.ID, got.ID)
	require.True(t, got.Amount.Equal(decimal.NewFromInt(500000)))

	_, err = s.GetByID(ctx, "0190a0a0-0000-7000-8000-000000000000")
	require.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestCreate_RequiresGatewayTransactionID(t *testing.T) {
	s := newTestService(t)
	require.Error(t, s.Create(context.Background(), payment("", billA, 1, time.Now())))
	require.Error(t, s.Create(context.Background(), nil))
}

func TestCreate_ConcurrentDuplicatesKeepOneRow(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Create(ctx, payment("tx-concurrent", billA, 100, time.Now()))
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		require.True(t, errors.Is(err, ErrDuplicateTransaction), err)
	}
	require.Equal(t, 1, created)

	var count int64
	require.NoError(t, s.db.Model(&models.Payment{}).Where("gateway_transaction_id = ?", "tx-concurrent").Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestListings_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, s.Create(ctx, payment("tx-1", billA, 100, base)))
	require.NoError(t, s.Create(ctx, payment("tx-2", billA, 200, base.Add(time.Hour))))
	other := payment("tx-3", "", 300, base.Add(2*time.Hour))
	other.PayerID, other.PayeeID = "", ""
	other.UnlinkedReason = types.UnlinkedReasonNoReference
	require.NoError(t, s.Create(ctx, other))

	byBill, err := s.ListByBill(ctx, billA)
	require.NoError(t, err)
	require.Len(t, byBill, 2)
	require.Equal(t, "tx-2", byBill[0].GatewayTransactionID)

	latest, err := s.LatestForBill(ctx, billA)
	require.NoError(t, err)
	require.Equal(t, "tx-2", latest.GatewayTransactionID)

	_, err = s.LatestForBill(ctx, "unknown")
	require.ErrorIs(t, err, ErrPaymentNotFound)

	byPayer, err := s.ListByPayer(ctx, "tenant-1")
	require.NoError(t, err)
	require.Len(t, byPayer, 2)

	byPayee, err := s.ListByPayee(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, byPayee, 2)
}

func TestScan(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"tx-1", "tx-2", "tx-3"} {
		require.NoError(t, s.Create(ctx, payment(id, billA, int64(100*(i+1)), base.Add(time.Duration(i)*time.Hour))))
	}

	res, err := s.Scan(ctx, &ScanRequest{
		Filters: []*types.CommonFilter{
			{Field: "gateway_transaction_id", Operator: types.CommonFilterOperatorIn, Values: []any{"tx-1", "tx-3"}},
		},
		Size:      1,
		SortBy:    "occurred_at",
		SortOrder: "desc",
	})
	require.NoError(t, err)
	require.EqualValues(t, 2, res.Total)
	require.Len(t, res.Items, 1)
	require.Equal(t, "tx-3", res.Items[0].GatewayTransactionID)

	_, err = s.Scan(ctx, &ScanRequest{Filters: []*types.CommonFilter{{Field: "raw_sql", Operator: types.CommonFilterOperatorEq, Values: []any{1}}}})
	require.Error(t, err)
	_, err = s.Scan(ctx, &ScanRequest{SortBy: "1; drop table payment"})
	require.Error(t, err)
}

func TestSettlementTracking(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	old := time.Now().Add(-time.Hour)

	settled := payment("tx-settled", billA, 100, old)
	settled.RecordedAt = old
	failing := payment("tx-failing", billA, 100, old)
	failing.RecordedAt = old
	fresh := payment("tx-fresh", billA, 100, time.Now())
	unlinked := payment("tx-unlinked", "", 100, old)
	unlinked.RecordedAt = old
	unlinked.UnlinkedReason = types.UnlinkedReasonBillNotFound
	for _, p := range []*models.Payment{settled, failing, fresh, unlinked} {
		require.NoError(t, s.Create(ctx, p))
	}

	require.NoError(t, s.RecordSettlementAttempt(ctx, &models.SettlementAttempt{
		PaymentID: settled.ID, BillReference: billA, Succeeded: true, Trigger: types.SettlementTriggerWebhook,
	}))
	require.NoError(t, s.RecordSettlementAttempt(ctx, &models.SettlementAttempt{
		PaymentID: failing.ID, BillReference: billA, Succeeded: false, Error: "timeout", Trigger: types.SettlementTriggerWebhook,
	}))

	ids, err := s.SettledPaymentIDs(ctx, []string{settled.ID, failing.ID, settled.ID})
	require.NoError(t, err)
	require.Equal(t, map[string]bool{settled.ID: true}, ids)

	empty, err := s.SettledPaymentIDs(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, empty)

	pending, err := s.ListUnsettled(ctx, time.Now().Add(-time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, failing.ID, pending[0].ID)
}
