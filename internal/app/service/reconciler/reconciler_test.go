package reconciler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ezstay/payrecon/internal/app/service/ledger"
	"github.com/ezstay/payrecon/internal/app/service/query"
	"github.com/ezstay/payrecon/internal/app/service/settlement"
	"github.com/ezstay/payrecon/internal/models"
	"github.com/ezstay/payrecon/internal/platform/db/dbtest"
	"github.com/ezstay/payrecon/pkg/config"
	"github.com/ezstay/payrecon/pkg/metrics"
	"github.com/ezstay/payrecon/pkg/types"
)

const billRef = "148a4d2e-8ed5-4d16-abea-10d3974e288f"

type stubDirectory struct {
	mu    sync.Mutex
	bills map[uuid.UUID]*settlement.Bill
	err   error
	calls int
}

func (d *stubDirectory) Lookup(_ context.Context, ref uuid.UUID) (*settlement.Bill, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	b, ok := d.bills[ref]
	if !ok {
		return nil, settlement.ErrBillNotFound
	}
	return b, nil
}

type stubNotifier struct {
	mu    sync.Mutex
	calls int
	block bool
	err   error
}

func (n *stubNotifier) Notify(ctx context.Context, _ uuid.UUID) error {
	n.mu.Lock()
	n.calls++
	n.mu.Unlock()
	if n.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return n.err
}

func (n *stubNotifier) Calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

type memAudit struct {
	mu   sync.Mutex
	rows []*models.PaymentNotificationLog
}

func (a *memAudit) Save(_ context.Context, log *models.PaymentNotificationLog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rows = append(a.rows, log)
}

type failingStore struct{ err error }

func (f failingStore) GetByGatewayTransactionID(context.Context, string) (*models.Payment, error) {
	return nil, f.err
}

func (f failingStore) Create(context.Context, *models.Payment) error { return f.err }

type harness struct {
	db        *gorm.DB
	r         *Reconciler
	ledger    *ledger.Service
	query     *query.Service
	directory *stubDirectory
	notifier  *stubNotifier
	audit     *memAudit
	metrics   *metrics.Business
}

func newHarness(t *testing.T, async bool) *harness {
	t.Helper()
	log := zap.NewNop().Sugar()
	cfg := &config.Config{Settlement: config.SettlementConfig{Timeout: 50 * time.Millisecond, Async: async}}

	gdb := dbtest.New(t)
	l := ledger.NewService(gdb, log)
	m, err := metrics.NewBusiness(prometheus.NewRegistry())
	require.NoError(t, err)

	h := &harness{
		db:     gdb,
		ledger: l,
		query:  query.NewService(l),
		directory: &stubDirectory{bills: map[uuid.UUID]*settlement.Bill{
			uuid.MustParse(billRef): {
				ID:         uuid.MustParse(billRef),
				PayerID:    "tenant-1",
				PayeeID:    "owner-1",
				OwedAmount: decimal.NewFromInt(500000),
			},
		}},
		notifier: &stubNotifier{},
		audit:    &memAudit{},
		metrics:  m,
	}
	settler := settlement.NewService(cfg, h.notifier, l, log, m)
	h.r = New(cfg, l, h.directory, settler, h.audit, log, m)
	return h
}

func notification(id, memo string, amount int64) *Notification {
	return &Notification{
		Gateway:              "SePay",
		GatewayTransactionID: id,
		AccountNumber:        "0123456789",
		Memo:                 memo,
		Amount:               decimal.NewFromInt(amount),
		Direction:            types.TransferDirectionIn,
		OccurredAt:           time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC),
	}
}

func (h *harness) count(t *testing.T) int64 {
	var n int64
	require.NoError(t, h.db.Model(&models.Payment{}).Count(&n).Error)
	return n
}

func TestHandle_DashedReferenceIsRecordedAndSettled(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()

	out, err := h.r.Handle(ctx, notification("998877", "Thanh toan "+billRef, 500000))
	require.NoError(t, err)
	require.True(t, out.Accepted)
	require.Equal(t, StatusRecorded, out.Status)
	require.Empty(t, out.Reason)
	require.Equal(t, billRef, out.BillReference)
	require.Equal(t, settlement.ResultSettled, out.Settlement)
	require.False(t, out.AmountMismatch)

	p, err := h.ledger.GetByGatewayTransactionID(ctx, "998877")
	require.NoError(t, err)
	require.Equal(t, billRef, p.BillReference)
	require.Equal(t, "tenant-1", p.PayerID)
	require.Equal(t, "owner-1", p.PayeeID)
	require.True(t, p.OwedAmount.Valid)

	status, err := h.query.BillStatus(ctx, billRef)
	require.NoError(t, err)
	require.Equal(t, types.SettlementStateLinkedSettled, status.State)

	require.Len(t, h.audit.rows, 2)
	require.Equal(t, models.PaymentNotificationLogStatusReceived, h.audit.rows[0].Status)
	require.Equal(t, models.PaymentNotificationLogStatusHandled, h.audit.rows[1].Status)
	require.NotNil(t, h.audit.rows[1].Result)
}

func TestHandle_CompactReference(t *testing.T) {
	h := newHarness(t, false)

	out, err := h.r.Handle(context.Background(), notification("998877", "148A4D2E8ED54D16ABEA10D3974E288F ck tu App", 500000))
	require.NoError(t, err)
	require.Equal(t, StatusRecorded, out.Status)
	require.Equal(t, billRef, out.BillReference)
}

func TestHandle_SameDeliveryTwiceKeepsOneRow(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	n := notification("998877", "Thanh toan "+billRef, 500000)

	first, err := h.r.Handle(ctx, n)
	require.NoError(t, err)
	second, err := h.r.Handle(ctx, n)
	require.NoError(t, err)

	require.True(t, second.Accepted)
	require.Equal(t, StatusDuplicate, second.Status)
	require.Equal(t, ReasonDuplicate, second.Reason)
	require.Equal(t, first.PaymentID, second.PaymentID)
	require.Equal(t, settlement.ResultSkipped, second.Settlement)
	require.EqualValues(t, 1, h.count(t))
	require.Equal(t, 1, h.notifier.Calls())
	require.Equal(t, 1, h.directory.calls)
}

func TestHandle_ConcurrentDuplicates(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()

	const deliveries = 6
	var wg sync.WaitGroup
	outs := make([]*Outcome, deliveries)
	errs := make([]error, deliveries)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outs[i], errs[i] = h.r.Handle(ctx, notification("998877", "Thanh toan "+billRef, 500000))
		}(i)
	}
	wg.Wait()

	recorded := 0
	for i := range outs {
		require.NoError(t, errs[i])
		require.True(t, outs[i].Accepted)
		if outs[i].Status == StatusRecorded {
			recorded++
		} else {
			require.Equal(t, StatusDuplicate, outs[i].Status)
		}
	}
	require.Equal(t, 1, recorded)
	require.EqualValues(t, 1, h.count(t))
	require.Equal(t, 1, h.notifier.Calls())
}

func TestHandle_NoReferenceIsRecordedUnlinked(t *testing.T) {
	h := newHarness(t, false)

	out, err := h.r.Handle(context.Background(), notification("tx-1", "chuyen tien phong", 500000))
	require.NoError(t, err)
	require.True(t, out.Accepted)
	require.Equal(t, StatusUnlinked, out.Status)
	require.Equal(t, string(types.UnlinkedReasonNoReference), out.Reason)
	require.Equal(t, settlement.ResultSkipped, out.Settlement)
	require.Zero(t, h.directory.calls)
	require.Zero(t, h.notifier.Calls())
	require.EqualValues(t, 1, h.count(t))
}

func TestHandle_UnknownBillIsRecordedUnlinked(t *testing.T) {
	h := newHarness(t, false)
	ctx := context.Background()
	other := "0190a0a0-1111-7222-8333-444455556666"

	out, err := h.r.Handle(ctx, notification("tx-1", "TT "+other, 100))
	require.NoError(t, err)
	require.True(t, out.Accepted)
	require.Equal(t, StatusUnlinked, out.Status)
	require.Equal(t, string(types.UnlinkedReasonBillNotFound), out.Reason)
	require.Empty(t, out.BillReference)
	require.Zero(t, h.notifier.Calls())

	p, err := h.ledger.GetByID(ctx, out.PaymentID)
	require.NoError(t, err)
	require.Equal(t, other, p.ExtractedReference)
	require.Empty(t, p.BillReference)

	paid, err := h.query.IsBillPaid(ctx, other)
	require.NoError(t, err)
	require.False(t, paid)
}

func TestHandle_LookupFailureIsRecordedUnlinked(t *testing.T) {
	h := newHarness(t, false)
	h.directory.err = errors.New("billing unavailable")

	out, err := h.r.Handle(context.Background(), notification("tx-1", "TT "+billRef, 500000))
	require.NoError(t, err)
	require.True(t, out.Accepted)
	require.Equal(t, StatusUnlinked, out.Status)
	require.Equal(t, string(types.UnlinkedReasonBillLookupFailed), out.Reason)
	require.EqualValues(t, 1, h.count(t))
}

func TestHandle_DebitIsNotSettled(t *testing.T) {
	h := newHarness(t, false)
	n := notification("tx-out", "TT "+billRef, 500000)
	n.Direction = types.TransferDirectionOut

	out, err := h.r.Handle(context.Background(), n)
	require.NoError(t, err)
	require.Equal(t, StatusUnlinked, out.Status)
	require.Equal(t, string(types.UnlinkedReasonNotCredit), out.Reason)
	require.Zero(t, h.directory.calls)
	require.Zero(t, h.notifier.Calls())
}

func TestHandle_NotifierTimeoutStillPaid(t *testing.T) {
	h := newHarness(t, false)
	h.notifier.block = true
	ctx := context.Background()

	out, err := h.r.Handle(ctx, notification("998877", "Thanh toan "+billRef, 500000))
	require.NoError(t, err)
	require.True(t, out.Accepted)
	require.Equal(t, StatusRecorded, out.Status)
	require.Equal(t, settlement.ResultFailed, out.Settlement)

	paid, err := h.query.IsBillPaid(ctx, billRef)
	require.NoError(t, err)
	require.True(t, paid)

	status, err := h.query.BillStatus(ctx, billRef)
	require.NoError(t, err)
	require.Equal(t, types.SettlementStateLinkedUnsettled, status.State)
}

func TestHandle_AsyncSettlement(t *testing.T) {
	h := newHarness(t, true)
	ctx, cancel := context.WithCancel(context.Background())

	out, err := h.r.Handle(ctx, notification("998877", "Thanh toan "+billRef, 500000))
	cancel()
	require.NoError(t, err)
	require.Equal(t, settlement.ResultPending, out.Settlement)

	h.r.Wait()
	require.Equal(t, 1, h.notifier.Calls())
	status, err := h.query.BillStatus(context.Background(), billRef)
	require.NoError(t, err)
	require.Equal(t, types.SettlementStateLinkedSettled, status.State)
}

func TestHandle_AmountMismatchIsFlagged(t *testing.T) {
	h := newHarness(t, false)

	out, err := h.r.Handle(context.Background(), notification("tx-partial", "Thanh toan "+billRef, 200000))
	require.NoError(t, err)
	require.True(t, out.Accepted)
	require.Equal(t, StatusRecorded, out.Status)
	require.True(t, out.AmountMismatch)
	require.Equal(t, settlement.ResultSettled, out.Settlement)

	p, err := h.ledger.GetByID(context.Background(), out.PaymentID)
	require.NoError(t, err)
	require.True(t, p.AmountMismatch)
	require.True(t, p.OwedAmount.Decimal.Equal(decimal.NewFromInt(500000)))
}

func TestHandle_LedgerFailureIsReturned(t *testing.T) {
	h := newHarness(t, false)
	audit := &memAudit{}
	r := New(nil, failingStore{err: errors.New("connection refused")}, h.directory, &settlement.Service{}, audit, zap.NewNop().Sugar(), nil)

	out, err := r.Handle(context.Background(), notification("tx-1", "Thanh toan "+billRef, 500000))
	require.Error(t, err)
	require.Nil(t, out)
	require.Len(t, audit.rows, 2)
	require.Equal(t, models.PaymentNotificationLogStatusHandleFailed, audit.rows[1].Status)
}

func TestHandle_RejectsMissingTransactionID(t *testing.T) {
	h := newHarness(t, false)

	_, err := h.r.Handle(context.Background(), notification("", "Thanh toan "+billRef, 1))
	require.ErrorIs(t, err, ErrInvalidNotification)
	_, err = h.r.Handle(context.Background(), nil)
	require.ErrorIs(t, err, ErrInvalidNotification)
	require.Empty(t, h.audit.rows)
}
