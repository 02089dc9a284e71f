// Package reconciler turns gateway transfer notifications into ledger
// payments and drives the settlement of the bills they pay.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/ezstay/payrecon/internal/app/service/ledger"
	"github.com/ezstay/payrecon/internal/app/service/reference"
	"github.com/ezstay/payrecon/internal/app/service/settlement"
	"github.com/ezstay/payrecon/internal/models"
	"github.com/ezstay/payrecon/pkg/config"
	"github.com/ezstay/payrecon/pkg/logctx"
	"github.com/ezstay/payrecon/pkg/metrics"
	"github.com/ezstay/payrecon/pkg/types"
)

var ErrInvalidNotification = errors.New("invalid notification")

// Notification is one transfer reported by a payment gateway.
type Notification struct {
	Gateway              string                  `json:"gateway"`
	GatewayTransactionID string                  `json:"gateway_transaction_id"`
	AccountNumber        string                  `json:"account_number"`
	Memo                 string                  `json:"memo"`
	Amount               decimal.Decimal         `json:"amount"`
	Direction            types.TransferDirection `json:"direction"`
	OccurredAt           time.Time               `json:"occurred_at"`
	// Raw is the body as received, kept for the audit trail.
	Raw []byte `json:"-"`
}

type Status string

const (
	StatusRecorded  Status = "recorded"
	StatusDuplicate Status = "duplicate"
	StatusUnlinked  Status = "unlinked"
)

const ReasonDuplicate = "duplicate"

type Outcome struct {
	Accepted       bool              `json:"accepted"`
	Status         Status            `json:"status"`
	Reason         string            `json:"reason,omitempty"`
	PaymentID      string            `json:"payment_id,omitempty"`
	BillReference  string            `json:"bill_reference,omitempty"`
	Settlement     settlement.Result `json:"settlement"`
	AmountMismatch bool              `json:"amount_mismatch"`
}

type PaymentStore interface {
	GetByGatewayTransactionID(ctx context.Context, gatewayTransactionID string) (*models.Payment, error)
	Create(ctx context.Context, p *models.Payment) error
}

type Settler interface {
	Settle(ctx context.Context, p *models.Payment, trigger types.SettlementTrigger) (settlement.Result, error)
}

type AuditLog interface {
	Save(ctx context.Context, log *models.PaymentNotificationLog)
}

type Reconciler struct {
	payments PaymentStore
	bills    settlement.BillDirectory
	settler  Settler
	audit    AuditLog
	async    bool
	log      *zap.SugaredLogger
	metrics  *metrics.Business

	inflight sync.WaitGroup
}

func New(cfg *config.Config, payments PaymentStore, bills settlement.BillDirectory, settler Settler, audit AuditLog, log *zap.SugaredLogger, m *metrics.Business) *Reconciler {
	return &Reconciler{
		payments: payments,
		bills:    bills,
		settler:  settler,
		audit:    audit,
		async:    cfg != nil && cfg.Settlement.Async,
		log:      log,
		metrics:  m,
	}
}

// Handle records n in the ledger exactly once and tries to settle the bill
// it pays. It is safe to call repeatedly with the same notification. Only a
// failed ledger write is returned as an error; every other problem still
// yields an accepted outcome.
func (r *Reconciler) Handle(ctx context.Context, n *Notification) (out *Outcome, err error) {
	if n == nil || n.GatewayTransactionID == "" {
		return nil, fmt.Errorf("%w: missing gateway transaction id", ErrInvalidNotification)
	}
	start := time.Now()
	log := logctx.FromCtx(ctx, r.log).With("gateway", n.Gateway, "gateway_transaction_id", n.GatewayTransactionID)

	r.saveAudit(ctx, n, models.PaymentNotificationLogStatusReceived, nil, nil)
	defer func() {
		status := models.PaymentNotificationLogStatusHandled
		if err != nil {
			status = models.PaymentNotificationLogStatusHandleFailed
			r.metrics.IncOutcome("error", "")
		} else {
			r.metrics.IncOutcome(string(out.Status), out.Reason)
		}
		r.saveAudit(ctx, n, status, out, err)
		r.metrics.ObserveProcess("reconcile", n.Gateway, start)
	}()

	existing, err := r.payments.GetByGatewayTransactionID(ctx, n.GatewayTransactionID)
	switch {
	case err == nil:
		log.Infow("reconcile_duplicate", "payment_id", existing.ID)
		return duplicate(existing), nil
	case !errors.Is(err, ledger.ErrPaymentNotFound):
		// the unique index still rejects a second insert
		log.Warnw("reconcile_gate_read_failed", "err", err)
	}
	err = nil

	p := &models.Payment{
		GatewayTransactionID: n.GatewayTransactionID,
		Amount:               n.Amount,
		RawMemo:              n.Memo,
		SourceAccount:        n.AccountNumber,
		GatewayName:          n.Gateway,
		Direction:            n.Direction,
		OccurredAt:           n.OccurredAt,
	}
	if p.Direction == "" {
		p.Direction = types.TransferDirectionIn
	}
	r.link(ctx, log, n, p)

	if err = r.payments.Create(ctx, p); err != nil {
		if errors.Is(err, ledger.ErrDuplicateTransaction) {
			log.Infow("reconcile_duplicate_on_insert")
			err = nil
			if existing, getErr := r.payments.GetByGatewayTransactionID(ctx, n.GatewayTransactionID); getErr == nil {
				return duplicate(existing), nil
			}
			return &Outcome{Accepted: true, Status: StatusDuplicate, Reason: ReasonDuplicate, Settlement: settlement.ResultSkipped}, nil
		}
		log.Errorw("reconcile_ledger_write_failed", "err", err)
		return nil, fmt.Errorf("record payment: %w", err)
	}

	out = &Outcome{
		Accepted:       true,
		Status:         StatusRecorded,
		Reason:         string(p.UnlinkedReason),
		PaymentID:      p.ID,
		BillReference:  p.BillReference,
		Settlement:     settlement.ResultSkipped,
		AmountMismatch: p.AmountMismatch,
	}
	if !p.IsLinked() {
		out.Status = StatusUnlinked
		log.Infow("reconcile_recorded_unlinked", "payment_id", p.ID, "reason", p.UnlinkedReason, "extracted_reference", p.ExtractedReference)
		return out, nil
	}
	log.Infow("reconcile_recorded", "payment_id", p.ID, "bill_reference", p.BillReference, "amount", p.Amount.String())
	out.Settlement = r.settle(ctx, p)
	return out, nil
}

// link resolves the bill n pays and fills the payment's bill fields, or
// records why it stays unlinked.
func (r *Reconciler) link(ctx context.Context, log *zap.SugaredLogger, n *Notification, p *models.Payment) {
	ref, ok := reference.Extract(n.Memo)
	if ok {
		p.ExtractedReference = ref.String()
	}
	if !p.Direction.IsCredit() {
		p.UnlinkedReason = types.UnlinkedReasonNotCredit
		return
	}
	if !ok {
		p.UnlinkedReason = types.UnlinkedReasonNoReference
		return
	}

	bill, err := r.bills.Lookup(ctx, ref)
	switch {
	case errors.Is(err, settlement.ErrBillNotFound):
		p.UnlinkedReason = types.UnlinkedReasonBillNotFound
		return
	case err != nil:
		log.Warnw("reconcile_bill_lookup_failed", "reference", p.ExtractedReference, "err", err)
		p.UnlinkedReason = types.UnlinkedReasonBillLookupFailed
		return
	case bill == nil:
		p.UnlinkedReason = types.UnlinkedReasonBillNotFound
		return
	}

	p.BillReference = ref.String()
	p.PayerID = bill.PayerID
	p.PayeeID = bill.PayeeID
	p.OwedAmount = decimal.NullDecimal{Decimal: bill.OwedAmount, Valid: true}
	if !p.Amount.Equal(bill.OwedAmount) {
		p.AmountMismatch = true
		r.metrics.IncAmountMismatch()
		log.Warnw("reconcile_amount_mismatch", "bill_reference", p.BillReference,
			"amount", p.Amount.String(), "owed_amount", bill.OwedAmount.String())
	}
}

// settle runs the mark-paid call on a context detached from the request so
// the gateway hanging up does not cancel it.
func (r *Reconciler) settle(ctx context.Context, p *models.Payment) settlement.Result {
	detached := context.WithoutCancel(ctx)
	if r.async {
		r.inflight.Add(1)
		go func() {
			defer r.inflight.Done()
			_, _ = r.settler.Settle(detached, p, types.SettlementTriggerWebhook)
		}()
		return settlement.ResultPending
	}
	res, _ := r.settler.Settle(detached, p, types.SettlementTriggerWebhook)
	return res
}

// Wait blocks until asynchronous settlements started by Handle are done.
func (r *Reconciler) Wait() { r.inflight.Wait() }

func duplicate(p *models.Payment) *Outcome {
	return &Outcome{
		Accepted:       true,
		Status:         StatusDuplicate,
		Reason:         ReasonDuplicate,
		PaymentID:      p.ID,
		BillReference:  p.BillReference,
		Settlement:     settlement.ResultSkipped,
		AmountMismatch: p.AmountMismatch,
	}
}

func (r *Reconciler) saveAudit(ctx context.Context, n *Notification, status models.PaymentNotificationLogStatus, out *Outcome, handleErr error) {
	if r.audit == nil {
		return
	}
	data := n.Raw
	if len(data) == 0 || !json.Valid(data) {
		data, _ = json.Marshal(n)
	}
	entry := &models.PaymentNotificationLog{
		Gateway:              n.Gateway,
		TraceID:              logctx.TraceID(ctx),
		GatewayTransactionID: n.GatewayTransactionID,
		NotificationTime:     time.Now(),
		Data:                 datatypes.JSON(data),
		Status:               status,
	}
	if status != models.PaymentNotificationLogStatusReceived {
		res := map[string]any{"outcome": out}
		if handleErr != nil {
			res["error"] = handleErr.Error()
		}
		b, _ := json.Marshal(res)
		result := datatypes.JSON(b)
		entry.Result = &result
	}
	r.audit.Save(ctx, entry)
}
