package settlement

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrBillNotFound = errors.New("bill not found")
	// ErrNotifyFailed wraps any non-success answer from the billing service.
	ErrNotifyFailed = errors.New("settlement notification failed")
)

// Bill is the billing service's view of an outstanding bill.
type Bill struct {
	ID         uuid.UUID       `json:"id"`
	PayerID    string          `json:"payer_id"`
	PayeeID    string          `json:"payee_id"`
	OwedAmount decimal.Decimal `json:"owed_amount"`
}

// BillDirectory resolves bill references. Lookup returns ErrBillNotFound for
// unknown bills; any other error means the directory could not answer.
type BillDirectory interface {
	Lookup(ctx context.Context, ref uuid.UUID) (*Bill, error)
}

// Notifier tells the billing service a bill was paid. Calls on an already
// settled bill must succeed.
type Notifier interface {
	Notify(ctx context.Context, billID uuid.UUID) error
}
