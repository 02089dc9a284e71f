package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/ezstay/payrecon/internal/models"
	"github.com/ezstay/payrecon/pkg/types"
)

var (
	// ErrDuplicateTransaction: a payment with the same gateway transaction id exists.
	ErrDuplicateTransaction = errors.New("duplicate gateway transaction")
	ErrPaymentNotFound      = errors.New("payment not found")
)

// Ledger is the append-only store of received payments and their settlement
// attempts. The unique gateway transaction id is its only concurrency guard.
type Ledger interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	GetByGatewayTransactionID(ctx context.Context, gatewayTransactionID string) (*models.Payment, error)

	ListByPayer(ctx context.Context, payerID string) ([]*models.Payment, error)
	ListByPayee(ctx context.Context, payeeID string) ([]*models.Payment, error)
	ListByBill(ctx context.Context, billReference string) ([]*models.Payment, error)
	LatestForBill(ctx context.Context, billReference string) (*models.Payment, error)
	Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error)

	RecordSettlementAttempt(ctx context.Context, a *models.SettlementAttempt) error
	SettledPaymentIDs(ctx context.Context, paymentIDs []string) (map[string]bool, error)
	ListUnsettled(ctx context.Context, recordedBefore time.Time, limit int) ([]*models.Payment, error)
}

type ScanRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanResponse struct {
	Items []*models.Payment `json:"items"`
	Total int64             `json:"total"`
}

// ScanFields are the payment columns admins may filter and sort on.
var ScanFields = map[string]bool{
	"id":                     true,
	"bill_reference":         true,
	"extracted_reference":    true,
	"unlinked_reason":        true,
	"payer_id":               true,
	"payee_id":               true,
	"gateway_transaction_id": true,
	"amount":                 true,
	"amount_mismatch":        true,
	"gateway_name":           true,
	"direction":              true,
	"occurred_at":            true,
	"recorded_at":            true,
}
