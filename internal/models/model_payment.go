package models

import (
	"errors"
	"time"

	"github.com/ezstay/payrecon/pkg/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrPaymentImmutable is returned by any attempt to update or delete a payment.
var ErrPaymentImmutable = errors.New("payment records are append-only")

// Payment is the durable fact that money arrived. Rows are never updated or
// deleted; settlement progress lives in SettlementAttempt.
type Payment struct {
	ID string `gorm:"column:id;primary_key;type:uuid" json:"id"`
	// BillReference is the lowercase dashed bill id, empty when unlinked.
	BillReference string `gorm:"column:bill_reference;type:varchar(64);not null;default:'';index:idx_bill_reference_occurred_at,priority:1" json:"bill_reference"`
	// ExtractedReference is what the memo yielded, kept even when the bill was not found.
	ExtractedReference string               `gorm:"column:extracted_reference;type:varchar(64);not null;default:''" json:"extracted_reference"`
	UnlinkedReason     types.UnlinkedReason `gorm:"column:unlinked_reason;type:varchar(32);not null;default:''" json:"unlinked_reason"`
	PayerID            string               `gorm:"column:payer_id;type:varchar(64);not null;default:'';index:idx_payer_id" json:"payer_id"`
	PayeeID            string               `gorm:"column:payee_id;type:varchar(64);not null;default:'';index:idx_payee_id" json:"payee_id"`

	GatewayTransactionID string `gorm:"column:gateway_transaction_id;type:varchar(128);not null;uniqueIndex:unique_gateway_transaction_id" json:"gateway_transaction_id"`

	Amount         decimal.Decimal     `gorm:"column:amount;type:numeric(20,2);not null" json:"amount"`
	OwedAmount     decimal.NullDecimal `gorm:"column:owed_amount;type:numeric(20,2)" json:"owed_amount"`
	AmountMismatch bool                `gorm:"column:amount_mismatch;not null;default:false" json:"amount_mismatch"`

	RawMemo       string                  `gorm:"column:raw_memo;type:text" json:"raw_memo"`
	SourceAccount string                  `gorm:"column:source_account;type:varchar(64)" json:"source_account"`
	GatewayName   string                  `gorm:"column:gateway_name;type:varchar(64)" json:"gateway_name"`
	Direction     types.TransferDirection `gorm:"column:direction;type:varchar(8);not null;default:'in'" json:"direction"`

	OccurredAt time.Time `gorm:"column:occurred_at;not null;index:idx_bill_reference_occurred_at,priority:2" json:"occurred_at"`
	RecordedAt time.Time `gorm:"column:recorded_at;not null" json:"recorded_at"`
}

func (Payment) TableName() string {
	return "payment"
}

func (p *Payment) IsLinked() bool {
	return p != nil && p.BillReference != ""
}

// State derives the settlement state given whether a succeeded attempt exists.
func (p *Payment) State(settled bool) types.SettlementState {
	return types.DeriveSettlementState(p.IsLinked(), settled)
}

func (p *Payment) BeforeUpdate(*gorm.DB) error {
	return ErrPaymentImmutable
}

func (p *Payment) BeforeDelete(*gorm.DB) error {
	return ErrPaymentImmutable
}
