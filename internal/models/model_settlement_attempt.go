package models

import (
	"time"

	"github.com/ezstay/payrecon/pkg/types"
)

// SettlementAttempt is one mark-paid call to the billing service. A payment
// is settled once any of its attempts succeeded.
type SettlementAttempt struct {
	ID            string                  `gorm:"column:id;primary_key;type:uuid" json:"id"`
	PaymentID     string                  `gorm:"column:payment_id;type:uuid;not null;index:idx_payment_id_succeeded,priority:1" json:"payment_id"`
	BillReference string                  `gorm:"column:bill_reference;type:varchar(64);not null" json:"bill_reference"`
	Succeeded     bool                    `gorm:"column:succeeded;not null;index:idx_payment_id_succeeded,priority:2" json:"succeeded"`
	Error         string                  `gorm:"column:error;type:text" json:"error,omitempty"`
	Trigger       types.SettlementTrigger `gorm:"column:triggered_by;type:varchar(16);not null" json:"trigger"`
	DurationMs    int64                   `gorm:"column:duration_ms;not null" json:"duration_ms"`
	AttemptedAt   time.Time               `gorm:"column:attempted_at;not null" json:"attempted_at"`
}

func (SettlementAttempt) TableName() string {
	return "settlement_attempt"
}
