package handlers

import (
	"time"

	"github.com/ezstay/payrecon/internal/app/service/reference"
	"github.com/ezstay/payrecon/internal/app/service/statistics"
	"github.com/ezstay/payrecon/internal/app/service/sweep"
	"github.com/ezstay/payrecon/pkg/response"
	"github.com/ezstay/payrecon/pkg/types"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespWebhook wraps WebhookResponse in the standard envelope.
type RespWebhook struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    WebhookResponse          `json:"data"`
}

// SwaggerPayment is a flattened view of query.PaymentView for documentation purposes.
type SwaggerPayment struct {
	ID                   string                  `json:"id"`
	BillReference        string                  `json:"bill_reference"`
	ExtractedReference   string                  `json:"extracted_reference"`
	UnlinkedReason       types.UnlinkedReason    `json:"unlinked_reason"`
	PayerID              string                  `json:"payer_id"`
	PayeeID              string                  `json:"payee_id"`
	GatewayTransactionID string                  `json:"gateway_transaction_id"`
	Amount               string                  `json:"amount"`
	OwedAmount           *string                 `json:"owed_amount"`
	AmountMismatch       bool                    `json:"amount_mismatch"`
	RawMemo              string                  `json:"raw_memo"`
	SourceAccount        string                  `json:"source_account"`
	GatewayName          string                  `json:"gateway_name"`
	Direction            types.TransferDirection `json:"direction"`
	OccurredAt           time.Time               `json:"occurred_at"`
	RecordedAt           time.Time               `json:"recorded_at"`
	State                types.SettlementState   `json:"state"`
}

type RespPayment struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    SwaggerPayment           `json:"data"`
}

type RespPaymentList struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []SwaggerPayment         `json:"data"`
}

// SwaggerBillStatus mirrors query.BillStatus with decimals rendered as strings.
type SwaggerBillStatus struct {
	BillID        string                `json:"bill_id"`
	IsPaid        bool                  `json:"is_paid"`
	State         types.SettlementState `json:"state"`
	PaymentID     string                `json:"payment_id"`
	TransactionID string                `json:"transaction_id"`
	PaidAmount    *string               `json:"paid_amount"`
	PaidAt        *time.Time            `json:"paid_at"`
}

type RespBillStatus struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    SwaggerBillStatus        `json:"data"`
}

type RespReferencePayload struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    reference.Payload        `json:"data"`
}

type RespRevenueStats struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    statistics.RevenueStats  `json:"data"`
}

// RespListPayments wraps a page of payments in the standard envelope.
type RespListPayments struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    struct {
		Items []SwaggerPayment `json:"items"`
		Total int64            `json:"total"`
	} `json:"data"`
}

type RespSweep struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    sweep.Result             `json:"data"`
}
