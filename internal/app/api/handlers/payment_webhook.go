package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ezstay/payrecon/internal/app/service/reconciler"
	"github.com/ezstay/payrecon/pkg/config"
	"github.com/ezstay/payrecon/pkg/logctx"
	"github.com/ezstay/payrecon/pkg/response"
	"github.com/ezstay/payrecon/pkg/types"
)

const sepayTimeLayout = "2006-01-02 15:04:05"

// Reconciler is the part of reconciler.Reconciler the webhook needs.
type Reconciler interface {
	Handle(ctx context.Context, n *reconciler.Notification) (*reconciler.Outcome, error)
}

// SepayWebhookRequest is the transfer notification body posted by SePay.
type SepayWebhookRequest struct {
	Gateway         string                     `json:"gateway"`
	TransactionDate string                     `json:"transactionDate"`
	AccountNumber   string                     `json:"accountNumber"`
	Content         string                     `json:"content"`
	TransferType    string                     `json:"transferType"`
	TransferAmount  decimal.Decimal            `json:"transferAmount"`
	ID              types.GatewayTransactionID `json:"id" swaggertype:"string"`
}

type WebhookResponse struct {
	Success        bool   `json:"success"`
	Status         string `json:"status"`
	Reason         string `json:"reason,omitempty"`
	PaymentID      string `json:"payment_id,omitempty"`
	BillReference  string `json:"bill_reference,omitempty"`
	Settlement     string `json:"settlement"`
	AmountMismatch bool   `json:"amount_mismatch"`
}

// parseTransactionDate reads the gateway's local timestamp. The field is
// informational, so an unreadable value falls back to now and never rejects
// the transfer.
func parseTransactionDate(s string, loc *time.Location, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now, true
	}
	if t, err := time.ParseInLocation(sepayTimeLayout, s, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return now, false
}

func (req *SepayWebhookRequest) toNotification(cfg *config.Config, raw []byte, occurredAt time.Time) *reconciler.Notification {
	gateway := req.Gateway
	if gateway == "" && cfg != nil {
		gateway = cfg.Webhook.DefaultGateway
	}
	return &reconciler.Notification{
		Gateway:              gateway,
		GatewayTransactionID: req.ID.String(),
		AccountNumber:        req.AccountNumber,
		Memo:                 req.Content,
		Amount:               req.TransferAmount,
		Direction:            types.ParseTransferDirection(req.TransferType),
		OccurredAt:           occurredAt,
		Raw:                  raw,
	}
}

// @Summary      SePay Webhook
// @Description  Records a bank transfer reported by SePay and settles the bill referenced in its memo. A repeated delivery of the same transaction id is acknowledged without side effects. Only a failed ledger write answers 500, which makes the gateway retry.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        Authorization header string false "Apikey <key>, required when a webhook key is configured"
// @Param        payload body handlers.SepayWebhookRequest true "SePay transfer notification"
// @Success      200  {object}  handlers.RespWebhook
// @Failure      401  {object}  handlers.RespOK
// @Failure      500  {object}  handlers.RespOK
// @Router       /api/v1/payment/hook/sepay [post]
func ApiSepayWebhook(rec Reconciler, cfg *config.Config, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		l := logctx.FromGin(c, log)
		raw, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		var req SepayWebhookRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			l.Warnw("webhook_sepay_malformed", "err", err)
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.ID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing id"))
			return
		}
		occurredAt, ok := parseTransactionDate(req.TransactionDate, cfg.Location(), time.Now())
		if !ok {
			l.Warnw("webhook_sepay_bad_transaction_date", "transaction_date", req.TransactionDate)
		}
		n := req.toNotification(cfg, raw, occurredAt)
		l.Infow("webhook_sepay_received", "gateway_transaction_id", n.GatewayTransactionID, "amount", n.Amount.String())

		out, err := rec.Handle(c.Request.Context(), n)
		if errors.Is(err, reconciler.ErrInvalidNotification) {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if err != nil {
			l.Errorw("webhook_sepay_handle_error", "gateway_transaction_id", n.GatewayTransactionID, "error", err.Error())
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		l.Infow("webhook_sepay_handled", "status", out.Status, "reason", out.Reason, "payment_id", out.PaymentID)
		c.JSON(http.StatusOK, response.OKT(&WebhookResponse{
			Success:        out.Accepted,
			Status:         string(out.Status),
			Reason:         out.Reason,
			PaymentID:      out.PaymentID,
			BillReference:  out.BillReference,
			Settlement:     string(out.Settlement),
			AmountMismatch: out.AmountMismatch,
		}))
	}
}

func RegisterPaymentWebhookRoutes(r gin.IRouter, rec Reconciler, cfg *config.Config, log *zap.SugaredLogger) {
	r.POST("/hook/sepay", ApiSepayWebhook(rec, cfg, log))
}
