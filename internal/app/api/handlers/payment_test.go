package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ezstay/payrecon/internal/app/service/ledger"
	"github.com/ezstay/payrecon/internal/app/service/query"
	"github.com/ezstay/payrecon/internal/app/service/reconciler"
	"github.com/ezstay/payrecon/internal/app/service/reference"
	"github.com/ezstay/payrecon/internal/app/service/settlement"
	"github.com/ezstay/payrecon/internal/app/service/statistics"
	"github.com/ezstay/payrecon/internal/app/service/sweep"
	"github.com/ezstay/payrecon/internal/models"
	"github.com/ezstay/payrecon/internal/platform/db/dbtest"
	"github.com/ezstay/payrecon/pkg/config"
	"github.com/ezstay/payrecon/pkg/response"
	"github.com/ezstay/payrecon/pkg/types"
)

const testBill = "148a4d2e-8ed5-4d16-abea-10d3974e288f"

type billDirectory map[uuid.UUID]*settlement.Bill

func (d billDirectory) Lookup(_ context.Context, ref uuid.UUID) (*settlement.Bill, error) {
	if b, ok := d[ref]; ok {
		return b, nil
	}
	return nil, settlement.ErrBillNotFound
}

type okNotifier struct{ calls int }

func (n *okNotifier) Notify(context.Context, uuid.UUID) error {
	n.calls++
	return nil
}

type apiHarness struct {
	r        *gin.Engine
	ledger   *ledger.Service
	notifier *okNotifier
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop().Sugar()
	cfg := webhookCfg()
	cfg.Reference.MemoPrefix = "TT"

	gdb := dbtest.New(t)
	l := ledger.NewService(gdb, log)
	notifier := &okNotifier{}
	settler := settlement.NewService(cfg, notifier, l, log, nil)
	directory := billDirectory{uuid.MustParse(testBill): {
		ID:         uuid.MustParse(testBill),
		PayerID:    "tenant-1",
		PayeeID:    "owner-1",
		OwedAmount: decimal.NewFromInt(500000),
	}}
	rec := reconciler.New(cfg, l, directory, settler, nil, log, nil)
	qs := query.NewService(l)
	stats := statistics.New(gdb, nil)
	sw := sweep.NewSweeper(&config.Config{Sweep: config.SweepConfig{BatchSize: 10}}, l, settler, log)

	r := gin.New()
	pay := r.Group("/api/v1/payment")
	RegisterPaymentWebhookRoutes(pay, rec, cfg, log)
	RegisterPaymentQueryRoutes(pay, qs, stats, cfg)
	RegisterAdminPaymentRoutes(r.Group("/api/v1/admin"), qs, sw)
	return &apiHarness{r: r, ledger: l, notifier: notifier}
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestPaymentAPI_TransferDeliveredTwice(t *testing.T) {
	h := newAPIHarness(t)
	body := map[string]any{
		"gateway":         "SePay",
		"transactionDate": "2024-05-01 10:15:30",
		"accountNumber":   "0123456789",
		"content":         "TT " + testBill,
		"transferType":    "in",
		"transferAmount":  500000,
		"id":              998877,
	}

	_, env := perform(t, h.r, http.MethodPost, "/api/v1/payment/hook/sepay", body)
	require.Equal(t, response.APIResponseCodeOK, env.Code)
	first := decode[WebhookResponse](t, env)
	require.Equal(t, "recorded", first.Status)
	require.Equal(t, "settled", first.Settlement)
	require.Equal(t, testBill, first.BillReference)

	_, env = perform(t, h.r, http.MethodPost, "/api/v1/payment/hook/sepay", body)
	require.Equal(t, response.APIResponseCodeOK, env.Code)
	second := decode[WebhookResponse](t, env)
	require.Equal(t, "duplicate", second.Status)
	require.Equal(t, first.PaymentID, second.PaymentID)
	require.Equal(t, 1, h.notifier.calls)

	_, env = perform(t, h.r, http.MethodGet, "/api/v1/payment/bill/"+testBill+"/payment-status", nil)
	status := decode[query.BillStatus](t, env)
	require.True(t, status.IsPaid)
	require.Equal(t, types.SettlementStateLinkedSettled, status.State)
	require.Equal(t, "998877", status.TransactionID)
	require.True(t, status.PaidAmount.Equal(decimal.NewFromInt(500000)))

	_, env = perform(t, h.r, http.MethodGet, "/api/v1/payment/"+first.PaymentID, nil)
	require.Equal(t, response.APIResponseCodeOK, env.Code)
	view := decode[map[string]any](t, env)
	require.Equal(t, "tenant-1", view["payer_id"])
	require.Equal(t, string(types.SettlementStateLinkedSettled), view["state"])

	for _, path := range []string{
		"/api/v1/payment/history/payer/tenant-1",
		"/api/v1/payment/history/payee/owner-1",
		"/api/v1/payment/bill/" + testBill,
	} {
		_, env = perform(t, h.r, http.MethodGet, path, nil)
		require.Len(t, decode[[]map[string]any](t, env), 1, path)
	}
}

func TestPaymentAPI_BillStatusUnpaid(t *testing.T) {
	h := newAPIHarness(t)
	_, env := perform(t, h.r, http.MethodGet, "/api/v1/payment/bill/"+uuid.NewString()+"/payment-status", nil)
	require.Equal(t, response.APIResponseCodeOK, env.Code)
	require.False(t, decode[query.BillStatus](t, env).IsPaid)
}

func TestPaymentAPI_InvalidAndMissingIDs(t *testing.T) {
	h := newAPIHarness(t)

	_, env := perform(t, h.r, http.MethodGet, "/api/v1/payment/not-a-uuid", nil)
	require.Equal(t, response.APIResponseCodeBadRequest, env.Code)

	_, env = perform(t, h.r, http.MethodGet, "/api/v1/payment/"+uuid.NewString(), nil)
	require.Equal(t, response.APIResponseCodeNotFound, env.Code)

	_, env = perform(t, h.r, http.MethodGet, "/api/v1/payment/bill/xyz/payment-status", nil)
	require.Equal(t, response.APIResponseCodeBadRequest, env.Code)
}

func TestPaymentAPI_BillReference(t *testing.T) {
	h := newAPIHarness(t)
	_, env := perform(t, h.r, http.MethodGet, "/api/v1/payment/bill/"+"148A4D2E-8ED5-4D16-ABEA-10D3974E288F"+"/reference", nil)
	require.Equal(t, response.APIResponseCodeOK, env.Code)

	p := decode[reference.Payload](t, env)
	require.Equal(t, testBill, p.Reference)
	require.Equal(t, "TT "+testBill, p.Memo)
	got, ok := reference.Extract(p.Memo)
	require.True(t, ok)
	require.Equal(t, testBill, got.String())
}

func TestPaymentAPI_PayeeRevenue(t *testing.T) {
	h := newAPIHarness(t)
	ctx := context.Background()
	for i, amount := range []int64{100000, 250000} {
		require.NoError(t, h.ledger.Create(ctx, &models.Payment{
			GatewayTransactionID: "rev-" + string(rune('a'+i)),
			BillReference:        testBill,
			PayeeID:              "owner-1",
			Amount:               decimal.NewFromInt(amount),
			Direction:            types.TransferDirectionIn,
			OccurredAt:           time.Date(2024, 3, 10+i, 8, 0, 0, 0, time.UTC),
		}))
	}

	_, env := perform(t, h.r, http.MethodGet, "/api/v1/payment/stats/payee/owner-1?year=2024", nil)
	require.Equal(t, response.APIResponseCodeOK, env.Code)
	stats := decode[statistics.RevenueStats](t, env)
	require.Equal(t, 2, stats.TotalTransactions)
	require.True(t, stats.TotalRevenue.Equal(decimal.NewFromInt(350000)))
	require.Len(t, stats.MonthlyStats, 1)
	require.Equal(t, 3, stats.MonthlyStats[0].Month)

	_, env = perform(t, h.r, http.MethodGet, "/api/v1/payment/stats/payee/owner-1?year=abc", nil)
	require.Equal(t, response.APIResponseCodeBadRequest, env.Code)
}

func TestAdminAPI_ListAndSweep(t *testing.T) {
	h := newAPIHarness(t)
	ctx := context.Background()
	require.NoError(t, h.ledger.Create(ctx, &models.Payment{
		GatewayTransactionID: "old-1",
		BillReference:        testBill,
		Amount:               decimal.NewFromInt(500000),
		RecordedAt:           time.Now().Add(-time.Hour),
	}))
	require.NoError(t, h.ledger.Create(ctx, &models.Payment{
		GatewayTransactionID: "unlinked-1",
		UnlinkedReason:       types.UnlinkedReasonNoReference,
		Amount:               decimal.NewFromInt(1000),
	}))

	_, env := perform(t, h.r, http.MethodPost, "/api/v1/admin/list_payments", ListPaymentsRequest{
		Filters: []*types.CommonFilter{{Field: "unlinked_reason", Operator: types.CommonFilterOperatorEq, Values: []any{"unlinked"}}},
		Size:    10,
	})
	require.Equal(t, response.APIResponseCodeOK, env.Code)
	page := decode[query.ScanResponse](t, env)
	require.EqualValues(t, 1, page.Total)
	require.Equal(t, "unlinked-1", page.Items[0].GatewayTransactionID)

	_, env = perform(t, h.r, http.MethodPost, "/api/v1/admin/list_payments", ListPaymentsRequest{
		Filters: []*types.CommonFilter{{Field: "raw_memo; drop table payment", Operator: types.CommonFilterOperatorEq, Values: []any{"x"}}},
	})
	require.Equal(t, response.APIResponseCodeBadRequest, env.Code)

	_, env = perform(t, h.r, http.MethodPost, "/api/v1/admin/sweep_settlements", nil)
	require.Equal(t, response.APIResponseCodeOK, env.Code)
	res := decode[sweep.Result](t, env)
	require.Equal(t, sweep.Result{Scanned: 1, Settled: 1}, res)
	require.Equal(t, 1, h.notifier.calls)
}
