package handlers

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRegisterPaymentRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/v1/payment")
	RegisterPaymentWebhookRoutes(g, nil, nil, nil)
	RegisterPaymentQueryRoutes(g, nil, nil, nil)
	RegisterAdminPaymentRoutes(r.Group("/api/v1/admin"), nil, nil)
	RegisterHealthRoutes(r)

	routes := r.Routes()
	contains := func(target string) bool {
		for _, rt := range routes {
			if rt.Method+" "+rt.Path == target {
				return true
			}
		}
		return false
	}

	for _, route := range []string{
		"POST /api/v1/payment/hook/sepay",
		"GET /api/v1/payment/:payment_id",
		"GET /api/v1/payment/history/payer/:payer_id",
		"GET /api/v1/payment/history/payee/:payee_id",
		"GET /api/v1/payment/bill/:bill_id",
		"GET /api/v1/payment/bill/:bill_id/payment-status",
		"GET /api/v1/payment/bill/:bill_id/reference",
		"GET /api/v1/payment/stats/payee/:payee_id",
		"POST /api/v1/admin/list_payments",
		"POST /api/v1/admin/sweep_settlements",
		"GET /healthz",
	} {
		require.True(t, contains(route), route)
	}
}
