package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ezstay/payrecon/internal/app/service/ledger"
	"github.com/ezstay/payrecon/internal/app/service/query"
	"github.com/ezstay/payrecon/internal/app/service/sweep"
	"github.com/ezstay/payrecon/pkg/response"
	"github.com/ezstay/payrecon/pkg/types"
)

type ListPaymentsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

// SweepRunner runs one settlement sweep batch.
type SweepRunner interface {
	RunOnce(ctx context.Context) (*sweep.Result, error)
}

// @Summary      List Payments (Admin)
// @Description  Retrieves a paginated and filterable list of recorded payments.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body ListPaymentsRequest true "List payments request with filters, pagination, and sorting"
// @Success      200  {object}  handlers.RespListPayments
// @Router       /api/v1/admin/list_payments [post]
func ApiListPayments(svc *query.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ListPaymentsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.ScanPayments(c.Request.Context(), &ledger.ScanRequest{
			Filters:   req.Filters,
			From:      req.From,
			Size:      req.Size,
			SortBy:    req.SortBy,
			SortOrder: req.SortOrder,
		})
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Sweep Settlements (Admin)
// @Description  Retries the billing notification for one batch of linked payments that are not settled yet.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  handlers.RespSweep
// @Router       /api/v1/admin/sweep_settlements [post]
func ApiSweepSettlements(s SweepRunner) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := s.RunOnce(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminPaymentRoutes(r gin.IRouter, svc *query.Service, s SweepRunner) {
	r.POST("/list_payments", ApiListPayments(svc))
	r.POST("/sweep_settlements", ApiSweepSettlements(s))
}
