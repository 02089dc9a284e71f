package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ezstay/payrecon/internal/app/service/ledger"
	"github.com/ezstay/payrecon/internal/app/service/query"
	"github.com/ezstay/payrecon/internal/app/service/reference"
	"github.com/ezstay/payrecon/internal/app/service/statistics"
	"github.com/ezstay/payrecon/pkg/config"
	"github.com/ezstay/payrecon/pkg/response"
)

// uuidParam reads a uuid path parameter and normalises it to the
// lowercase dashed form stored on payments. It answers 40000 itself on failure.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// @Summary      Get Payment
// @Description  Returns one payment with its settlement state.
// @Tags         Payment
// @Produce      json
// @Param        payment_id path string true "Payment ID"
// @Success      200  {object}  handlers.RespPayment
// @Router       /api/v1/payment/{payment_id} [get]
func ApiGetPayment(svc *query.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "payment_id")
		if !ok {
			return
		}
		p, err := svc.GetPayment(c.Request.Context(), id.String())
		if errors.Is(err, ledger.ErrPaymentNotFound) {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
			return
		}
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(p))
	}
}

// @Summary      Payer Payment History
// @Description  Lists the payments made by a payer, newest first.
// @Tags         Payment
// @Produce      json
// @Param        payer_id path string true "Payer ID"
// @Success      200  {object}  handlers.RespPaymentList
// @Router       /api/v1/payment/history/payer/{payer_id} [get]
func ApiPayerHistory(svc *query.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.ListByPayer(c.Request.Context(), c.Param("payer_id"))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(items))
	}
}

// @Summary      Payee Payment History
// @Description  Lists the payments received by a payee, newest first.
// @Tags         Payment
// @Produce      json
// @Param        payee_id path string true "Payee ID"
// @Success      200  {object}  handlers.RespPaymentList
// @Router       /api/v1/payment/history/payee/{payee_id} [get]
func ApiPayeeHistory(svc *query.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.ListByPayee(c.Request.Context(), c.Param("payee_id"))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(items))
	}
}

// @Summary      Bill Payments
// @Description  Lists every payment that references a bill, newest first.
// @Tags         Payment
// @Produce      json
// @Param        bill_id path string true "Bill ID"
// @Success      200  {object}  handlers.RespPaymentList
// @Router       /api/v1/payment/bill/{bill_id} [get]
func ApiBillPayments(svc *query.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "bill_id")
		if !ok {
			return
		}
		items, err := svc.ListByBill(c.Request.Context(), id.String())
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(items))
	}
}

// @Summary      Bill Payment Status
// @Description  Polling endpoint: a bill is paid as soon as a payment referencing it is recorded.
// @Tags         Payment
// @Produce      json
// @Param        bill_id path string true "Bill ID"
// @Success      200  {object}  handlers.RespBillStatus
// @Router       /api/v1/payment/bill/{bill_id}/payment-status [get]
func ApiBillPaymentStatus(svc *query.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "bill_id")
		if !ok {
			return
		}
		status, err := svc.BillStatus(c.Request.Context(), id.String())
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(status))
	}
}

// @Summary      Bill Transfer Reference
// @Description  Returns the memo a payer must put on the bank transfer for this bill.
// @Tags         Payment
// @Produce      json
// @Param        bill_id path string true "Bill ID"
// @Success      200  {object}  handlers.RespReferencePayload
// @Router       /api/v1/payment/bill/{bill_id}/reference [get]
func ApiBillReference(cfg *config.Config) gin.HandlerFunc {
	prefix := reference.DefaultMemoPrefix
	if cfg != nil {
		prefix = cfg.Reference.MemoPrefix
	}
	return func(c *gin.Context) {
		id, ok := uuidParam(c, "bill_id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, response.OKT(reference.NewPayload(prefix, id)))
	}
}

// @Summary      Payee Revenue
// @Description  Monthly revenue of a payee from linked inbound payments.
// @Tags         Payment
// @Produce      json
// @Param        payee_id path string true "Payee ID"
// @Param        year query int false "Calendar year, defaults to the current year"
// @Success      200  {object}  handlers.RespRevenueStats
// @Router       /api/v1/payment/stats/payee/{payee_id} [get]
func ApiPayeeRevenue(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		year := 0
		if v := c.Query("year"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid year"))
				return
			}
			year = n
		}
		res, err := svc.GetPayeeRevenue(c.Request.Context(), c.Param("payee_id"), year)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterPaymentQueryRoutes(r gin.IRouter, svc *query.Service, stats *statistics.Service, cfg *config.Config) {
	r.GET("/:payment_id", ApiGetPayment(svc))
	r.GET("/history/payer/:payer_id", ApiPayerHistory(svc))
	r.GET("/history/payee/:payee_id", ApiPayeeHistory(svc))
	r.GET("/bill/:bill_id", ApiBillPayments(svc))
	r.GET("/bill/:bill_id/payment-status", ApiBillPaymentStatus(svc))
	r.GET("/bill/:bill_id/reference", ApiBillReference(cfg))
	r.GET("/stats/payee/:payee_id", ApiPayeeRevenue(stats))
}
