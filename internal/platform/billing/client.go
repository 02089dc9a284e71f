// Package billing talks to the billing service that owns bills: it resolves
// bill references and marks bills as paid.
package billing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/ezstay/payrecon/internal/app/service/settlement"
	"github.com/ezstay/payrecon/pkg/config"
	"github.com/ezstay/payrecon/pkg/logctx"
)

var ErrUnexpectedStatus = errors.New("unexpected status from billing service")

// Client implements settlement.BillDirectory and settlement.Notifier over
// the billing service's HTTP API.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *fasthttp.Client
	log     *zap.SugaredLogger
}

func NewClient(cfg *config.Config, log *zap.SugaredLogger) *Client {
	timeout := cfg.Billing.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	base := cfg.Billing.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &Client{
		baseURL: base,
		timeout: timeout,
		http: &fasthttp.Client{
			Name:                "payrecon",
			MaxConnsPerHost:     64,
			MaxIdleConnDuration: 30 * time.Second,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxConnWaitTimeout:  timeout,
		},
		log: log,
	}
}

// billDTO is the billing service's bill representation. Field names are
// matched case-insensitively.
type billDTO struct {
	ID          uuid.UUID       `json:"id"`
	OwnerID     string          `json:"ownerId"`
	TenantID    string          `json:"tenantId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// envelope covers deployments that wrap responses as {"data": {...}}.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if traceID := logctx.TraceID(ctx); traceID != "" {
		req.Header.Set("X-Request-ID", traceID)
	}
	req.SetRequestURI(c.baseURL + path)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else {
		err = c.http.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) && ctx.Err() != nil {
			return 0, nil, fmt.Errorf("%s %s: %w", method, path, ctx.Err())
		}
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	body := append([]byte(nil), resp.Body()...)
	return resp.StatusCode(), body, nil
}

func (c *Client) Lookup(ctx context.Context, ref uuid.UUID) (*settlement.Bill, error) {
	code, body, err := c.do(ctx, http.MethodGet, "api/UtilityBills/"+ref.String())
	if err != nil {
		return nil, err
	}
	switch {
	case code == fasthttp.StatusNotFound:
		return nil, settlement.ErrBillNotFound
	case code < 200 || code >= 300:
		return nil, fmt.Errorf("%w: lookup %s: %d", ErrUnexpectedStatus, ref, code)
	}

	dto, err := decodeBill(body)
	if err != nil {
		return nil, fmt.Errorf("decode bill %s: %w", ref, err)
	}
	if dto == nil || dto.ID == uuid.Nil {
		return nil, settlement.ErrBillNotFound
	}
	logctx.FromCtx(ctx, c.log).Debugw("billing_bill_resolved", "bill_id", dto.ID, "payer_id", dto.TenantID, "payee_id", dto.OwnerID)
	return &settlement.Bill{
		ID:         dto.ID,
		PayerID:    dto.TenantID,
		PayeeID:    dto.OwnerID,
		OwedAmount: dto.TotalAmount,
	}, nil
}

func decodeBill(body []byte) (*billDTO, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && len(env.Data) > 0 && env.Data[0] == '{' {
		body = env.Data
	}
	var dto billDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, err
	}
	return &dto, nil
}

func (c *Client) Notify(ctx context.Context, billID uuid.UUID) error {
	code, body, err := c.do(ctx, http.MethodPut, "api/UtilityBills/"+billID.String()+"/mark-paid-internal")
	if err != nil {
		return fmt.Errorf("%w: %w", settlement.ErrNotifyFailed, err)
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("%w: status %d: %s", settlement.ErrNotifyFailed, code, truncate(body, 256))
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
