package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"

	"github.com/ezstay/payrecon/internal/app/service/ledger"
	"github.com/ezstay/payrecon/internal/models"
	"github.com/ezstay/payrecon/pkg/types"
)

// PaymentView is a payment with its derived settlement state.
type PaymentView struct {
	*models.Payment
	State types.SettlementState `json:"state"`
}

// BillStatus answers "is this bill paid" from the ledger alone. A bill is
// paid as soon as one payment references it, whether or not the billing
// service has been told yet.
type BillStatus struct {
	BillID        string                `json:"bill_id"`
	IsPaid        bool                  `json:"is_paid"`
	State         types.SettlementState `json:"state,omitempty"`
	PaymentID     string                `json:"payment_id,omitempty"`
	TransactionID string                `json:"transaction_id,omitempty"`
	PaidAmount    *decimal.Decimal      `json:"paid_amount,omitempty"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
}

type ScanResponse struct {
	Items []*PaymentView `json:"items"`
	Total int64          `json:"total"`
}

type Service struct {
	ledger ledger.Ledger
}

func NewService(l ledger.Ledger) *Service {
	return &Service{ledger: l}
}

func (s *Service) views(ctx context.Context, rows []*models.Payment) ([]*PaymentView, error) {
	linkedIDs := lo.FilterMap(rows, func(p *models.Payment, _ int) (string, bool) {
		return p.ID, p.IsLinked()
	})
	settled, err := s.ledger.SettledPaymentIDs(ctx, linkedIDs)
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(p *models.Payment, _ int) *PaymentView {
		return &PaymentView{Payment: p, State: p.State(settled[p.ID])}
	}), nil
}

func (s *Service) view(ctx context.Context, p *models.Payment) (*PaymentView, error) {
	views, err := s.views(ctx, []*models.Payment{p})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *Service) GetPayment(ctx context.Context, id string) (*PaymentView, error) {
	p, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, p)
}

func (s *Service) ListByPayer(ctx context.Context, payerID string) ([]*PaymentView, error) {
	rows, err := s.ledger.ListByPayer(ctx, payerID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, rows)
}

func (s *Service) ListByPayee(ctx context.Context, payeeID string) ([]*PaymentView, error) {
	rows, err := s.ledger.ListByPayee(ctx, payeeID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, rows)
}

func (s *Service) ListByBill(ctx context.Context, billReference string) ([]*PaymentView, error) {
	rows, err := s.ledger.ListByBill(ctx, billReference)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, rows)
}

// LatestForBill returns ledger.ErrPaymentNotFound when the bill has no payment.
func (s *Service) LatestForBill(ctx context.Context, billReference string) (*PaymentView, error) {
	p, err := s.ledger.LatestForBill(ctx, billReference)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, p)
}

func (s *Service) IsBillPaid(ctx context.Context, billReference string) (bool, error) {
	if billReference == "" {
		return false, nil
	}
	_, err := s.ledger.LatestForBill(ctx, billReference)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ledger.ErrPaymentNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *Service) BillStatus(ctx context.Context, billReference string) (*BillStatus, error) {
	status := &BillStatus{BillID: billReference}
	if billReference == "" {
		return status, nil
	}
	latest, err := s.LatestForBill(ctx, billReference)
	if errors.Is(err, ledger.ErrPaymentNotFound) {
		return status, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load bill status: %w", err)
	}
	status.IsPaid = true
	status.State = latest.State
	status.PaymentID = latest.ID
	status.TransactionID = latest.GatewayTransactionID
	status.PaidAmount = lo.ToPtr(latest.Amount)
	status.PaidAt = lo.ToPtr(latest.OccurredAt)
	return status, nil
}

func (s *Service) ScanPayments(ctx context.Context, req *ledger.ScanRequest) (*ScanResponse, error) {
	res, err := s.ledger.Scan(ctx, req)
	if err != nil {
		return nil, err
	}
	items, err := s.views(ctx, res.Items)
	if err != nil {
		return nil, err
	}
	return &ScanResponse{Items: items, Total: res.Total}, nil
}

var Module = fx.Options(
	fx.Provide(NewService),
)
