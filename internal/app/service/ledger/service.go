package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ezstay/payrecon/internal/models"
	"github.com/ezstay/payrecon/pkg/tool"
	"github.com/ezstay/payrecon/pkg/types"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

func NewLedger(s *Service) Ledger { return s }

func (s *Service) Create(ctx context.Context, p *models.Payment) error {
	if p == nil {
		return fmt.Errorf("nil payment")
	}
	if p.GatewayTransactionID == "" {
		return fmt.Errorf("payment has no gateway transaction id")
	}
	if p.ID == "" {
		p.ID = tool.GenerateUUIDV7()
	}
	if p.RecordedAt.IsZero() {
		p.RecordedAt = time.Now()
	}
	if p.OccurredAt.IsZero() {
		p.OccurredAt = p.RecordedAt
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateTransaction, p.GatewayTransactionID)
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// isDuplicateKey recognises unique violations from drivers that do not
// translate them into gorm.ErrDuplicatedKey.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func (s *Service) first(ctx context.Context, query string, args ...any) (*models.Payment, error) {
	var p models.Payment
	if err := s.db.WithContext(ctx).Where(query, args...).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *Service) GetByGatewayTransactionID(ctx context.Context, gatewayTransactionID string) (*models.Payment, error) {
	return s.first(ctx, "gateway_transaction_id = ?", gatewayTransactionID)
}

func (s *Service) list(ctx context.Context, column, value string) ([]*models.Payment, error) {
	var rows []*models.Payment
	err := s.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).
		Order("occurred_at desc").Order("recorded_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments by %s: %w", column, err)
	}
	return rows, nil
}

func (s *Service) ListByPayer(ctx context.Context, payerID string) ([]*models.Payment, error) {
	return s.list(ctx, "payer_id", payerID)
}

func (s *Service) ListByPayee(ctx context.Context, payeeID string) ([]*models.Payment, error) {
	return s.list(ctx, "payee_id", payeeID)
}

func (s *Service) ListByBill(ctx context.Context, billReference string) ([]*models.Payment, error) {
	return s.list(ctx, "bill_reference", billReference)
}

func (s *Service) LatestForBill(ctx context.Context, billReference string) (*models.Payment, error) {
	var p models.Payment
	err := s.db.WithContext(ctx).
		Where("bill_reference = ?", billReference).
		Order("occurred_at desc").Order("recorded_at desc").
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get latest payment: %w", err)
	}
	return &p, nil
}

// Scan implements paginated/admin listing with filters
func (s *Service) Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.Size > 500 {
		req.Size = 500
	}
	if req.From < 0 {
		req.From = 0
	}
	for _, f := range req.Filters {
		if err := f.Validate(ScanFields); err != nil {
			return nil, err
		}
	}
	if req.SortBy != "" && !ScanFields[req.SortBy] {
		return nil, fmt.Errorf("sort on field %q is not allowed", req.SortBy)
	}

	tx := s.db.WithContext(ctx).Model(&models.Payment{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{types.FiltersAnd(req.Filters)}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}

	sortBy := lo.Ternary(req.SortBy == "", "recorded_at", req.SortBy)
	q := tx.Limit(req.Size).Offset(req.From).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: sortBy}, Desc: req.SortOrder != "asc"}}})

	var rows []*models.Payment
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return &ScanResponse{Items: rows, Total: total}, nil
}

func (s *Service) RecordSettlementAttempt(ctx context.Context, a *models.SettlementAttempt) error {
	if a == nil {
		return fmt.Errorf("nil settlement attempt")
	}
	if a.ID == "" {
		a.ID = tool.GenerateUUIDV7()
	}
	if a.AttemptedAt.IsZero() {
		a.AttemptedAt = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to record settlement attempt: %w", err)
	}
	return nil
}

// SettledPaymentIDs reports which of paymentIDs have a succeeded attempt.
func (s *Service) SettledPaymentIDs(ctx context.Context, paymentIDs []string) (map[string]bool, error) {
	settled := make(map[string]bool, len(paymentIDs))
	if len(paymentIDs) == 0 {
		return settled, nil
	}
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.SettlementAttempt{}).
		Where("payment_id IN ? AND succeeded = ?", lo.Uniq(paymentIDs), true).
		Distinct().Pluck("payment_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load settlement attempts: %w", err)
	}
	for _, id := range ids {
		settled[id] = true
	}
	return settled, nil
}

// ListUnsettled returns linked payments recorded before recordedBefore that
// have no succeeded settlement attempt, oldest first.
func (s *Service) ListUnsettled(ctx context.Context, recordedBefore time.Time, limit int) ([]*models.Payment, error) {
	if limit <= 0 {
		limit = 50
	}
	succeeded := s.db.Model(&models.SettlementAttempt{}).
		Select("1").
		Where("settlement_attempt.payment_id = payment.id AND settlement_attempt.succeeded = ?", true)

	var rows []*models.Payment
	err := s.db.WithContext(ctx).
		Where("bill_reference <> ''").
		Where("recorded_at < ?", recordedBefore).
		Where("NOT EXISTS (?)", succeeded).
		Order("recorded_at asc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unsettled payments: %w", err)
	}
	return rows, nil
}
