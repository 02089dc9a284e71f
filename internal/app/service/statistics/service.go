package statistics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/ezstay/payrecon/internal/models"
	"github.com/ezstay/payrecon/pkg/config"
	"github.com/ezstay/payrecon/pkg/types"
)

type MonthlyRevenue struct {
	Month            int             `json:"month"`
	Year             int             `json:"year"`
	Revenue          decimal.Decimal `json:"revenue"`
	TransactionCount int             `json:"transaction_count"`
}

type RevenueStats struct {
	PayeeID           string            `json:"payee_id"`
	Year              int               `json:"year"`
	TotalRevenue      decimal.Decimal   `json:"total_revenue"`
	TotalTransactions int               `json:"total_transactions"`
	MonthlyStats      []*MonthlyRevenue `json:"monthly_stats"`
}

type Service struct {
	db  *gorm.DB
	loc *time.Location
}

func New(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{db: db, loc: cfg.Location()}
}

// GetPayeeRevenue sums the linked inbound payments of payeeID received in
// year, in the gateway's timezone. Months without payments are omitted.
// Sums are computed in Go so numeric precision does not depend on the driver.
func (s *Service) GetPayeeRevenue(ctx context.Context, payeeID string, year int) (*RevenueStats, error) {
	if year <= 0 {
		year = time.Now().In(s.loc).Year()
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, s.loc)
	to := from.AddDate(1, 0, 0)

	var rows []*models.Payment
	err := s.db.WithContext(ctx).
		Select("amount", "occurred_at").
		Where("payee_id = ? AND bill_reference <> '' AND direction = ?", payeeID, types.TransferDirectionIn).
		Where("occurred_at >= ? AND occurred_at < ?", from, to).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load payee payments: %w", err)
	}

	stats := &RevenueStats{PayeeID: payeeID, Year: year, TotalRevenue: decimal.Zero, MonthlyStats: []*MonthlyRevenue{}}
	byMonth := lo.GroupBy(rows, func(p *models.Payment) time.Month { return p.OccurredAt.In(s.loc).Month() })
	for month, payments := range byMonth {
		revenue := lo.Reduce(payments, func(sum decimal.Decimal, p *models.Payment, _ int) decimal.Decimal {
			return sum.Add(p.Amount)
		}, decimal.Zero)
		stats.MonthlyStats = append(stats.MonthlyStats, &MonthlyRevenue{
			Month:            int(month),
			Year:             year,
			Revenue:          revenue,
			TransactionCount: len(payments),
		})
		stats.TotalRevenue = stats.TotalRevenue.Add(revenue)
		stats.TotalTransactions += len(payments)
	}
	sort.Slice(stats.MonthlyStats, func(i, j int) bool { return stats.MonthlyStats[i].Month < stats.MonthlyStats[j].Month })
	return stats, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
