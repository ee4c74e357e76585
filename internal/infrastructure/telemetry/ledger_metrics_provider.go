// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormLedgerMetricsProvider implements LedgerMetricsProvider using GORM.
// It queries the transactions and withdrawals tables directly for
// aggregated metrics.
type GormLedgerMetricsProvider struct {
	db *gorm.DB
}

// NewGormLedgerMetricsProvider creates a new GormLedgerMetricsProvider.
func NewGormLedgerMetricsProvider(db *gorm.DB) *GormLedgerMetricsProvider {
	return &GormLedgerMetricsProvider{db: db}
}

// CountPendingDeposits returns the number of deposits awaiting settlement.
func (p *GormLedgerMetricsProvider) CountPendingDeposits(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("transactions").
		Where("status = ?", "pending").
		Count(&count).Error

	return count, err
}

// CountPendingWithdrawals returns the number of withdrawals awaiting review.
func (p *GormLedgerMetricsProvider) CountPendingWithdrawals(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("withdrawals").
		Where("status = ?", "pending").
		Count(&count).Error

	return count, err
}

// SumPendingWithdrawalAmount returns the total amount held by pending withdrawals.
func (p *GormLedgerMetricsProvider) SumPendingWithdrawalAmount(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := p.db.WithContext(ctx).
		Table("withdrawals").
		Select("SUM(total_withheld)").
		Where("status = ?", "pending").
		Scan(&sum).Error

	if err != nil || !sum.Valid {
		return decimal.Zero, err
	}
	return sum.Decimal, nil
}
