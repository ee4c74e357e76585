// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides payment metrics for the platform.
// It tracks deposit activity, settlement outcomes, commissions,
// withdrawals, transfers, and webhook processing results.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	depositCreatedTotal   *Counter
	depositSettledTotal   *Counter
	depositAmountTotal    *Counter
	commissionAmountTotal *Counter
	withdrawalTotal       *Counter
	transferTotal         *Counter
	webhookTotal          *Counter
	pollerCheckTotal      *Counter

	// Gauge metrics (point-in-time values)
	pendingDeposits         *Gauge
	pendingWithdrawals      *Gauge
	pendingWithdrawalAmount *FloatGauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	ledgerProvider LedgerMetricsProvider
}

// LedgerMetricsProvider provides ledger data for periodic metrics collection.
// This interface allows the telemetry layer to query ledger state without
// depending on the ledger domain directly.
type LedgerMetricsProvider interface {
	// CountPendingDeposits returns the number of deposits awaiting settlement
	CountPendingDeposits(ctx context.Context) (int64, error)

	// CountPendingWithdrawals returns the number of withdrawals awaiting review
	CountPendingWithdrawals(ctx context.Context) (int64, error)

	// SumPendingWithdrawalAmount returns the total amount held by pending withdrawals
	SumPendingWithdrawalAmount(ctx context.Context) (decimal.Decimal, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	LedgerProvider  LedgerMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:          cfg.Meter,
		logger:         logger,
		stopChan:       make(chan struct{}),
		ledgerProvider: cfg.LedgerProvider,
	}

	var err error

	bm.depositCreatedTotal, err = NewCounter(
		cfg.Meter,
		"fastpay_deposit_created_total",
		"Total number of deposit charges created",
		"{deposits}",
	)
	if err != nil {
		return nil, err
	}

	bm.depositSettledTotal, err = NewCounter(
		cfg.Meter,
		"fastpay_deposit_settled_total",
		"Total number of deposits that reached a terminal status",
		"{deposits}",
	)
	if err != nil {
		return nil, err
	}

	bm.depositAmountTotal, err = NewCounter(
		cfg.Meter,
		"fastpay_deposit_amount_total",
		"Total gross settled deposit amount in centavos",
		"{centavos}",
	)
	if err != nil {
		return nil, err
	}

	bm.commissionAmountTotal, err = NewCounter(
		cfg.Meter,
		"fastpay_commission_amount_total",
		"Total referral commission amount in centavos",
		"{centavos}",
	)
	if err != nil {
		return nil, err
	}

	bm.withdrawalTotal, err = NewCounter(
		cfg.Meter,
		"fastpay_withdrawal_total",
		"Total number of withdrawal status transitions",
		"{withdrawals}",
	)
	if err != nil {
		return nil, err
	}

	bm.transferTotal, err = NewCounter(
		cfg.Meter,
		"fastpay_transfer_total",
		"Total number of internal transfers",
		"{transfers}",
	)
	if err != nil {
		return nil, err
	}

	bm.webhookTotal, err = NewCounter(
		cfg.Meter,
		"fastpay_webhook_total",
		"Total number of processor webhook deliveries by result",
		"{webhooks}",
	)
	if err != nil {
		return nil, err
	}

	bm.pollerCheckTotal, err = NewCounter(
		cfg.Meter,
		"fastpay_poller_check_total",
		"Total number of payment status poller checks by result",
		"{checks}",
	)
	if err != nil {
		return nil, err
	}

	bm.pendingDeposits, err = NewGauge(
		cfg.Meter,
		"fastpay_pending_deposits",
		"Number of deposits currently awaiting settlement",
		"{deposits}",
	)
	if err != nil {
		return nil, err
	}

	bm.pendingWithdrawals, err = NewGauge(
		cfg.Meter,
		"fastpay_pending_withdrawals",
		"Number of withdrawals currently awaiting review",
		"{withdrawals}",
	)
	if err != nil {
		return nil, err
	}

	bm.pendingWithdrawalAmount, err = NewFloatGauge(
		cfg.Meter,
		"fastpay_pending_withdrawal_amount",
		"Total amount held by pending withdrawals in BRL",
		"{BRL}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Deposit Metrics
// =============================================================================

// RecordDepositCreated records a deposit charge creation event.
func (bm *BusinessMetrics) RecordDepositCreated(ctx context.Context) {
	bm.depositCreatedTotal.Inc(ctx)
}

// RecordDepositSettled records a deposit reaching a terminal status
// (paid, expired or failed). Amount is only counted for paid deposits.
func (bm *BusinessMetrics) RecordDepositSettled(ctx context.Context, status string, grossAmount decimal.Decimal) {
	bm.depositSettledTotal.Inc(ctx, AttrTransactionStatus.String(status))

	if status == "paid" {
		centavos := grossAmount.Mul(decimal.NewFromInt(100)).IntPart()
		bm.depositAmountTotal.Add(ctx, centavos)
	}
}

// RecordCommission records a referral commission credit.
func (bm *BusinessMetrics) RecordCommission(ctx context.Context, amount decimal.Decimal) {
	centavos := amount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.commissionAmountTotal.Add(ctx, centavos)
}

// =============================================================================
// Withdrawal and Transfer Metrics
// =============================================================================

// RecordWithdrawal records a withdrawal status transition
// (pending, approved, rejected, paid).
func (bm *BusinessMetrics) RecordWithdrawal(ctx context.Context, status string) {
	bm.withdrawalTotal.Inc(ctx, AttrWithdrawalStatus.String(status))
}

// RecordTransfer records a completed internal transfer.
func (bm *BusinessMetrics) RecordTransfer(ctx context.Context) {
	bm.transferTotal.Inc(ctx)
}

// =============================================================================
// Webhook and Poller Metrics
// =============================================================================

// WebhookResult represents the outcome of a webhook delivery for metrics labeling.
type WebhookResult string

const (
	WebhookResultAccepted         WebhookResult = "accepted"
	WebhookResultInvalidSignature WebhookResult = "invalid_signature"
	WebhookResultDuplicate        WebhookResult = "duplicate"
	WebhookResultError            WebhookResult = "error"
)

// RecordWebhook records a processor webhook delivery outcome.
func (bm *BusinessMetrics) RecordWebhook(ctx context.Context, result WebhookResult) {
	bm.webhookTotal.Inc(ctx, AttrWebhookResult.String(string(result)))
}

// RecordPollerCheck records a payment status poller check outcome.
func (bm *BusinessMetrics) RecordPollerCheck(ctx context.Context, result string) {
	bm.pollerCheckTotal.Inc(ctx, AttrPollerResult.String(result))
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects pending ledger counts every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectLedgerMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectLedgerMetrics(ctx)
		}
	}
}

// collectLedgerMetrics collects pending deposit and withdrawal gauges.
func (bm *BusinessMetrics) collectLedgerMetrics(ctx context.Context) {
	if bm.ledgerProvider == nil {
		bm.logger.Debug("No ledger provider configured, skipping ledger metrics collection")
		return
	}

	if count, err := bm.ledgerProvider.CountPendingDeposits(ctx); err != nil {
		bm.logger.Warn("Failed to count pending deposits", zap.Error(err))
	} else {
		bm.pendingDeposits.Record(ctx, count)
	}

	if count, err := bm.ledgerProvider.CountPendingWithdrawals(ctx); err != nil {
		bm.logger.Warn("Failed to count pending withdrawals", zap.Error(err))
	} else {
		bm.pendingWithdrawals.Record(ctx, count)
	}

	if sum, err := bm.ledgerProvider.SumPendingWithdrawalAmount(ctx); err != nil {
		bm.logger.Warn("Failed to sum pending withdrawal amount", zap.Error(err))
	} else {
		amount, _ := sum.Float64()
		bm.pendingWithdrawalAmount.Record(ctx, amount)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
