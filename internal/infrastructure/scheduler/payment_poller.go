package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ReconcileStats summarizes one reconciliation pass over pending charges
type ReconcileStats struct {
	Checked int
	Settled int
	Expired int
	Failed  int
}

// ChargeReconciler polls the processor for the current state of
// pending charges and settles the ones that were paid
type ChargeReconciler interface {
	ReconcilePending(ctx context.Context, batchSize int) (ReconcileStats, error)
}

// PaymentPollerConfig holds configuration for the payment status poller
type PaymentPollerConfig struct {
	// Enabled determines if the poller is active
	Enabled bool

	// Interval is how often pending charges are polled
	Interval time.Duration

	// BatchSize is how many pending charges one pass covers
	BatchSize int

	// PassTimeout is the maximum time for one reconciliation pass
	PassTimeout time.Duration
}

// DefaultPaymentPollerConfig returns default configuration
func DefaultPaymentPollerConfig() PaymentPollerConfig {
	return PaymentPollerConfig{
		Enabled:     true,
		Interval:    5 * time.Second,
		BatchSize:   100,
		PassTimeout: 30 * time.Second,
	}
}

// PaymentPoller periodically reconciles pending charges with the
// processor. Webhooks are the primary settlement path; the poller
// covers deliveries that never arrived.
type PaymentPoller struct {
	reconciler ChargeReconciler
	logger     *zap.Logger
	config     PaymentPollerConfig
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.Mutex
	isRunning  bool
}

// NewPaymentPoller creates a new payment status poller
func NewPaymentPoller(reconciler ChargeReconciler, logger *zap.Logger, config PaymentPollerConfig) *PaymentPoller {
	if config.Interval <= 0 {
		config.Interval = 5 * time.Second
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.PassTimeout <= 0 {
		config.PassTimeout = 30 * time.Second
	}
	return &PaymentPoller{
		reconciler: reconciler,
		logger:     logger,
		config:     config,
	}
}

// Start starts the poller loop
func (p *PaymentPoller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.isRunning {
		p.mu.Unlock()
		return nil
	}
	if !p.config.Enabled {
		p.mu.Unlock()
		p.logger.Info("Payment poller is disabled")
		return nil
	}
	p.isRunning = true
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.runLoop(ctx)

	p.logger.Info("Payment poller started",
		zap.Duration("interval", p.config.Interval),
		zap.Int("batch_size", p.config.BatchSize),
	)
	return nil
}

// Stop stops the poller and waits for the current pass to finish
func (p *PaymentPoller) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = false
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("Payment poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *PaymentPoller) runLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runPass(ctx)
		}
	}
}

func (p *PaymentPoller) runPass(ctx context.Context) {
	passCtx, cancel := context.WithTimeout(ctx, p.config.PassTimeout)
	defer cancel()

	stats, err := p.reconciler.ReconcilePending(passCtx, p.config.BatchSize)
	if err != nil {
		p.logger.Error("Reconciliation pass failed", zap.Error(err))
		return
	}

	if stats.Checked > 0 {
		p.logger.Info("Reconciliation pass completed",
			zap.Int("checked", stats.Checked),
			zap.Int("settled", stats.Settled),
			zap.Int("expired", stats.Expired),
			zap.Int("failed", stats.Failed),
		)
	}
}
