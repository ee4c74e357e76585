package ledger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Lion1208/fastpay/internal/domain/account"
	"github.com/Lion1208/fastpay/internal/domain/ledger"
	"github.com/Lion1208/fastpay/internal/domain/pix"
	"github.com/Lion1208/fastpay/internal/domain/platform"
	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/Lion1208/fastpay/internal/infrastructure/scheduler"
	"go.uber.org/zap"
)

// webhookDedupeTTL is how long a processed delivery ID blocks
// re-processing. The storage CAS stays the source of truth; the cache
// only absorbs retry storms.
const webhookDedupeTTL = 24 * time.Hour

// SettlementService confirms paid deposits. Both delivery paths, the
// webhook and the status poller, converge on Settle, which is safe to
// call any number of times for the same transaction.
type SettlementService struct {
	txRepo       ledger.TransactionRepository
	accountRepo  account.Repository
	settingsRepo platform.SettingsRepository
	processor    pix.Processor
	verifier     pix.WebhookVerifier
	dedupe       shared.IdempotencyStore
	logger       *zap.Logger
}

// NewSettlementService creates a new settlement service
func NewSettlementService(
	txRepo ledger.TransactionRepository,
	accountRepo account.Repository,
	settingsRepo platform.SettingsRepository,
	processor pix.Processor,
	verifier pix.WebhookVerifier,
	dedupe shared.IdempotencyStore,
	logger *zap.Logger,
) *SettlementService {
	return &SettlementService{
		txRepo:       txRepo,
		accountRepo:  accountRepo,
		settingsRepo: settingsRepo,
		processor:    processor,
		verifier:     verifier,
		dedupe:       dedupe,
		logger:       logger,
	}
}

// ProcessWebhook verifies and applies one webhook delivery. The
// signature covers the raw body, so it is checked before the payload
// is parsed. Unknown events are acknowledged and ignored.
func (s *SettlementService) ProcessWebhook(ctx context.Context, body []byte, signature string) error {
	if err := s.verifier.Verify(body, signature); err != nil {
		s.logger.Warn("Webhook signature rejected")
		return err
	}

	var event pix.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return pix.ErrInvalidWebhookPayload
	}
	if event.Data.CustomID == "" {
		return pix.ErrInvalidWebhookPayload
	}

	if event.Event != pix.EventTransactionPaid {
		s.logger.Info("Ignoring webhook event",
			zap.String("event", event.Event),
			zap.String("custom_id", event.Data.CustomID))
		return nil
	}

	if s.dedupe != nil {
		fresh, err := s.dedupe.MarkProcessed(ctx, event.Event+":"+event.Data.CustomID, webhookDedupeTTL)
		if err != nil {
			s.logger.Warn("Webhook dedupe check failed, relying on storage guard", zap.Error(err))
		} else if !fresh {
			s.logger.Info("Duplicate webhook delivery skipped",
				zap.String("custom_id", event.Data.CustomID))
			return nil
		}
	}

	return s.Settle(ctx, event.Data.CustomID, time.Now())
}

// Settle confirms the deposit identified by customID as paid. A
// transaction that is no longer pending makes this a no-op, so repeat
// deliveries never double-credit.
func (s *SettlementService) Settle(ctx context.Context, customID string, paidAt time.Time) error {
	tx, err := s.txRepo.FindByCustomID(ctx, customID)
	if err != nil {
		return err
	}
	if !tx.IsPending() {
		return nil
	}

	acc, err := s.accountRepo.FindByID(ctx, tx.AccountID)
	if err != nil {
		return err
	}

	settings, err := s.settingsRepo.Load(ctx)
	if err != nil {
		return err
	}

	settlement := ledger.Settlement{
		TransactionID: tx.ID,
		AccountID:     acc.ID,
		GrossAmount:   tx.GrossAmount,
		NetAmount:     tx.NetAmount,
		PaidAt:        paidAt,
		SlotThreshold: settings.ReferralVolumeThreshold,
	}

	if acc.ReferrerID != nil {
		commission, err := ledger.NewCommission(tx.ID, *acc.ReferrerID, acc.ID, tx.GrossAmount, settings.CommissionPercent)
		if err != nil {
			s.logger.Warn("Skipping commission for settlement",
				zap.String("transaction_id", tx.ID.String()),
				zap.Error(err))
		} else {
			settlement.Commission = commission
		}
	}

	applied, err := s.txRepo.SettleDeposit(ctx, settlement)
	if err != nil {
		return err
	}
	if !applied {
		s.logger.Info("Settlement already applied",
			zap.String("transaction_id", tx.ID.String()))
		return nil
	}

	s.logger.Info("Deposit settled",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("account_id", acc.ID.String()),
		zap.String("gross", tx.GrossAmount.Amount().Round(2).String()),
		zap.String("net", tx.NetAmount.Amount().Round(2).String()),
		zap.Bool("commission", settlement.Commission != nil))
	return nil
}

// ReconcilePending polls the processor for the oldest pending charges
// and settles or expires them. Each charge fails independently, so one
// bad processor answer never stalls the rest of the batch.
func (s *SettlementService) ReconcilePending(ctx context.Context, batchSize int) (scheduler.ReconcileStats, error) {
	var stats scheduler.ReconcileStats

	pending, err := s.txRepo.FindPendingWithProcessorID(ctx, batchSize)
	if err != nil {
		return stats, err
	}

	for _, tx := range pending {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		stats.Checked++

		state, err := s.processor.GetChargeStatus(ctx, tx.ProcessorID)
		if err != nil {
			stats.Failed++
			s.logger.Warn("Charge status poll failed",
				zap.String("transaction_id", tx.ID.String()),
				zap.String("processor_id", tx.ProcessorID),
				zap.Error(err))
			continue
		}

		switch {
		case state.Status.IsPaid():
			paidAt := time.Now()
			if state.PaidAt != nil {
				paidAt = *state.PaidAt
			}
			if err := s.Settle(ctx, tx.CustomID, paidAt); err != nil {
				stats.Failed++
				s.logger.Error("Settlement from poller failed",
					zap.String("transaction_id", tx.ID.String()),
					zap.Error(err))
				continue
			}
			stats.Settled++
		case state.Status == pix.ChargeStatusExpired, state.Status == pix.ChargeStatusFailed:
			if err := s.txRepo.MarkExpired(ctx, tx.ID); err != nil && err != shared.ErrInvalidState {
				stats.Failed++
				s.logger.Warn("Failed to expire charge",
					zap.String("transaction_id", tx.ID.String()),
					zap.Error(err))
				continue
			}
			stats.Expired++
		}
	}

	return stats, nil
}

// Ensure SettlementService implements scheduler.ChargeReconciler
var _ scheduler.ChargeReconciler = (*SettlementService)(nil)
