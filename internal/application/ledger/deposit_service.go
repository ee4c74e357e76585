package ledger

import (
	"context"
	"time"

	"github.com/Lion1208/fastpay/internal/domain/account"
	"github.com/Lion1208/fastpay/internal/domain/ledger"
	"github.com/Lion1208/fastpay/internal/domain/pix"
	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/Lion1208/fastpay/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Deposit limits. The tighter first-deposit window protects new
// accounts; daily caps depend on whether a CPF is on file.
var (
	firstDepositMin   = valueobject.NewMoneyBRLFromFloat(10.00)
	firstDepositMax   = valueobject.NewMoneyBRLFromFloat(500.00)
	dailyCapWithCPF   = valueobject.NewMoneyBRLFromFloat(5000.00)
	dailyCapWithout   = valueobject.NewMoneyBRLFromFloat(500.00)
	firstDepositGrace = 24 * time.Hour
)

// DepositService handles PIX deposit charges
type DepositService struct {
	txRepo      ledger.TransactionRepository
	accountRepo account.Repository
	processor   pix.Processor
	logger      *zap.Logger
}

// NewDepositService creates a new deposit service
func NewDepositService(
	txRepo ledger.TransactionRepository,
	accountRepo account.Repository,
	processor pix.Processor,
	logger *zap.Logger,
) *DepositService {
	return &DepositService{
		txRepo:      txRepo,
		accountRepo: accountRepo,
		processor:   processor,
		logger:      logger,
	}
}

// CreateDeposit validates limits, opens a charge at the processor and
// persists the pending transaction with its QR payloads
func (s *DepositService) CreateDeposit(ctx context.Context, input CreateDepositInput) (*DepositResponse, error) {
	acc, err := s.accountRepo.FindByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}
	if !acc.IsActive() {
		return nil, shared.ErrAccountBlocked
	}

	gross := valueobject.NewMoneyBRL(input.Amount)
	if err := s.checkLimits(ctx, acc, gross); err != nil {
		return nil, err
	}

	tx, err := ledger.NewTransaction(acc.ID, gross, acc.Fees.DepositPercent, acc.Fees.DepositFixed)
	if err != nil {
		return nil, err
	}

	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	charge, err := s.processor.CreateCharge(ctx, pix.CreateChargeRequest{
		CustomID:      tx.CustomID,
		Amount:        gross.Amount().Round(2),
		PayerName:     input.PayerName,
		PayerDocument: input.PayerDocument,
	})
	if err != nil {
		// The transaction stays pending without QR payloads. The
		// webhook can still settle it by custom id once the processor
		// recovers.
		s.logger.Warn("Charge creation failed, returning degraded deposit",
			zap.String("transaction_id", tx.ID.String()),
			zap.Error(err))
		response := ToDepositResponse(tx)
		return &response, nil
	}

	if err := tx.AttachCharge(charge.ProcessorID, charge.QRCode, charge.QRCodeBase64, charge.PixCopyPaste); err != nil {
		return nil, err
	}
	if err := s.txRepo.Update(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Info("Deposit charge created",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("processor_id", charge.ProcessorID),
		zap.String("gross", gross.Amount().Round(2).String()))

	response := ToDepositResponse(tx)
	return &response, nil
}

// GetDeposit returns one of the account's deposits
func (s *DepositService) GetDeposit(ctx context.Context, accountID, depositID uuid.UUID) (*DepositResponse, error) {
	tx, err := s.txRepo.FindByID(ctx, depositID)
	if err != nil {
		return nil, err
	}
	if tx.AccountID != accountID {
		return nil, shared.ErrNotFound
	}
	response := ToDepositResponse(tx)
	return &response, nil
}

// ListDeposits lists the account's deposits
func (s *DepositService) ListDeposits(ctx context.Context, accountID uuid.UUID, status *ledger.TransactionStatus, page, pageSize int) ([]DepositResponse, int64, error) {
	transactions, total, err := s.txRepo.List(ctx, ledger.TransactionFilter{
		AccountID: &accountID,
		Status:    status,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]DepositResponse, len(transactions))
	for i, tx := range transactions {
		responses[i] = ToDepositResponse(tx)
	}
	return responses, total, nil
}

func (s *DepositService) checkLimits(ctx context.Context, acc *account.Account, gross valueobject.Money) error {
	if time.Since(acc.CreatedAt) < firstDepositGrace {
		paidCount, err := s.txRepo.CountPaidByAccount(ctx, acc.ID)
		if err != nil {
			return err
		}
		if paidCount == 0 {
			if ok, _ := gross.GreaterThanOrEqual(firstDepositMin); !ok {
				return shared.NewDomainError("DEPOSIT_LIMIT_EXCEEDED", "First deposit must be at least R$ 10.00")
			}
			if ok, _ := firstDepositMax.GreaterThanOrEqual(gross); !ok {
				return shared.NewDomainError("DEPOSIT_LIMIT_EXCEEDED", "First deposit cannot exceed R$ 500.00")
			}
		}
	}

	dailyCap := dailyCapWithout
	if acc.HasDocument() {
		dailyCap = dailyCapWithCPF
	}

	startOfDay := time.Now().Truncate(24 * time.Hour)
	todaysVolume, err := s.txRepo.SumCreatedGrossSince(ctx, acc.ID, startOfDay)
	if err != nil {
		return err
	}

	if ok, _ := dailyCap.GreaterThanOrEqual(todaysVolume.MustAdd(gross)); !ok {
		return shared.ErrDepositLimit
	}
	return nil
}
