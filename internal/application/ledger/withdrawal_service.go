package ledger

import (
	"context"

	"github.com/Lion1208/fastpay/internal/domain/account"
	"github.com/Lion1208/fastpay/internal/domain/ledger"
	"github.com/Lion1208/fastpay/internal/domain/platform"
	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/Lion1208/fastpay/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WithdrawalService handles payout requests and their review
type WithdrawalService struct {
	withdrawalRepo ledger.WithdrawalRepository
	accountRepo    account.Repository
	settingsRepo   platform.SettingsRepository
	logger         *zap.Logger
}

// NewWithdrawalService creates a new withdrawal service
func NewWithdrawalService(
	withdrawalRepo ledger.WithdrawalRepository,
	accountRepo account.Repository,
	settingsRepo platform.SettingsRepository,
	logger *zap.Logger,
) *WithdrawalService {
	return &WithdrawalService{
		withdrawalRepo: withdrawalRepo,
		accountRepo:    accountRepo,
		settingsRepo:   settingsRepo,
		logger:         logger,
	}
}

// RequestWithdrawal opens a payout request and withholds the funds
func (s *WithdrawalService) RequestWithdrawal(ctx context.Context, input RequestWithdrawalInput) (*WithdrawalResponse, error) {
	acc, err := s.accountRepo.FindByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}
	if !acc.IsActive() {
		return nil, shared.ErrAccountBlocked
	}

	pixKey := input.PixKey
	pixKeyType := input.PixKeyType
	if pixKey == "" {
		pixKey = acc.PixKey
		pixKeyType = string(acc.PixKeyType)
	}

	settings, err := s.settingsRepo.Load(ctx)
	if err != nil {
		return nil, err
	}

	w, err := ledger.NewWithdrawal(
		acc.ID,
		valueobject.NewMoneyBRL(input.Amount),
		acc.Fees.WithdrawalPercent,
		acc.AvailableBalance,
		acc.CommissionBalance,
		settings.MinWithdrawal,
		pixKey,
		pixKeyType,
	)
	if err != nil {
		return nil, err
	}

	if err := s.withdrawalRepo.CreateWithHold(ctx, w); err != nil {
		return nil, err
	}

	s.logger.Info("Withdrawal requested",
		zap.String("withdrawal_id", w.ID.String()),
		zap.String("account_id", acc.ID.String()),
		zap.String("amount", w.Amount.Amount().Round(2).String()),
		zap.String("withheld", w.TotalWithheld.Amount().Round(2).String()))

	response := ToWithdrawalResponse(w)
	return &response, nil
}

// PreviewWithdrawal computes the fee and bucket split without side effects
func (s *WithdrawalService) PreviewWithdrawal(ctx context.Context, accountID uuid.UUID, amount valueobject.Money) (*WithdrawalResponse, error) {
	acc, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.Load(ctx)
	if err != nil {
		return nil, err
	}

	w, err := ledger.NewWithdrawal(
		acc.ID,
		amount,
		acc.Fees.WithdrawalPercent,
		acc.AvailableBalance,
		acc.CommissionBalance,
		settings.MinWithdrawal,
		"preview",
		"preview",
	)
	if err != nil {
		return nil, err
	}

	response := ToWithdrawalResponse(w)
	response.PixKey = ""
	response.PixKeyType = ""
	return &response, nil
}

// GetWithdrawal returns one withdrawal, scoped to its owner unless the
// caller is reviewing as admin
func (s *WithdrawalService) GetWithdrawal(ctx context.Context, accountID uuid.UUID, withdrawalID uuid.UUID, asAdmin bool) (*WithdrawalResponse, error) {
	w, err := s.withdrawalRepo.FindByID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}
	if !asAdmin && w.AccountID != accountID {
		return nil, shared.ErrNotFound
	}
	response := ToWithdrawalResponse(w)
	return &response, nil
}

// ListWithdrawals lists withdrawals, optionally scoped to one account
func (s *WithdrawalService) ListWithdrawals(ctx context.Context, accountID *uuid.UUID, status *ledger.WithdrawalStatus, page, pageSize int) ([]WithdrawalResponse, int64, error) {
	withdrawals, total, err := s.withdrawalRepo.List(ctx, ledger.WithdrawalFilter{
		AccountID: accountID,
		Status:    status,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]WithdrawalResponse, len(withdrawals))
	for i, w := range withdrawals {
		responses[i] = ToWithdrawalResponse(w)
	}
	return responses, total, nil
}

// Approve marks a pending withdrawal as approved for payout
func (s *WithdrawalService) Approve(ctx context.Context, withdrawalID, reviewerID uuid.UUID) (*WithdrawalResponse, error) {
	w, err := s.withdrawalRepo.FindByID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}
	if err := w.Approve(reviewerID); err != nil {
		return nil, err
	}
	if err := s.withdrawalRepo.UpdateStatus(ctx, w, ledger.WithdrawalPending); err != nil {
		return nil, err
	}

	s.logger.Info("Withdrawal approved",
		zap.String("withdrawal_id", w.ID.String()),
		zap.String("reviewer_id", reviewerID.String()))

	response := ToWithdrawalResponse(w)
	return &response, nil
}

// Reject declines a pending withdrawal and refunds the full hold to
// the account's available balance
func (s *WithdrawalService) Reject(ctx context.Context, withdrawalID, reviewerID uuid.UUID) (*WithdrawalResponse, error) {
	w, err := s.withdrawalRepo.FindByID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}
	if err := w.Reject(reviewerID); err != nil {
		return nil, err
	}
	if err := s.withdrawalRepo.RejectWithRefund(ctx, w); err != nil {
		return nil, err
	}

	s.logger.Info("Withdrawal rejected and refunded",
		zap.String("withdrawal_id", w.ID.String()),
		zap.String("refunded", w.TotalWithheld.Amount().Round(2).String()),
		zap.String("reviewer_id", reviewerID.String()))

	response := ToWithdrawalResponse(w)
	return &response, nil
}

// MarkPaid records that an approved withdrawal was paid out
func (s *WithdrawalService) MarkPaid(ctx context.Context, withdrawalID uuid.UUID) (*WithdrawalResponse, error) {
	w, err := s.withdrawalRepo.FindByID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}
	if err := w.MarkPaid(); err != nil {
		return nil, err
	}
	if err := s.withdrawalRepo.UpdateStatus(ctx, w, ledger.WithdrawalApproved); err != nil {
		return nil, err
	}

	s.logger.Info("Withdrawal paid out", zap.String("withdrawal_id", w.ID.String()))

	response := ToWithdrawalResponse(w)
	return &response, nil
}
