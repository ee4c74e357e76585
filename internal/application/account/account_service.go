package account

import (
	"context"
	"strings"

	"github.com/Lion1208/fastpay/internal/application/identity"
	"github.com/Lion1208/fastpay/internal/domain/account"
	"github.com/Lion1208/fastpay/internal/domain/ledger"
	"github.com/Lion1208/fastpay/internal/domain/platform"
	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/Lion1208/fastpay/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dashboardChartDays = 7

// Service handles account profile, dashboard and admin operations
type Service struct {
	accountRepo    account.Repository
	txRepo         ledger.TransactionRepository
	commissionRepo ledger.CommissionRepository
	withdrawalRepo ledger.WithdrawalRepository
	settingsRepo   platform.SettingsRepository
	logger         *zap.Logger
}

// NewService creates a new account service
func NewService(
	accountRepo account.Repository,
	txRepo ledger.TransactionRepository,
	commissionRepo ledger.CommissionRepository,
	withdrawalRepo ledger.WithdrawalRepository,
	settingsRepo platform.SettingsRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		accountRepo:    accountRepo,
		txRepo:         txRepo,
		commissionRepo: commissionRepo,
		withdrawalRepo: withdrawalRepo,
		settingsRepo:   settingsRepo,
		logger:         logger,
	}
}

// Get returns one account's public shape
func (s *Service) Get(ctx context.Context, accountID uuid.UUID) (*AccountResponse, error) {
	acc, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	settings, err := s.settingsRepo.Load(ctx)
	if err != nil {
		return nil, err
	}
	response := identity.ToAccountResponse(acc, settings.ReferralSlotsPerGrant)
	return &response, nil
}

// UpdateProfile updates the partner's payout PIX key
func (s *Service) UpdateProfile(ctx context.Context, accountID uuid.UUID, input UpdateProfileInput) (*AccountResponse, error) {
	acc, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if err := acc.SetPixKey(input.PixKey, account.PixKeyType(input.PixKeyType)); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Update(ctx, acc); err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.Load(ctx)
	if err != nil {
		return nil, err
	}
	response := identity.ToAccountResponse(acc, settings.ReferralSlotsPerGrant)
	return &response, nil
}

// Dashboard aggregates the partner's balances, volume and referral
// numbers with a trailing deposit chart
func (s *Service) Dashboard(ctx context.Context, accountID uuid.UUID) (*DashboardResponse, error) {
	acc, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.Load(ctx)
	if err != nil {
		return nil, err
	}

	settled, err := s.txRepo.CountPaidByAccount(ctx, acc.ID)
	if err != nil {
		return nil, err
	}

	withdrawn, err := s.withdrawalRepo.SumPaidByAccount(ctx, acc.ID)
	if err != nil {
		return nil, err
	}

	earned, err := s.commissionRepo.SumByReferrer(ctx, acc.ID)
	if err != nil {
		return nil, err
	}

	referees, err := s.accountRepo.CountReferees(ctx, acc.ID)
	if err != nil {
		return nil, err
	}

	volumes, err := s.txRepo.DailyVolumes(ctx, acc.ID, dashboardChartDays)
	if err != nil {
		return nil, err
	}

	return &DashboardResponse{
		AvailableBalance:  acc.AvailableBalance.Amount().Round(2).String(),
		CommissionBalance: acc.CommissionBalance.Amount().Round(2).String(),
		TotalBalance:      acc.TotalBalance().Amount().Round(2).String(),
		TotalVolumeMoved:  acc.TotalVolumeMoved.Amount().Round(2).String(),
		DepositsSettled:   settled,
		TotalWithdrawn:    withdrawn.Amount().Round(2).String(),
		CommissionEarned:  earned.Amount().Round(2).String(),
		RefereeCount:      referees,
		FreeReferralSlots: acc.FreeReferralSlots(settings.ReferralSlotsPerGrant),
		DailyVolumes:      toDailyVolumePoints(volumes),
	}, nil
}

// ListReferees lists the accounts registered under the partner's code
func (s *Service) ListReferees(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]RefereeResponse, int64, error) {
	referees, total, err := s.accountRepo.FindReferees(ctx, accountID, account.Filter{Page: page, PageSize: pageSize})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]RefereeResponse, len(referees))
	for i, r := range referees {
		responses[i] = RefereeResponse{
			ID:               r.ID,
			Name:             r.Name,
			Code:             r.Code,
			Status:           string(r.Status),
			TotalVolumeMoved: r.TotalVolumeMoved.Amount().Round(2).String(),
			CreatedAt:        r.CreatedAt,
		}
	}
	return responses, total, nil
}

// PublicPage returns the referral landing payload for a partner code
func (s *Service) PublicPage(ctx context.Context, code string) (*PublicPageResponse, error) {
	acc, err := s.accountRepo.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if !acc.IsActive() {
		return nil, shared.ErrNotFound
	}

	settings, err := s.settingsRepo.Load(ctx)
	if err != nil {
		return nil, err
	}

	return &PublicPageResponse{
		Name:      acc.Name,
		Code:      acc.Code,
		SlotsFree: acc.CanRefer(settings.ReferralSlotsPerGrant),
	}, nil
}

// ListAccounts lists accounts for admin review
func (s *Service) ListAccounts(ctx context.Context, filter account.Filter) ([]AccountResponse, int64, error) {
	accounts, total, err := s.accountRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	settings, err := s.settingsRepo.Load(ctx)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		responses[i] = identity.ToAccountResponse(acc, settings.ReferralSlotsPerGrant)
	}
	return responses, total, nil
}

// Block blocks an account
func (s *Service) Block(ctx context.Context, accountID uuid.UUID) error {
	acc, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if acc.IsAdmin() {
		return shared.ErrForbidden
	}
	acc.Block()
	if err := s.accountRepo.Update(ctx, acc); err != nil {
		return err
	}
	s.logger.Info("Account blocked", zap.String("account_id", accountID.String()))
	return nil
}

// Unblock reactivates a blocked account
func (s *Service) Unblock(ctx context.Context, accountID uuid.UUID) error {
	acc, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	acc.Unblock()
	if err := s.accountRepo.Update(ctx, acc); err != nil {
		return err
	}
	s.logger.Info("Account unblocked", zap.String("account_id", accountID.String()))
	return nil
}

// UpdateFees overrides an account's fee schedule
func (s *Service) UpdateFees(ctx context.Context, accountID uuid.UUID, input UpdateFeesInput) (*AccountResponse, error) {
	acc, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if input.DepositPercent != nil {
		acc.Fees.DepositPercent = *input.DepositPercent
	}
	if input.DepositFixed != nil {
		acc.Fees.DepositFixed = valueobject.NewMoneyBRL(*input.DepositFixed)
	}
	if input.WithdrawalPercent != nil {
		acc.Fees.WithdrawalPercent = *input.WithdrawalPercent
	}
	if input.TransferPercent != nil {
		acc.Fees.TransferPercent = *input.TransferPercent
	}

	if err := s.accountRepo.Update(ctx, acc); err != nil {
		return nil, err
	}

	s.logger.Info("Account fees updated", zap.String("account_id", accountID.String()))

	settings, err := s.settingsRepo.Load(ctx)
	if err != nil {
		return nil, err
	}
	response := identity.ToAccountResponse(acc, settings.ReferralSlotsPerGrant)
	return &response, nil
}

// AdminStats aggregates platform-wide numbers
func (s *Service) AdminStats(ctx context.Context) (*AdminStatsResponse, error) {
	accounts, err := s.accountRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := s.withdrawalRepo.CountByStatus(ctx, ledger.WithdrawalPending)
	if err != nil {
		return nil, err
	}

	return &AdminStatsResponse{
		AccountCount:       accounts,
		PendingWithdrawals: pending,
	}, nil
}
