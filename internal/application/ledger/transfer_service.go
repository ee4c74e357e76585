package ledger

import (
	"context"
	"strings"

	"github.com/Lion1208/fastpay/internal/domain/account"
	"github.com/Lion1208/fastpay/internal/domain/ledger"
	"github.com/Lion1208/fastpay/internal/domain/platform"
	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/Lion1208/fastpay/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TransferService handles internal transfers between accounts
type TransferService struct {
	transferRepo ledger.TransferRepository
	accountRepo  account.Repository
	settingsRepo platform.SettingsRepository
	logger       *zap.Logger
}

// NewTransferService creates a new transfer service
func NewTransferService(
	transferRepo ledger.TransferRepository,
	accountRepo account.Repository,
	settingsRepo platform.SettingsRepository,
	logger *zap.Logger,
) *TransferService {
	return &TransferService{
		transferRepo: transferRepo,
		accountRepo:  accountRepo,
		settingsRepo: settingsRepo,
		logger:       logger,
	}
}

// SendTransfer moves money from the sender to the recipient identified
// by code. The sender pays the fee out of the sent amount.
func (s *TransferService) SendTransfer(ctx context.Context, input SendTransferInput) (*TransferResponse, error) {
	sender, recipient, err := s.resolveParties(ctx, input.SenderID, input.RecipientCode)
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.Load(ctx)
	if err != nil {
		return nil, err
	}

	transfer, err := ledger.NewTransfer(
		sender.ID,
		recipient.ID,
		valueobject.NewMoneyBRL(input.Amount),
		sender.Fees.TransferPercent,
		settings.MinTransfer,
	)
	if err != nil {
		return nil, err
	}

	if err := s.transferRepo.Execute(ctx, transfer); err != nil {
		return nil, err
	}

	s.logger.Info("Transfer executed",
		zap.String("transfer_id", transfer.ID.String()),
		zap.String("sender_id", sender.ID.String()),
		zap.String("recipient_id", recipient.ID.String()),
		zap.String("amount", transfer.Amount.Amount().Round(2).String()))

	response := ToTransferResponse(transfer)
	return &response, nil
}

// PreviewTransfer computes the fee and what the recipient would get,
// without side effects
func (s *TransferService) PreviewTransfer(ctx context.Context, input SendTransferInput) (*TransferPreview, error) {
	sender, recipient, err := s.resolveParties(ctx, input.SenderID, input.RecipientCode)
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.Load(ctx)
	if err != nil {
		return nil, err
	}

	transfer, err := ledger.NewTransfer(
		sender.ID,
		recipient.ID,
		valueobject.NewMoneyBRL(input.Amount),
		sender.Fees.TransferPercent,
		settings.MinTransfer,
	)
	if err != nil {
		return nil, err
	}

	return &TransferPreview{
		Amount:        transfer.Amount.Amount().Round(2).String(),
		Fee:           transfer.Fee.Amount().Round(2).String(),
		RecipientGets: transfer.ReceivedAmount().Amount().Round(2).String(),
		RecipientName: recipient.Name,
		RecipientCode: recipient.Code,
	}, nil
}

// ListTransfers lists transfers the account sent or received
func (s *TransferService) ListTransfers(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]TransferResponse, int64, error) {
	transfers, total, err := s.transferRepo.List(ctx, ledger.TransferFilter{
		AccountID: &accountID,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]TransferResponse, len(transfers))
	for i, t := range transfers {
		responses[i] = ToTransferResponse(t)
	}
	return responses, total, nil
}

func (s *TransferService) resolveParties(ctx context.Context, senderID uuid.UUID, recipientCode string) (*account.Account, *account.Account, error) {
	sender, err := s.accountRepo.FindByID(ctx, senderID)
	if err != nil {
		return nil, nil, err
	}
	if !sender.IsActive() {
		return nil, nil, shared.ErrAccountBlocked
	}

	code := strings.ToUpper(strings.TrimSpace(recipientCode))
	recipient, err := s.accountRepo.FindByCode(ctx, code)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, nil, shared.NewDomainError("RECIPIENT_NOT_FOUND", "No account with that code")
		}
		return nil, nil, err
	}
	if !recipient.IsActive() {
		return nil, nil, shared.NewDomainError("RECIPIENT_BLOCKED", "Recipient account cannot receive transfers")
	}

	return sender, recipient, nil
}
