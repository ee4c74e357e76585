package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/Lion1208/fastpay/internal/domain/account"
	"github.com/Lion1208/fastpay/internal/domain/ledger"
	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/Lion1208/fastpay/internal/infrastructure/receipt"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ObjectStorageService defines the interface for object storage operations.
// This interface is implemented by the infrastructure layer (S3-compatible
// backends or the development stub).
type ObjectStorageService interface {
	// Upload stores data under the given key
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error

	// GenerateDownloadURL generates a presigned URL for downloading an object
	// Returns the download URL and expiration time
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// ErrReceiptUnavailable is returned for deposits that have not settled.
var ErrReceiptUnavailable = shared.NewDomainError("RECEIPT_UNAVAILABLE", "Receipt is only available for paid deposits")

const receiptDownloadExpiry = time.Hour

// ReceiptService produces downloadable PDF receipts for settled deposits.
// Rendered receipts are cached in object storage keyed by transaction ID,
// so each receipt is rendered at most once.
type ReceiptService struct {
	txRepo      ledger.TransactionRepository
	accountRepo account.Repository
	renderer    receipt.PDFRenderer
	storage     ObjectStorageService
	logger      *zap.Logger
}

// NewReceiptService creates a new receipt service
func NewReceiptService(
	txRepo ledger.TransactionRepository,
	accountRepo account.Repository,
	renderer receipt.PDFRenderer,
	storage ObjectStorageService,
	logger *zap.Logger,
) *ReceiptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptService{
		txRepo:      txRepo,
		accountRepo: accountRepo,
		renderer:    renderer,
		storage:     storage,
		logger:      logger,
	}
}

// ReceiptLinkResponse carries a presigned download link for a receipt
type ReceiptLinkResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// GetDepositReceipt renders the receipt for a paid deposit (or reuses a
// previously rendered one) and returns a presigned download link. The
// deposit must belong to the requesting account.
func (s *ReceiptService) GetDepositReceipt(ctx context.Context, accountID, depositID uuid.UUID) (*ReceiptLinkResponse, error) {
	tx, err := s.txRepo.FindByID(ctx, depositID)
	if err != nil {
		return nil, err
	}
	if tx.AccountID != accountID {
		// Ownership failures look like missing resources
		return nil, shared.ErrNotFound
	}
	if tx.Status != ledger.TransactionPaid || tx.PaidAt == nil {
		return nil, ErrReceiptUnavailable
	}

	key := receiptStorageKey(tx.ID)

	exists, err := s.storage.ObjectExists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check receipt existence: %w", err)
	}
	if !exists {
		if err := s.renderAndStore(ctx, tx, key); err != nil {
			return nil, err
		}
	}

	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, key, receiptDownloadExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate receipt download URL: %w", err)
	}

	return &ReceiptLinkResponse{URL: url, ExpiresAt: expiresAt}, nil
}

func (s *ReceiptService) renderAndStore(ctx context.Context, tx *ledger.Transaction, key string) error {
	acc, err := s.accountRepo.FindByID(ctx, tx.AccountID)
	if err != nil {
		return err
	}

	feeAmount := tx.GrossAmount.Amount().Sub(tx.NetAmount.Amount())

	html, err := receipt.BuildDepositReceiptHTML(receipt.DepositReceiptData{
		TransactionID: tx.ID.String(),
		CustomID:      tx.CustomID,
		AccountName:   acc.Name,
		AccountCode:   acc.Code,
		GrossAmount:   tx.GrossAmount.Amount().Round(2),
		FeeAmount:     feeAmount.Round(2),
		NetAmount:     tx.NetAmount.Amount().Round(2),
		PaidAt:        *tx.PaidAt,
		GeneratedAt:   time.Now(),
	})
	if err != nil {
		return err
	}

	result, err := s.renderer.Render(ctx, &receipt.RenderRequest{
		HTML:  html,
		Title: "Comprovante " + tx.CustomID,
	})
	if err != nil {
		s.logger.Error("Receipt rendering failed",
			zap.String("transaction_id", tx.ID.String()),
			zap.Error(err))
		return err
	}

	if err := s.storage.Upload(ctx, key, result.PDFData, "application/pdf"); err != nil {
		return fmt.Errorf("failed to store receipt: %w", err)
	}

	s.logger.Info("Receipt rendered and stored",
		zap.String("transaction_id", tx.ID.String()),
		zap.Int("bytes", len(result.PDFData)))

	return nil
}

func receiptStorageKey(txID uuid.UUID) string {
	return "receipts/" + txID.String() + ".pdf"
}
