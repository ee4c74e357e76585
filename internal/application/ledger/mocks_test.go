package ledger

import (
	"context"
	"time"

	"github.com/Lion1208/fastpay/internal/domain/account"
	"github.com/Lion1208/fastpay/internal/domain/ledger"
	"github.com/Lion1208/fastpay/internal/domain/pix"
	"github.com/Lion1208/fastpay/internal/domain/platform"
	"github.com/Lion1208/fastpay/internal/domain/shared/valueobject"
	"github.com/Lion1208/fastpay/internal/infrastructure/receipt"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockTransactionRepository is a mock implementation of ledger.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *ledger.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) Update(ctx context.Context, tx *ledger.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByCustomID(ctx context.Context, customID string) (*ledger.Transaction, error) {
	args := m.Called(ctx, customID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) List(ctx context.Context, filter ledger.TransactionFilter) ([]*ledger.Transaction, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*ledger.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) FindPendingWithProcessorID(ctx context.Context, limit int) ([]*ledger.Transaction, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SumPaidGrossSince(ctx context.Context, accountID uuid.UUID, since time.Time) (valueobject.Money, error) {
	args := m.Called(ctx, accountID, since)
	return args.Get(0).(valueobject.Money), args.Error(1)
}

func (m *MockTransactionRepository) SumCreatedGrossSince(ctx context.Context, accountID uuid.UUID, since time.Time) (valueobject.Money, error) {
	args := m.Called(ctx, accountID, since)
	return args.Get(0).(valueobject.Money), args.Error(1)
}

func (m *MockTransactionRepository) CountPaidByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) DailyVolumes(ctx context.Context, accountID uuid.UUID, days int) ([]ledger.DailyVolume, error) {
	args := m.Called(ctx, accountID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.DailyVolume), args.Error(1)
}

func (m *MockTransactionRepository) SettleDeposit(ctx context.Context, s ledger.Settlement) (bool, error) {
	args := m.Called(ctx, s)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepository) MarkExpired(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAccountRepository is a mock implementation of account.Repository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, acc *account.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccountRepository) Update(ctx context.Context, acc *account.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByCode(ctx context.Context, code string) (*account.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByDocument(ctx context.Context, document string) (*account.Account, error) {
	args := m.Called(ctx, document)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) List(ctx context.Context, filter account.Filter) ([]*account.Account, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*account.Account), args.Get(1).(int64), args.Error(2)
}

func (m *MockAccountRepository) FindReferees(ctx context.Context, referrerID uuid.UUID, filter account.Filter) ([]*account.Account, int64, error) {
	args := m.Called(ctx, referrerID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*account.Account), args.Get(1).(int64), args.Error(2)
}

func (m *MockAccountRepository) CountReferees(ctx context.Context, referrerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, referrerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) ConsumeReferralSlot(ctx context.Context, referrerID uuid.UUID, slotsPerGrant int) error {
	args := m.Called(ctx, referrerID, slotsPerGrant)
	return args.Error(0)
}

func (m *MockAccountRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockSettingsRepository is a mock implementation of platform.SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Load(ctx context.Context) (platform.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(platform.Settings), args.Error(1)
}

func (m *MockSettingsRepository) Save(ctx context.Context, s platform.Settings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// MockProcessor is a mock implementation of pix.Processor
type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockProcessor) CreateCharge(ctx context.Context, req pix.CreateChargeRequest) (*pix.CreateChargeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pix.CreateChargeResponse), args.Error(1)
}

func (m *MockProcessor) GetChargeStatus(ctx context.Context, processorID string) (*pix.ChargeState, error) {
	args := m.Called(ctx, processorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pix.ChargeState), args.Error(1)
}

// MockWebhookVerifier is a mock implementation of pix.WebhookVerifier
type MockWebhookVerifier struct {
	mock.Mock
}

func (m *MockWebhookVerifier) Verify(body []byte, signature string) error {
	args := m.Called(body, signature)
	return args.Error(0)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, deliveryID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, deliveryID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, deliveryID string) (bool, error) {
	args := m.Called(ctx, deliveryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockWithdrawalRepository is a mock implementation of ledger.WithdrawalRepository
type MockWithdrawalRepository struct {
	mock.Mock
}

func (m *MockWithdrawalRepository) CreateWithHold(ctx context.Context, w *ledger.Withdrawal) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Withdrawal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalRepository) List(ctx context.Context, filter ledger.WithdrawalFilter) ([]*ledger.Withdrawal, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*ledger.Withdrawal), args.Get(1).(int64), args.Error(2)
}

func (m *MockWithdrawalRepository) UpdateStatus(ctx context.Context, w *ledger.Withdrawal, expected ledger.WithdrawalStatus) error {
	args := m.Called(ctx, w, expected)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) RejectWithRefund(ctx context.Context, w *ledger.Withdrawal) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) CountByStatus(ctx context.Context, status ledger.WithdrawalStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWithdrawalRepository) SumPaidByAccount(ctx context.Context, accountID uuid.UUID) (valueobject.Money, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(valueobject.Money), args.Error(1)
}

// MockTransferRepository is a mock implementation of ledger.TransferRepository
type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) Execute(ctx context.Context, t *ledger.Transfer) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transfer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transfer), args.Error(1)
}

func (m *MockTransferRepository) List(ctx context.Context, filter ledger.TransferFilter) ([]*ledger.Transfer, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*ledger.Transfer), args.Get(1).(int64), args.Error(2)
}

// MockCommissionRepository is a mock implementation of ledger.CommissionRepository
type MockCommissionRepository struct {
	mock.Mock
}

func (m *MockCommissionRepository) FindByTransactionID(ctx context.Context, transactionID uuid.UUID) (*ledger.Commission, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Commission), args.Error(1)
}

func (m *MockCommissionRepository) List(ctx context.Context, filter ledger.CommissionFilter) ([]*ledger.Commission, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*ledger.Commission), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommissionRepository) SumByReferrer(ctx context.Context, referrerID uuid.UUID) (valueobject.Money, error) {
	args := m.Called(ctx, referrerID)
	return args.Get(0).(valueobject.Money), args.Error(1)
}

// MockPDFRenderer is a mock implementation of receipt.PDFRenderer
type MockPDFRenderer struct {
	mock.Mock
}

func (m *MockPDFRenderer) Render(ctx context.Context, req *receipt.RenderRequest) (*receipt.RenderResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*receipt.RenderResult), args.Error(1)
}

func (m *MockPDFRenderer) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockObjectStorage is a mock implementation of ObjectStorageService
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	args := m.Called(ctx, storageKey, data, contentType)
	return args.Error(0)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	args := m.Called(ctx, storageKey)
	return args.Bool(0), args.Error(1)
}
