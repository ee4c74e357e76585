package support

import (
	"context"
	"errors"
	"strings"

	"github.com/Lion1208/fastpay/internal/domain/account"
	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/Lion1208/fastpay/internal/domain/support"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// APIKeyService issues and authenticates external API keys
type APIKeyService struct {
	keyRepo     support.APIKeyRepository
	accountRepo account.Repository
	logger      *zap.Logger
}

// NewAPIKeyService creates a new API key service
func NewAPIKeyService(keyRepo support.APIKeyRepository, accountRepo account.Repository, logger *zap.Logger) *APIKeyService {
	return &APIKeyService{
		keyRepo:     keyRepo,
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// CreateKey issues a new key for the account. The response carries
// the secret once; it is not retrievable afterwards.
func (s *APIKeyService) CreateKey(ctx context.Context, accountID uuid.UUID, input CreateAPIKeyInput) (*APIKeyResponse, error) {
	key, err := support.NewAPIKey(accountID, strings.TrimSpace(input.Label))
	if err != nil {
		return nil, err
	}
	if err := s.keyRepo.Create(ctx, key); err != nil {
		return nil, err
	}

	s.logger.Info("API key issued",
		zap.String("key_id", key.ID.String()),
		zap.String("account_id", accountID.String()))

	response := ToAPIKeyResponse(key)
	response.Key = key.Key
	return &response, nil
}

// ListKeys lists the account's keys without secrets
func (s *APIKeyService) ListKeys(ctx context.Context, accountID uuid.UUID) ([]APIKeyResponse, error) {
	keys, err := s.keyRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	responses := make([]APIKeyResponse, len(keys))
	for i, k := range keys {
		responses[i] = ToAPIKeyResponse(k)
	}
	return responses, nil
}

// RevokeKey deactivates a key owned by the account
func (s *APIKeyService) RevokeKey(ctx context.Context, accountID, keyID uuid.UUID) error {
	key, err := s.keyRepo.FindByID(ctx, keyID)
	if err != nil {
		return err
	}
	if key.AccountID != accountID {
		return shared.ErrNotFound
	}
	key.Revoke()
	if err := s.keyRepo.Update(ctx, key); err != nil {
		return err
	}
	s.logger.Info("API key revoked", zap.String("key_id", keyID.String()))
	return nil
}

// Authenticate resolves an API key secret to its active owner account
// and records the usage
func (s *APIKeyService) Authenticate(ctx context.Context, rawKey string) (*account.Account, error) {
	rawKey = strings.TrimSpace(rawKey)
	if !strings.HasPrefix(rawKey, support.APIKeyPrefix) {
		return nil, shared.ErrUnauthorized
	}

	key, err := s.keyRepo.FindByKey(ctx, rawKey)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}

	acc, err := s.accountRepo.FindByID(ctx, key.AccountID)
	if err != nil {
		return nil, err
	}
	if !acc.IsActive() {
		return nil, shared.ErrUnauthorized
	}

	key.Touch()
	if err := s.keyRepo.Update(ctx, key); err != nil {
		s.logger.Warn("Failed to record API key usage",
			zap.String("key_id", key.ID.String()),
			zap.Error(err))
	}
	return acc, nil
}
