package support

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/google/uuid"
)

// APIKeyPrefix marks every key issued by the platform
const APIKeyPrefix = "pk_"

// APIKey authenticates server-to-server calls to the external charge
// API on behalf of an account
type APIKey struct {
	shared.BaseEntity

	AccountID  uuid.UUID
	Key        string
	Label      string
	Active     bool
	LastUsedAt *time.Time
}

// NewAPIKey creates an active key with a random secret
func NewAPIKey(accountID uuid.UUID, label string) (*APIKey, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID is required")
	}
	secret := make([]byte, 24)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	return &APIKey{
		BaseEntity: shared.NewBaseEntity(),
		AccountID:  accountID,
		Key:        APIKeyPrefix + hex.EncodeToString(secret),
		Label:      label,
		Active:     true,
	}, nil
}

// Revoke deactivates the key
func (k *APIKey) Revoke() {
	k.Active = false
}

// Touch records key usage
func (k *APIKey) Touch() {
	now := time.Now()
	k.LastUsedAt = &now
}
