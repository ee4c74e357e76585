package support

import (
	"time"

	"github.com/Lion1208/fastpay/internal/domain/support"
	"github.com/google/uuid"
)

// CreateTicketInput contains data for opening a support ticket
type CreateTicketInput struct {
	Subject string `json:"subject" binding:"required,max=200"`
	Message string `json:"message" binding:"required,max=5000"`
}

// ReplyTicketInput contains an admin reply to a ticket
type ReplyTicketInput struct {
	Reply string `json:"reply" binding:"required,max=5000"`
}

// TicketResponse is the public shape of a support ticket
type TicketResponse struct {
	ID        uuid.UUID  `json:"id"`
	AccountID uuid.UUID  `json:"account_id"`
	Subject   string     `json:"subject"`
	Message   string     `json:"message"`
	Status    string     `json:"status"`
	Reply     string     `json:"reply,omitempty"`
	RepliedAt *time.Time `json:"replied_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ToTicketResponse converts a domain ticket to its public shape
func ToTicketResponse(t *support.Ticket) TicketResponse {
	return TicketResponse{
		ID:        t.ID,
		AccountID: t.AccountID,
		Subject:   t.Subject,
		Message:   t.Message,
		Status:    string(t.Status),
		Reply:     t.Reply,
		RepliedAt: t.RepliedAt,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// CreateAPIKeyInput contains data for issuing an API key
type CreateAPIKeyInput struct {
	Label string `json:"label" binding:"required,max=100"`
}

// APIKeyResponse is the public shape of an API key. Key holds the
// secret only in the creation response; listings leave it blank.
type APIKeyResponse struct {
	ID         uuid.UUID  `json:"id"`
	Label      string     `json:"label"`
	Key        string     `json:"key,omitempty"`
	KeyHint    string     `json:"key_hint"`
	Active     bool       `json:"active"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ToAPIKeyResponse converts a domain key to its public shape without
// exposing the secret
func ToAPIKeyResponse(k *support.APIKey) APIKeyResponse {
	return APIKeyResponse{
		ID:         k.ID,
		Label:      k.Label,
		KeyHint:    keyHint(k.Key),
		Active:     k.Active,
		LastUsedAt: k.LastUsedAt,
		CreatedAt:  k.CreatedAt,
	}
}

func keyHint(key string) string {
	if len(key) <= 8 {
		return key
	}
	return key[:len(support.APIKeyPrefix)+4] + "..." + key[len(key)-4:]
}
