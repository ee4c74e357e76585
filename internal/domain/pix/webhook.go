package pix

// Webhook event names delivered by the processor
const (
	EventTransactionPaid    = "transaction.paid"
	EventTransactionExpired = "transaction.expired"
)

// WebhookEvent is the payload posted by the processor when a charge
// changes state. The signature over the raw body is verified before
// this struct is ever populated.
type WebhookEvent struct {
	Event string           `json:"event"`
	Data  WebhookEventData `json:"data"`
}

// WebhookEventData carries the charge identifiers of a webhook event
type WebhookEventData struct {
	CustomID    string `json:"custom_id"`
	ProcessorID string `json:"id,omitempty"`
}

// WebhookVerifier checks the authenticity of a webhook delivery.
// Implementations must compare signatures in constant time.
type WebhookVerifier interface {
	Verify(body []byte, signature string) error
}
