package pix

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/Lion1208/fastpay/internal/domain/pix"
	"github.com/Lion1208/fastpay/internal/domain/shared"
)

// ErrMissingWebhookSecret is returned when the verifier is built
// without a shared secret
var ErrMissingWebhookSecret = errors.New("pix: webhook secret is required")

// HMACVerifier implements pix.WebhookVerifier using HMAC-SHA256 over
// the raw request body, hex encoded, as FastDePix signs its deliveries.
type HMACVerifier struct {
	secret []byte
}

// NewHMACVerifier creates a new HMACVerifier
func NewHMACVerifier(secret string) (*HMACVerifier, error) {
	if secret == "" {
		return nil, ErrMissingWebhookSecret
	}
	return &HMACVerifier{secret: []byte(secret)}, nil
}

// Verify checks the signature over the raw body. The comparison is
// constant time, so a forged signature leaks nothing about the
// expected one.
func (v *HMACVerifier) Verify(body []byte, signature string) error {
	if signature == "" {
		return shared.ErrInvalidSignature
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return shared.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	expected := mac.Sum(nil)

	if !hmac.Equal(provided, expected) {
		return shared.ErrInvalidSignature
	}
	return nil
}

// Ensure HMACVerifier implements pix.WebhookVerifier
var _ pix.WebhookVerifier = (*HMACVerifier)(nil)
