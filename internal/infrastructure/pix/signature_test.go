package pix

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestHMACVerifier(t *testing.T) {
	body := []byte(`{"event":"transaction.paid","data":{"custom_id":"abc"}}`)

	t.Run("accepts a valid signature", func(t *testing.T) {
		verifier, err := NewHMACVerifier("topsecret")
		require.NoError(t, err)

		err = verifier.Verify(body, sign("topsecret", body))
		assert.NoError(t, err)
	})

	t.Run("rejects a signature from another secret", func(t *testing.T) {
		verifier, err := NewHMACVerifier("topsecret")
		require.NoError(t, err)

		err = verifier.Verify(body, sign("othersecret", body))
		assert.ErrorIs(t, err, shared.ErrInvalidSignature)
	})

	t.Run("rejects a tampered body", func(t *testing.T) {
		verifier, err := NewHMACVerifier("topsecret")
		require.NoError(t, err)

		signature := sign("topsecret", body)
		tampered := []byte(`{"event":"transaction.paid","data":{"custom_id":"xyz"}}`)

		err = verifier.Verify(tampered, signature)
		assert.ErrorIs(t, err, shared.ErrInvalidSignature)
	})

	t.Run("rejects an empty signature", func(t *testing.T) {
		verifier, err := NewHMACVerifier("topsecret")
		require.NoError(t, err)

		err = verifier.Verify(body, "")
		assert.ErrorIs(t, err, shared.ErrInvalidSignature)
	})

	t.Run("rejects a signature that is not hex", func(t *testing.T) {
		verifier, err := NewHMACVerifier("topsecret")
		require.NoError(t, err)

		err = verifier.Verify(body, "not-hex!")
		assert.ErrorIs(t, err, shared.ErrInvalidSignature)
	})

	t.Run("requires a secret", func(t *testing.T) {
		_, err := NewHMACVerifier("")
		assert.ErrorIs(t, err, ErrMissingWebhookSecret)
	})
}
