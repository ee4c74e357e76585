package receipt

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDepositReceiptHTML(t *testing.T) {
	paidAt := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

	html, err := BuildDepositReceiptHTML(DepositReceiptData{
		TransactionID: "7b6a2f1e-0000-0000-0000-000000000001",
		CustomID:      "fp-abc123",
		AccountName:   "Maria Souza",
		AccountCode:   "MS42XK",
		GrossAmount:   decimal.NewFromFloat(150.00),
		FeeAmount:     decimal.NewFromFloat(5.99),
		NetAmount:     decimal.NewFromFloat(144.01),
		PaidAt:        paidAt,
		GeneratedAt:   paidAt.Add(time.Minute),
	})

	require.NoError(t, err)
	assert.Contains(t, html, "fp-abc123")
	assert.Contains(t, html, "Maria Souza")
	assert.Contains(t, html, "MS42XK")
	assert.Contains(t, html, "R$ 150.00")
	assert.Contains(t, html, "R$ 5.99")
	assert.Contains(t, html, "R$ 144.01")
	assert.Contains(t, html, "15/03/2026 14:30:00")
}

func TestBuildDepositReceiptHTML_EscapesAccountName(t *testing.T) {
	html, err := BuildDepositReceiptHTML(DepositReceiptData{
		AccountName: "<script>alert(1)</script>",
		GrossAmount: decimal.NewFromFloat(10),
		FeeAmount:   decimal.Zero,
		NetAmount:   decimal.NewFromFloat(10),
		PaidAt:      time.Now(),
		GeneratedAt: time.Now(),
	})

	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestFormatBRL_TwoDecimalPlaces(t *testing.T) {
	assert.Equal(t, "R$ 7.50", formatBRL(decimal.NewFromFloat(7.5)))
	assert.Equal(t, "R$ 0.00", formatBRL(decimal.Zero))
}
