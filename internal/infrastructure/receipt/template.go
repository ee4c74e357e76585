package receipt

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
)

// DepositReceiptData holds the fields rendered into a deposit receipt.
type DepositReceiptData struct {
	TransactionID string
	CustomID      string
	AccountName   string
	AccountCode   string
	GrossAmount   decimal.Decimal
	FeeAmount     decimal.Decimal
	NetAmount     decimal.Decimal
	PaidAt        time.Time
	GeneratedAt   time.Time
}

var depositReceiptTmpl = template.Must(template.New("deposit_receipt").Funcs(template.FuncMap{
	"brl":      formatBRL,
	"datetime": formatDateTime,
}).Parse(`<div class="receipt">
  <style>
    .receipt { font-family: Helvetica, Arial, sans-serif; color: #1a1a1a; max-width: 640px; margin: 0 auto; }
    .receipt h1 { font-size: 20px; border-bottom: 2px solid #1a1a1a; padding-bottom: 8px; }
    .receipt table { width: 100%; border-collapse: collapse; margin-top: 16px; }
    .receipt td { padding: 6px 0; font-size: 13px; }
    .receipt td.label { color: #666; width: 40%; }
    .receipt .total td { border-top: 1px solid #ccc; font-weight: bold; }
    .receipt .footer { margin-top: 32px; font-size: 11px; color: #999; }
  </style>
  <h1>Comprovante de Pagamento PIX</h1>
  <table>
    <tr><td class="label">Transa&ccedil;&atilde;o</td><td>{{.TransactionID}}</td></tr>
    <tr><td class="label">Identificador</td><td>{{.CustomID}}</td></tr>
    <tr><td class="label">Recebedor</td><td>{{.AccountName}} ({{.AccountCode}})</td></tr>
    <tr><td class="label">Pago em</td><td>{{datetime .PaidAt}}</td></tr>
    <tr><td class="label">Valor bruto</td><td>{{brl .GrossAmount}}</td></tr>
    <tr><td class="label">Tarifa</td><td>{{brl .FeeAmount}}</td></tr>
    <tr class="total"><td class="label">Valor l&iacute;quido</td><td>{{brl .NetAmount}}</td></tr>
  </table>
  <div class="footer">Gerado em {{datetime .GeneratedAt}} &mdash; FastPay</div>
</div>`))

// BuildDepositReceiptHTML renders the receipt HTML for a settled deposit.
func BuildDepositReceiptHTML(data DepositReceiptData) (string, error) {
	var buf bytes.Buffer
	if err := depositReceiptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render receipt template: %w", err)
	}
	return buf.String(), nil
}

func formatBRL(v decimal.Decimal) string {
	return "R$ " + v.StringFixed(2)
}

func formatDateTime(t time.Time) string {
	return t.Format("02/01/2006 15:04:05")
}
