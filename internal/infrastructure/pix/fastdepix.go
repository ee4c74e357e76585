package pix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/Lion1208/fastpay/internal/domain/pix"
	"github.com/Lion1208/fastpay/internal/infrastructure/config"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	fastDePixCreatePath = "/api/v1/transactions"
	fastDePixStatusPath = "/api/v1/transactions/%s"
)

// FastDePixAdapter implements pix.Processor against the FastDePix API.
// Charge creation and status polls use separate clients because a poll
// that hangs must give up long before a creation call would.
type FastDePixAdapter struct {
	baseURL      string
	apiKey       string
	chargeExpiry time.Duration
	createClient *http.Client
	statusClient *http.Client
}

// NewFastDePixAdapter creates a new FastDePix adapter
func NewFastDePixAdapter(cfg config.ProcessorConfig) (*FastDePixAdapter, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("fastdepix: base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("fastdepix: API key is required")
	}

	return &FastDePixAdapter{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		chargeExpiry: cfg.ChargeExpiry,
		createClient: &http.Client{Timeout: cfg.RequestTimeout},
		statusClient: &http.Client{Timeout: cfg.StatusTimeout},
	}, nil
}

// Name identifies the processor in logs and records
func (a *FastDePixAdapter) Name() string {
	return "fastdepix"
}

// CreateCharge registers a new PIX charge
func (a *FastDePixAdapter) CreateCharge(ctx context.Context, req pix.CreateChargeRequest) (*pix.CreateChargeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	expiresIn := req.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = a.chargeExpiry
	}

	body := createTransactionRequest{
		CustomID:      req.CustomID,
		Amount:        req.Amount.Round(2).InexactFloat64(),
		PayerName:     sanitizePayerName(req.PayerName),
		PayerDocument: req.PayerDocument,
		ExpiresIn:     int(expiresIn.Seconds()),
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("fastdepix: failed to marshal request: %w", err)
	}

	respBody, err := a.doRequest(ctx, a.createClient, http.MethodPost, fastDePixCreatePath, bodyBytes)
	if err != nil {
		return nil, err
	}

	var resp createTransactionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", pix.ErrProcessorResponse, err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: missing transaction id", pix.ErrProcessorResponse)
	}

	status := normalizeStatus(resp.Status)
	if !status.IsValid() {
		status = pix.ChargeStatusPending
	}

	return &pix.CreateChargeResponse{
		ProcessorID:  resp.ID,
		Status:       status,
		QRCode:       resp.QRCodeURL,
		QRCodeBase64: resp.QRCodeBase64,
		PixCopyPaste: resp.CopyPaste,
		ExpiresAt:    time.Now().Add(expiresIn),
	}, nil
}

// GetChargeStatus queries the current state of a charge
func (a *FastDePixAdapter) GetChargeStatus(ctx context.Context, processorID string) (*pix.ChargeState, error) {
	if processorID == "" {
		return nil, pix.ErrChargeInvalidQuery
	}

	path := fmt.Sprintf(fastDePixStatusPath, processorID)
	respBody, err := a.doRequest(ctx, a.statusClient, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp transactionStatusResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", pix.ErrProcessorResponse, err)
	}

	status := normalizeStatus(resp.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", pix.ErrProcessorResponse, resp.Status)
	}

	return &pix.ChargeState{
		ProcessorID: resp.ID,
		CustomID:    resp.CustomID,
		Status:      status,
		PaidAt:      resp.PaidAt,
	}, nil
}

func (a *FastDePixAdapter) doRequest(ctx context.Context, client *http.Client, method, path string, body []byte) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("fastdepix: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pix.ErrProcessorUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fastdepix: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, pix.ErrChargeNotFound
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", pix.ErrProcessorUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: status %d: %s", pix.ErrProcessorRequest, resp.StatusCode, errorDetail(respBody))
	}

	return respBody, nil
}

func errorDetail(body []byte) string {
	var e struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Error != "" {
			return e.Error
		}
	}
	return "no detail"
}

// sanitizePayerName strips diacritics so accented names survive the
// processor's ASCII-only payer matching. CPF holders named "José" and
// "Jose" are the same person to the bank.
func sanitizePayerName(name string) string {
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		return strings.TrimSpace(name)
	}
	return strings.TrimSpace(stripped)
}

func normalizeStatus(raw string) pix.ChargeStatus {
	switch strings.ToUpper(raw) {
	case "PENDING", "WAITING", "CREATED":
		return pix.ChargeStatusPending
	case "PAID", "COMPLETED", "APPROVED":
		return pix.ChargeStatusPaid
	case "EXPIRED", "CANCELLED":
		return pix.ChargeStatusExpired
	case "FAILED", "REFUSED":
		return pix.ChargeStatusFailed
	default:
		return pix.ChargeStatus(strings.ToUpper(raw))
	}
}

// Request and response shapes of the FastDePix API

type createTransactionRequest struct {
	CustomID      string  `json:"custom_id"`
	Amount        float64 `json:"amount"`
	PayerName     string  `json:"payer_name,omitempty"`
	PayerDocument string  `json:"payer_document,omitempty"`
	ExpiresIn     int     `json:"expires_in,omitempty"`
}

type createTransactionResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	QRCodeURL    string `json:"qrcode_url"`
	QRCodeBase64 string `json:"qrcode_base64"`
	CopyPaste    string `json:"copy_paste"`
}

type transactionStatusResponse struct {
	ID       string     `json:"id"`
	CustomID string     `json:"custom_id"`
	Status   string     `json:"status"`
	PaidAt   *time.Time `json:"paid_at"`
}

// Ensure FastDePixAdapter implements pix.Processor
var _ pix.Processor = (*FastDePixAdapter)(nil)
