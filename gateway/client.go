// Package gateway talks to the external payment processor. It only issues
// requests and translates answers; it never touches the local store.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"tourism_marketplace/config"
	"tourism_marketplace/model"
)

const (
	requestPaymentPath     = "/solicitud_pago"
	consultTransactionPath = "/consulta_transaccion"
)

// ErrUnreachable is returned for every transport or protocol failure.
var ErrUnreachable = errors.New("could not reach gateway")

type Config struct {
	BaseURL   string
	User      string
	Password  string
	ReturnURL string
	Timeout   time.Duration
}

func ConfigFrom(cfg config.Config) Config {
	return Config{
		BaseURL:   cfg.GatewayBaseURL,
		User:      cfg.GatewayUser,
		Password:  cfg.GatewayPassword,
		ReturnURL: cfg.GatewayReturnURL,
		Timeout:   cfg.GatewayTimeout,
	}
}

type Client struct {
	Config     Config
	HTTPClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		Config: cfg,
		HTTPClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type PaymentDetails struct {
	InternalCode string
	Amount       decimal.Decimal
	Currency     string
	Description  string
	BuyerEmail   string
}

type PaymentRequestResult struct {
	GatewayTransactionID string `json:"gatewayTransactionId"`
	RedirectURL          string `json:"redirectUrl"`
}

type Card struct {
	Brand      string `json:"marca"`
	LastDigits string `json:"ultimos_digitos"`
}

// StatusPayload is the decoded answer of consulta_transaccion.
type StatusPayload struct {
	GatewayTransactionID string                  `json:"gatewayTransactionId"`
	Code                 int                     `json:"code"`
	Status               model.TransactionStatus `json:"status"`
	Amount               *decimal.Decimal        `json:"amount,omitempty"`
	Currency             string                  `json:"currency,omitempty"`
	AuthorizationCode    string                  `json:"authorizationCode,omitempty"`
	Card                 *Card                   `json:"card,omitempty"`
	Message              string                  `json:"message,omitempty"`
	Raw                  map[string]any          `json:"raw,omitempty"`
}

type paymentRequestBody struct {
	Amount      string `json:"monto"`
	Currency    string `json:"moneda"`
	Description string `json:"descripcion"`
	InternalID  string `json:"id_interno"`
	ReturnURL   string `json:"url_retorno,omitempty"`
	Email       string `json:"email,omitempty"`
}

type paymentRequestResponse struct {
	Error         flag    `json:"error"`
	Message       string  `json:"mensaje"`
	TransactionID literal `json:"id_transaccion"`
	URL           string  `json:"url"`
}

type consultRequestBody struct {
	TransactionID string `json:"id_transaccion"`
}

type consultResponse struct {
	Error             flag    `json:"error"`
	Message           string  `json:"mensaje"`
	Status            literal `json:"estatus"`
	TransactionID     literal `json:"id_transaccion"`
	Amount            literal `json:"monto"`
	Currency          string  `json:"moneda"`
	AuthorizationCode string  `json:"codigo_autorizacion"`
	Card              *Card   `json:"tarjeta"`
}

// RequestPayment asks the processor for a payment URL. The returned id is
// kept exactly as the gateway sent it.
func (g *Client) RequestPayment(ctx context.Context, details PaymentDetails) (*PaymentRequestResult, error) {
	body := paymentRequestBody{
		Amount:      details.Amount.StringFixed(2),
		Currency:    details.Currency,
		Description: details.Description,
		InternalID:  details.InternalCode,
		ReturnURL:   g.Config.ReturnURL,
		Email:       details.BuyerEmail,
	}

	var resp paymentRequestResponse
	if _, err := g.post(ctx, requestPaymentPath, body, &resp); err != nil {
		return nil, err
	}
	if bool(resp.Error) {
		return nil, fmt.Errorf("%w: %s", ErrUnreachable, resp.Message)
	}

	id := strings.TrimSpace(string(resp.TransactionID))
	if id == "" || resp.URL == "" {
		return nil, fmt.Errorf("%w: incomplete payment response", ErrUnreachable)
	}

	logrus.WithFields(logrus.Fields{
		"gateway_transaction_id": id,
		"internal_code":          details.InternalCode,
	}).Info("payment requested")

	return &PaymentRequestResult{GatewayTransactionID: id, RedirectURL: resp.URL}, nil
}

// ConsultTransaction polls the processor for the status of gatewayID.
func (g *Client) ConsultTransaction(ctx context.Context, gatewayID string) (*StatusPayload, error) {
	var resp consultResponse
	raw, err := g.post(ctx, consultTransactionPath, consultRequestBody{TransactionID: gatewayID}, &resp)
	if err != nil {
		return nil, err
	}
	if bool(resp.Error) {
		return nil, fmt.Errorf("%w: %s", ErrUnreachable, resp.Message)
	}

	code := -1
	if n, err := strconv.Atoi(strings.TrimSpace(string(resp.Status))); err == nil {
		code = n
	}

	payload := &StatusPayload{
		GatewayTransactionID: gatewayID,
		Code:                 code,
		Status:               MapStatus(code),
		Currency:             resp.Currency,
		AuthorizationCode:    resp.AuthorizationCode,
		Card:                 resp.Card,
		Message:              resp.Message,
		Raw:                  raw,
	}
	if resp.Amount != "" {
		if amount, err := decimal.NewFromString(string(resp.Amount)); err == nil {
			payload.Amount = &amount
		}
	}
	return payload, nil
}

// MapStatus translates the numeric estatus code of the processor.
func MapStatus(code int) model.TransactionStatus {
	switch code {
	case 0:
		return model.TransactionAuthorized
	case 1:
		return model.TransactionRejected
	case 2:
		return model.TransactionFraud
	case 3:
		return model.TransactionTechnicalError
	case 4:
		return model.TransactionInsufficientFunds
	case 5:
		return model.TransactionRejectedByBank
	case 6:
		return model.TransactionHonorIssue
	case 7:
		return model.TransactionRetained
	case 8:
		return model.TransactionPending
	default:
		return model.TransactionPending
	}
}

func (g *Client) post(ctx context.Context, path string, payload any, out any) (map[string]any, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.Config.BaseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	req.SetBasicAuth(g.Config.User, g.Config.Password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		logrus.WithError(err).WithField("path", path).Warn("gateway request failed")
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnreachable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logrus.WithFields(logrus.Fields{"path": path, "status": resp.StatusCode}).Warn("gateway returned non-2xx")
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnreachable, resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnreachable, err)
	}

	raw := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	_ = dec.Decode(&raw)
	return raw, nil
}

// flag accepts true/false, 0/1 and their string forms.
type flag bool

func (f *flag) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	switch strings.ToLower(s) {
	case "", "null", "false", "0":
		*f = false
	case "true", "1":
		*f = true
	default:
		return fmt.Errorf("invalid error flag %q", s)
	}
	return nil
}

// literal keeps a JSON scalar as text. Numbers keep every digit, which
// matters for long numeric transaction ids.
type literal string

func (l *literal) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = literal(s)
		return nil
	}
	if string(data) == "null" {
		*l = ""
		return nil
	}
	*l = literal(data)
	return nil
}
