package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourism_marketplace/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:   srv.URL,
		User:      "merchant",
		Password:  "secret",
		ReturnURL: "https://example.com/payment/response",
		Timeout:   2 * time.Second,
	})
}

func TestMapStatus(t *testing.T) {
	cases := map[int]model.TransactionStatus{
		0:  model.TransactionAuthorized,
		1:  model.TransactionRejected,
		2:  model.TransactionFraud,
		3:  model.TransactionTechnicalError,
		4:  model.TransactionInsufficientFunds,
		5:  model.TransactionRejectedByBank,
		6:  model.TransactionHonorIssue,
		7:  model.TransactionRetained,
		8:  model.TransactionPending,
		9:  model.TransactionPending,
		-1: model.TransactionPending,
		42: model.TransactionPending,
	}
	for code, want := range cases {
		assert.Equal(t, want, MapStatus(code), "code %d", code)
	}
}

func TestRequestPayment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/solicitud_pago", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "merchant", user)
		assert.Equal(t, "secret", pass)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "40.00", body["monto"])
		assert.Equal(t, "PYG", body["moneda"])
		assert.Equal(t, "INT-1", body["id_interno"])
		assert.Equal(t, "https://example.com/payment/response", body["url_retorno"])

		_, _ = w.Write([]byte(`{"error":false,"id_transaccion":123456789012345678901,"url":"https://pay.example.com/checkout/abc"}`))
	})

	res, err := client.RequestPayment(context.Background(), PaymentDetails{
		InternalCode: "INT-1",
		Amount:       decimal.NewFromInt(40),
		Currency:     "PYG",
		Description:  "tickets",
	})

	require.NoError(t, err)
	assert.Equal(t, "123456789012345678901", res.GatewayTransactionID, "id must be kept digit-exact")
	assert.Equal(t, "https://pay.example.com/checkout/abc", res.RedirectURL)
}

func TestRequestPaymentGatewayError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":1,"mensaje":"comercio invalido"}`))
	})

	_, err := client.RequestPayment(context.Background(), PaymentDetails{Amount: decimal.NewFromInt(1)})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreachable))
	assert.Contains(t, err.Error(), "comercio invalido")
}

func TestRequestPaymentNon2xx(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.RequestPayment(context.Background(), PaymentDetails{Amount: decimal.NewFromInt(1)})

	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestConsultTransaction(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/consulta_transaccion", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "TX-ABC-000123", body["id_transaccion"])

		_, _ = w.Write([]byte(`{
			"error": false,
			"estatus": 0,
			"id_transaccion": "TX-ABC-000123",
			"monto": "40.00",
			"moneda": "PYG",
			"codigo_autorizacion": "A1B2",
			"tarjeta": {"marca": "VISA", "ultimos_digitos": "4242"}
		}`))
	})

	payload, err := client.ConsultTransaction(context.Background(), "TX-ABC-000123")

	require.NoError(t, err)
	assert.Equal(t, model.TransactionAuthorized, payload.Status)
	assert.Equal(t, 0, payload.Code)
	require.NotNil(t, payload.Amount)
	assert.True(t, payload.Amount.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, "A1B2", payload.AuthorizationCode)
	require.NotNil(t, payload.Card)
	assert.Equal(t, "4242", payload.Card.LastDigits)
	assert.Equal(t, "TX-ABC-000123", payload.GatewayTransactionID)
}

func TestConsultTransactionStatusAsString(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"0","estatus":"4"}`))
	})

	payload, err := client.ConsultTransaction(context.Background(), "1")

	require.NoError(t, err)
	assert.Equal(t, model.TransactionInsufficientFunds, payload.Status)
	assert.Nil(t, payload.Amount)
}

func TestConsultTransactionMissingStatusIsPending(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":false}`))
	})

	payload, err := client.ConsultTransaction(context.Background(), "1")

	require.NoError(t, err)
	assert.Equal(t, model.TransactionPending, payload.Status)
}

func TestConsultTransactionUnreachable(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond})

	_, err := client.ConsultTransaction(context.Background(), "1")

	assert.ErrorIs(t, err, ErrUnreachable)
}
