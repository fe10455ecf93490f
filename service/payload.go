package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"tourism_marketplace/constants"
	"tourism_marketplace/model"
)

const signatureLength = 16

// PayloadSigner produces and checks the string printed in the ticket QR code:
// base64(JSON{code,id,timestamp}) + "." + first 16 hex chars of sha256(base64 + secret).
type PayloadSigner struct {
	secret string
	now    Clock
}

func NewPayloadSigner(secret string) *PayloadSigner {
	return &PayloadSigner{secret: secret, now: time.Now}
}

func (p *PayloadSigner) Encrypt(ticket model.Ticket) (string, error) {
	raw, err := json.Marshal(model.TicketPayload{
		Code:      ticket.Code,
		ID:        ticket.ID,
		Timestamp: p.now().UnixMilli(),
	})
	if err != nil {
		return "", Internal("encode ticket payload", err)
	}
	data := base64.StdEncoding.EncodeToString(raw)
	return data + "." + p.Sign(data), nil
}

func (p *PayloadSigner) Sign(data string) string {
	sum := sha256.Sum256([]byte(data + p.secret))
	return hex.EncodeToString(sum[:])[:signatureLength]
}

// Decode checks the signature and returns the embedded payload.
func (p *PayloadSigner) Decode(payload string) (model.TicketPayload, error) {
	idx := strings.LastIndex(payload, ".")
	if idx <= 0 || idx == len(payload)-1 {
		return model.TicketPayload{}, BadRequest("invalid ticket payload")
	}
	data, signature := payload[:idx], payload[idx+1:]

	expected := p.Sign(data)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return model.TicketPayload{}, BadRequest(constants.TICKET_TAMPERED)
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return model.TicketPayload{}, BadRequest("invalid ticket payload encoding")
	}

	var decoded struct {
		Code      *string `json:"code"`
		ID        *uint   `json:"id"`
		Timestamp int64   `json:"timestamp"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return model.TicketPayload{}, BadRequest("invalid ticket payload content")
	}
	if decoded.Code == nil || *decoded.Code == "" || decoded.ID == nil || *decoded.ID == 0 {
		return model.TicketPayload{}, BadRequest("incomplete ticket payload")
	}
	return model.TicketPayload{Code: *decoded.Code, ID: *decoded.ID, Timestamp: decoded.Timestamp}, nil
}
