package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourism_marketplace/config"
)

func TestNewMailerDisabledWithoutSMTP(t *testing.T) {
	assert.Nil(t, NewMailer(config.Config{}))
	assert.NotNil(t, NewMailer(config.Config{SMTPHost: "smtp.example.com", SMTPPort: 587, SMTPFrom: "tickets@example.com"}))
}

func TestRenderTicketMail(t *testing.T) {
	html, err := RenderTicketMail(TicketMailData{
		BuyerName:      "Ana",
		AttractionName: "Salto <Cristal>",
		TransactionID:  "TX-9",
		Total:          "40.00",
		Tickets: []TicketMailItem{
			{Code: "AB12CD34EF", Sector: "Adult", ValidFor: "2026-10-20", Price: "20.00"},
			{Code: "ZX98YW76VU", Sector: "Adult", ValidFor: "2026-10-20", Price: "20.00"},
		},
	})

	require.NoError(t, err)
	assert.Contains(t, html, "Ana")
	assert.Contains(t, html, "AB12CD34EF")
	assert.Contains(t, html, "ZX98YW76VU")
	assert.Contains(t, html, "Salto &lt;Cristal&gt;")
}

func TestWelcomeText(t *testing.T) {
	text := WelcomeText("Ana")
	assert.Contains(t, text, "Hello Ana,")
	assert.Contains(t, text, "account is ready")
}
