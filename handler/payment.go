package handler

import (
	"bytes"
	"html/template"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"tourism_marketplace/model"
)

var paymentPage = template.Must(template.New("payment").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body{font-family:sans-serif;text-align:center;padding:40px 16px;color:#222}
.box{max-width:420px;margin:auto;padding:24px;border-radius:12px;border:1px solid #ddd}
.ok{color:#1b7f3b}.err{color:#b3261e}
a.btn{display:inline-block;margin-top:20px;padding:12px 24px;border-radius:8px;background:#0b57d0;color:#fff;text-decoration:none}
</style>
</head>
<body>
<div class="box">
<h1 class="{{if .Success}}ok{{else}}err{{end}}">{{.Title}}</h1>
<p>{{.Message}}</p>
{{if .TransactionID}}<p>Transaction: <strong>{{.TransactionID}}</strong></p>{{end}}
{{if .Tickets}}<p>{{.Tickets}} ticket(s) issued.</p>{{end}}
<a class="btn" href="{{.Link}}">Return to the app</a>
</div>
</body>
</html>`))

type paymentView struct {
	Title         string
	Message       string
	Success       bool
	TransactionID string
	Tickets       int
	Link          template.URL
}

func (h *Handler) deepLink(status, gatewayID string) template.URL {
	query := url.Values{}
	query.Set("status", status)
	if gatewayID != "" {
		query.Set("transactionId", gatewayID)
	}
	return template.URL(h.DeepLink + "?" + query.Encode())
}

func renderPayment(c *fiber.Ctx, status int, view paymentView) error {
	var buf bytes.Buffer
	if err := paymentPage.Execute(&buf, view); err != nil {
		logrus.WithError(err).Error("payment page render failed")
		return c.Status(fiber.StatusInternalServerError).SendString("payment page unavailable")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}

// PaymentResponse is where the gateway sends the buyer back. It reconciles
// the transaction and issues the tickets when the payment was authorized.
func (h *Handler) PaymentResponse(c *fiber.Ctx) error {
	gatewayID := c.Query("transactionId")
	if gatewayID == "" {
		return renderPayment(c, fiber.StatusBadRequest, paymentView{
			Title:   "Payment not found",
			Message: "The payment reference is missing.",
			Link:    h.deepLink("error", ""),
		})
	}

	trx, err := h.Transactions.Reconcile(c.Context(), gatewayID)
	if err != nil {
		logrus.WithError(err).WithField("transaction_id", gatewayID).Warn("payment response reconcile failed")
		return renderPayment(c, fiber.StatusOK, paymentView{
			Title:         "Payment pending",
			Message:       "We could not confirm your payment yet. Your tickets will appear in the app once it is confirmed.",
			TransactionID: gatewayID,
			Link:          h.deepLink("pending", gatewayID),
		})
	}

	switch trx.Status {
	case model.TransactionAuthorized:
		tickets, err := h.Tickets.IssueForTransaction(c.Context(), gatewayID)
		if err != nil {
			logrus.WithError(err).WithField("transaction_id", gatewayID).Error("ticket issuance after payment failed")
			return renderPayment(c, fiber.StatusOK, paymentView{
				Title:         "Payment received",
				Message:       "Your payment was approved but the tickets could not be issued. Please contact support.",
				TransactionID: gatewayID,
				Link:          h.deepLink("error", gatewayID),
			})
		}
		return renderPayment(c, fiber.StatusOK, paymentView{
			Title:         "Payment approved",
			Message:       "Your tickets are ready and were sent to your email.",
			Success:       true,
			TransactionID: gatewayID,
			Tickets:       len(tickets),
			Link:          h.deepLink("success", gatewayID),
		})
	case model.TransactionPending:
		return renderPayment(c, fiber.StatusOK, paymentView{
			Title:         "Payment pending",
			Message:       "The payment is still being processed.",
			TransactionID: gatewayID,
			Link:          h.deepLink("pending", gatewayID),
		})
	default:
		return renderPayment(c, fiber.StatusOK, paymentView{
			Title:         "Payment declined",
			Message:       "The payment was not approved (" + string(trx.Status) + ").",
			TransactionID: gatewayID,
			Link:          h.deepLink("error", gatewayID),
		})
	}
}
