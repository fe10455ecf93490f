package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"tourism_marketplace/config"
)

type TicketMailItem struct {
	Code     string
	Sector   string
	ValidFor string
	Price    string
	Payload  string
}

// TicketMailData feeds the purchase confirmation template.
type TicketMailData struct {
	To             string
	BuyerName      string
	AttractionName string
	TransactionID  string
	Total          string
	Tickets        []TicketMailItem
}

var ticketMailTemplate = template.Must(template.New("tickets").Parse(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif">
<h2>Thank you for your purchase{{if .BuyerName}}, {{.BuyerName}}{{end}}!</h2>
<p>Transaction <strong>{{.TransactionID}}</strong> &middot; total {{.Total}}</p>
<table cellpadding="6" border="1" style="border-collapse:collapse">
<tr><th>Code</th><th>Attraction</th><th>Sector</th><th>Valid for</th><th>Price</th></tr>
{{range .Tickets}}<tr><td>{{.Code}}</td><td>{{$.AttractionName}}</td><td>{{.Sector}}</td><td>{{.ValidFor}}</td><td>{{.Price}}</td></tr>
{{end}}</table>
<p>Each ticket's QR code is attached. Show it at the entrance on the valid date.</p>
</body></html>`))

type Mailer struct {
	from   string
	dialer *gomail.Dialer
}

// NewMailer returns nil when SMTP is not configured.
func NewMailer(cfg config.Config) *Mailer {
	if !cfg.SMTPEnabled() {
		return nil
	}
	return &Mailer{
		from:   cfg.SMTPFrom,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
	}
}

func RenderTicketMail(data TicketMailData) (string, error) {
	var body bytes.Buffer
	if err := ticketMailTemplate.Execute(&body, data); err != nil {
		return "", fmt.Errorf("render ticket mail: %w", err)
	}
	return body.String(), nil
}

// SendTickets builds the confirmation mail with one QR PNG per ticket.
func (m *Mailer) SendTickets(data TicketMailData) error {
	html, err := RenderTicketMail(data)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", data.To)
	msg.SetHeader("Subject", "Your tickets - "+data.AttractionName)
	msg.SetBody("text/html", html)

	for _, ticket := range data.Tickets {
		qrBytes, err := GenerateQRCode(ticket.Payload, TicketQRSize)
		if err != nil {
			logrus.WithError(err).WithField("ticket_code", ticket.Code).Warn("could not render ticket QR")
			continue
		}
		filename := fmt.Sprintf("ticket_%s.png", ticket.Code)
		msg.Attach(filename, gomail.Rename(filename), gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := io.Copy(w, bytes.NewReader(qrBytes))
			return err
		}))
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send ticket mail to %s: %w", data.To, err)
	}
	logrus.WithFields(logrus.Fields{"to": data.To, "tickets": len(data.Tickets)}).Info("ticket mail sent")
	return nil
}

// WelcomeText is the plain-text body sent after registration.
func WelcomeText(name string) string {
	return fmt.Sprintf("Hello %s,\n\nYour account is ready. Browse attractions and buy your tickets from the app.\n\nSee you soon!\n", name)
}

// SendWelcome sends the plain-text greeting to a newly registered user.
func (m *Mailer) SendWelcome(to, name string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = "Welcome to the tourism marketplace"
	e.Text = []byte(WelcomeText(name))

	var auth smtp.Auth
	if m.dialer.Username != "" {
		auth = smtp.PlainAuth("", m.dialer.Username, m.dialer.Password, m.dialer.Host)
	}
	if err := e.Send(fmt.Sprintf("%s:%d", m.dialer.Host, m.dialer.Port), auth); err != nil {
		return fmt.Errorf("send welcome mail to %s: %w", to, err)
	}
	logrus.WithField("to", to).Info("welcome mail sent")
	return nil
}
