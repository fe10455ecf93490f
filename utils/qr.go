package utils

import (
	"errors"

	"github.com/skip2/go-qrcode"
)

// TicketQRSize is the PNG edge for ticket codes in mails and on the API.
const TicketQRSize = 256

var ErrEmptyQRContent = errors.New("qr content is empty")

// GenerateQRCode encodes a signed ticket payload as a size x size PNG at the
// high recovery level. A non-positive size falls back to TicketQRSize.
func GenerateQRCode(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, ErrEmptyQRContent
	}
	if size <= 0 {
		size = TicketQRSize
	}
	return qrcode.Encode(content, qrcode.High, size)
}
