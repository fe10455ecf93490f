package helper

import (
	"strings"

	"github.com/google/uuid"

	"tourism_marketplace/constants"
)

// NewTicketCode is a random uuid without dashes, upper-cased and cut to
// constants.TICKET_CODE_LENGTH characters.
func NewTicketCode() string {
	code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return code[:constants.TICKET_CODE_LENGTH]
}

// NewInternalCode is the merchant-side idempotency code sent to the gateway.
func NewInternalCode() string {
	return "TX-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}
