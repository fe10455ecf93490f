package constants

const (
	ROLE_ADMIN    = "ADMIN"
	ROLE_STAFF    = "STAFF"
	ROLE_CUSTOMER = "CUSTOMER"
)

// Ticket statuses
const (
	TICKET_ACTIVE    = "ACTIVE"
	TICKET_USED      = "USED"
	TICKET_CANCELLED = "CANCELLED"
	TICKET_EXPIRED   = "EXPIRED"
)

const TICKET_CODE_LENGTH = 10
