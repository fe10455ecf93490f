package constants

const (
	ERROR_INPUT              = "Invalid input data"
	ERROR_INTERNAL_ERROR     = "Internal server error"
	DATA_INPUT_IS_NOT_NUMBER = "Parameter must be a number"
	NOT_PERMISSION           = "You do not have permission for this action"
	MISSING_TOKEN            = "Missing token"
	INVALID_TOKEN            = "Invalid token"
	INVALID_CREDENTIALS      = "Invalid email or password"
	ACCOUNT_NOT_ACTIVE       = "Account is not active"
	EMAIL_ALREADY_USED       = "Email is already registered"

	TRANSACTION_NOT_AUTHORIZED = "transaction not authorized"
	TICKET_NOT_ACTIVE_USE      = "cannot use a ticket that is not active"
	TICKET_NOT_ACTIVE_CANCEL   = "cannot cancel a ticket that is not active"
	TICKET_TAMPERED            = "tampered ticket"
	GATEWAY_UNREACHABLE        = "could not reach gateway"
)
