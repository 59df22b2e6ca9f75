package errors

var (
	ErrAccountNotFound = &DomainError{
		Code:    "ACCOUNT_NOT_FOUND",
		Message: "account not found",
	}
	ErrAccountAlreadyExists = &DomainError{
		Code:    "ACCOUNT_ALREADY_EXISTS",
		Message: "account already exists for customer and currency",
	}
	ErrAccountNotActive = &DomainError{
		Code:    "ACCOUNT_NOT_ACTIVE",
		Message: "account is not active",
	}
	ErrCurrencyMismatch = &DomainError{
		Code:    "CURRENCY_MISMATCH",
		Message: "currency does not match account currency",
	}
	ErrInsufficientBalance = &DomainError{
		Code:    "INSUFFICIENT_BALANCE",
		Message: "insufficient account balance",
	}
	// ErrTransferIncomplete means the debit leg committed and the credit leg
	// did not. The funds stay debited until the caller compensates.
	ErrTransferIncomplete = &DomainError{
		Code:    "TRANSFER_INCOMPLETE",
		Message: "sender debited but receiver not credited",
	}
)
