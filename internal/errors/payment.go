package errors

var ErrPaymentNotFound = &DomainError{
	Code:    "PAYMENT_NOT_FOUND",
	Message: "payment process not found",
}
