package errors

var (
	ErrLimitDefinitionNotFound = &DomainError{
		Code:    "LIMIT_DEFINITION_NOT_FOUND",
		Message: "limit definition not found",
	}
	ErrLimitDefinitionExists = &DomainError{
		Code:    "LIMIT_DEFINITION_EXISTS",
		Message: "limit definition code already exists",
	}
)
