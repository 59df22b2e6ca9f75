package validation

const (
	// Monetary values carry at most this many fractional digits.
	AmountScale = 2

	// String lengths
	MaxReferenceLength      = 64
	MaxIdempotencyKeyLength = 120
	MaxReasonLength         = 256
)
