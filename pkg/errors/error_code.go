package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidRequest       ErrorCode = 102
	ErrCodeInvalidFrequency     ErrorCode = 103
	ErrCodeInvalidDateRange     ErrorCode = 104
	ErrCodeMissingContFutSpec   ErrorCode = 105
	ErrCodeInvalidRolloverSpec  ErrorCode = 106

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound       ErrorCode = 200
	ErrCodeInstrumentNotFound ErrorCode = 201
	ErrCodeNoContractsFound   ErrorCode = 202
	ErrCodeCacheFailed        ErrorCode = 203

	// Routing/Provider errors (300-399)
	ErrCodeNoSuchDataSource       ErrorCode = 300
	ErrCodeDataSourceNotConnected ErrorCode = 301
	ErrCodeProviderRequestFailed  ErrorCode = 302
	ErrCodeProviderReplyFailed    ErrorCode = 303

	// Continuous-future errors (400-499)
	ErrCodeContractSelectionFailed ErrorCode = 400
	ErrCodeStitchFailed            ErrorCode = 401
	ErrCodeFrontContractFailed     ErrorCode = 402

	// Invariant violations (900-999). These indicate bookkeeping corruption
	// rather than a data problem and are treated as fatal.
	ErrCodeUnknownCorrelationID ErrorCode = 900
	ErrCodeLegCounterUnderflow  ErrorCode = 901
	ErrCodeBufferRefUnderflow   ErrorCode = 902
)
