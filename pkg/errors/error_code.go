package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown  ErrorCode = 1
	ErrCodeInternal ErrorCode = 2

	// Configuration errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeMissingParameter     ErrorCode = 102
	ErrCodeInvalidThreshold     ErrorCode = 103
	ErrCodeInvalidWindow        ErrorCode = 104
	ErrCodeInvalidTimezone      ErrorCode = 105
	ErrCodeInvalidDate          ErrorCode = 106
	ErrCodeUnknownModel         ErrorCode = 107
	ErrCodeFeatureCount         ErrorCode = 108

	// Data errors (200-299)
	ErrCodeDataNotFound        ErrorCode = 200
	ErrCodeDataBounds          ErrorCode = 201
	ErrCodeEmptyDataset        ErrorCode = 202
	ErrCodeUnorderedTimestamps ErrorCode = 203
	ErrCodeQueryFailed         ErrorCode = 204

	// Feature errors (300-399)
	ErrCodeFeatureNotFound      ErrorCode = 300
	ErrCodeFeatureAlreadyExists ErrorCode = 301
	ErrCodeFeatureCalculation   ErrorCode = 302

	// Model errors (400-499)
	ErrCodeModelFit          ErrorCode = 400
	ErrCodeModelNotFitted    ErrorCode = 401
	ErrCodeDimensionMismatch ErrorCode = 402

	// Run errors (500-599)
	ErrCodeRunFailed      ErrorCode = 500
	ErrCodeNoCompletedRun ErrorCode = 501

	// Journal errors (600-699)
	ErrCodeJournalInit  ErrorCode = 600
	ErrCodeJournalWrite ErrorCode = 601
	ErrCodeJournalQuery ErrorCode = 602
)
