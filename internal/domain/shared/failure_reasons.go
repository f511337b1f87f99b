package shared

// FailureReason defines why an installment request was dead-lettered
type FailureReason string

const (
	FailureReasonMalformedMessage  FailureReason = "MALFORMED_MESSAGE"
	FailureReasonValidationFailed  FailureReason = "VALIDATION_FAILED"
	FailureReasonPartialSeries     FailureReason = "PARTIAL_SERIES" // Some installments stayed committed
	FailureReasonSeriesRolledBack  FailureReason = "SERIES_ROLLED_BACK"
	FailureReasonPersistenceFailed FailureReason = "PERSISTENCE_FAILED"
	FailureReasonUnknownError      FailureReason = "UNKNOWN_ERROR"
)
