package handlers

// Error codes carried in ErrorResponse.Code. Clients branch on these, not on
// the message text, so a code never changes meaning once published.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeUnavailable      = "unavailable"

	// generation
	ErrCodeGenerationFailed = "generation_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeUpdateFailed     = "update_failed"

	// scans and provider callbacks
	ErrCodeScanFailed    = "scan_failed"
	ErrCodeWebhookFailed = "webhook_failed"
)
