package dto

import apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the machine-readable code and, when known, the request id
// so a student can quote it to the support desk.
type ErrorBody struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
}

// NewErrorResponse maps a domain error to the response envelope.
func NewErrorResponse(err *apperrors.DomainError, requestID string) ErrorResponse {
	body := ErrorBody{Code: err.Code, Message: err.Message, RequestID: requestID}
	if len(err.Details) > 0 {
		body.Details = err.Details
	}
	return ErrorResponse{Error: body}
}
