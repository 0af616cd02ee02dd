package dispatcher

import "github.com/morezero/slashbot/pkg/response"

// Reply is the JSON envelope sent back over COMMS for a dispatched request.
type Reply struct {
	Ok       bool               `json:"ok"`
	Response *response.Response `json:"response,omitempty"`
	Error    *ErrorDetail       `json:"error,omitempty"`
}

// ErrorDetail holds structured error information.
type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// Reply error codes.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeHandlerError   = "HANDLER_ERROR"
)

// NewReply builds the envelope for a Dispatch result.
func NewReply(resp response.Response, err error) *Reply {
	if err != nil {
		return ErrorReply(CodeHandlerError, err.Error())
	}
	return &Reply{Ok: true, Response: &resp}
}

// ErrorReply builds a failed envelope.
func ErrorReply(code, message string) *Reply {
	return &Reply{
		Ok: false,
		Error: &ErrorDetail{
			Code:      code,
			Message:   message,
			Retryable: false,
		},
	}
}
