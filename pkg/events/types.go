// Package events defines the invocation events a bot emits and the publishers that carry them.
package events

// Outcomes recorded on CommandInvokedEvent.
const (
	OutcomeInvoked      = "invoked"
	OutcomeHelp         = "help"
	OutcomeUnauthorized = "unauthorized"
	OutcomeHandlerError = "handler_error"
)

// CommandInvokedEvent is emitted once per dispatched request.
type CommandInvokedEvent struct {
	RequestID  string   `json:"requestId"`
	Command    string   `json:"command"`
	Args       []string `json:"args,omitempty"`
	UserID     string   `json:"userId,omitempty"`
	UserName   string   `json:"userName,omitempty"`
	ChannelID  string   `json:"channelId,omitempty"`
	TeamID     string   `json:"teamId,omitempty"`
	Outcome    string   `json:"outcome"`
	Error      string   `json:"error,omitempty"`
	DurationMs int64    `json:"durationMs"`
	Timestamp  string   `json:"timestamp"`
}
