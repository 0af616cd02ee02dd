package db

import "time"

// Invocation is a row in the command_invocations table.
type Invocation struct {
	ID         int64     `json:"id"`
	RequestID  string    `json:"request_id"`
	Command    string    `json:"command"`
	Args       []string  `json:"args"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	ChannelID  string    `json:"channel_id"`
	TeamID     string    `json:"team_id"`
	Outcome    string    `json:"outcome"`
	Error      *string   `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	Created    time.Time `json:"created"`
}

// RecordInvocationParams holds parameters for RecordInvocation.
type RecordInvocationParams struct {
	RequestID  string
	Command    string
	Args       []string
	UserID     string
	UserName   string
	ChannelID  string
	TeamID     string
	Outcome    string
	Error      *string
	DurationMs int64
	Created    time.Time
}

// ListInvocationsParams holds parameters for ListInvocations.
type ListInvocationsParams struct {
	Command string
	Outcome string
	Limit   int
}

// OutcomeCount is the number of invocations with a given outcome.
type OutcomeCount struct {
	Outcome string `json:"outcome"`
	Count   int    `json:"count"`
}
