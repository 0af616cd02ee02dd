// Package registry holds the set of slash commands a bot answers to.
package registry

import (
	"context"
	"strings"

	"github.com/morezero/slashbot/pkg/response"
)

// InvocationContext is what a handler receives for one request.
type InvocationContext struct {
	RequesterName string
	RequesterID   string
	ChannelID     string
	TeamID        string
	// Args holds the aligned arguments, one per declared parameter.
	Args []string
}

// Arg returns the i-th argument, or "" when out of range.
func (c InvocationContext) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// HandlerFunc runs a command. A returned error is passed to the transport unchanged.
type HandlerFunc func(ctx context.Context, inv InvocationContext) (response.Response, error)

// Command is a registered command definition.
type Command struct {
	Name        string
	Params      []string
	Description string
	Handler     HandlerFunc
}

// Usage renders the command name followed by its parameter labels.
func (c Command) Usage() string {
	if len(c.Params) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Params, " ")
}

// RegistryError is a structured error from the registry.
type RegistryError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *RegistryError) Error() string {
	return e.Code + ": " + e.Message
}

// NewRegistryError creates a new RegistryError.
func NewRegistryError(code, message string) *RegistryError {
	return &RegistryError{Code: code, Message: message}
}

// Error codes.
const (
	CodeConfiguration = "CONFIGURATION_ERROR"
	CodeNotFound      = "NOT_FOUND"
)
