package registry

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode"

	"github.com/slack-go/slack"

	"github.com/morezero/slashbot/pkg/response"
)

const logPrefix = "registry:registry"

const (
	// HelpCommand is reserved; it always renders the help listing.
	HelpCommand = "help"

	helpHeader = "Available commands:"
	helpFooter = "help: display this help message"
)

// Registry maps command names to definitions. It is normally filled at startup
// and only read afterwards, but registration stays safe at any time.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
	order    []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds or replaces the command called name. A replaced command keeps
// its position in the help listing.
func (r *Registry) Register(name string, params []string, description string, handler HandlerFunc) error {
	if err := validateName(name); err != nil {
		return err
	}
	if name == HelpCommand {
		return NewRegistryError(CodeConfiguration, fmt.Sprintf("command name %q is reserved", HelpCommand))
	}
	for _, p := range params {
		if p == "" || strings.IndexFunc(p, unicode.IsSpace) >= 0 {
			return NewRegistryError(CodeConfiguration, fmt.Sprintf("command %q: invalid parameter label %q", name, p))
		}
	}
	if handler == nil {
		return NewRegistryError(CodeConfiguration, fmt.Sprintf("command %q: handler is nil", name))
	}

	cmd := Command{
		Name:        name,
		Params:      append([]string(nil), params...),
		Description: description,
		Handler:     handler,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.commands[name]; exists {
		slog.Debug(fmt.Sprintf("%s - replacing command %s", logPrefix, name))
	} else {
		r.order = append(r.order, name)
	}
	r.commands[name] = cmd
	return nil
}

func validateName(name string) error {
	if name == "" {
		return NewRegistryError(CodeConfiguration, "command name is empty")
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return NewRegistryError(CodeConfiguration, fmt.Sprintf("command name %q contains whitespace", name))
	}
	return nil
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	if !ok {
		return Command{}, false
	}
	cmd.Params = append([]string(nil), cmd.Params...)
	return cmd, true
}

// Describe returns the command registered under name or a NOT_FOUND error.
func (r *Registry) Describe(name string) (Command, error) {
	cmd, ok := r.Lookup(name)
	if !ok {
		return Command{}, NewRegistryError(CodeNotFound, fmt.Sprintf("command %q is not registered", name))
	}
	return cmd, nil
}

// List returns all commands in registration order.
func (r *Registry) List() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		cmd := r.commands[name]
		cmd.Params = append([]string(nil), cmd.Params...)
		out = append(out, cmd)
	}
	return out
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// HelpLines returns one line per command plus the trailing help line.
func (r *Registry) HelpLines() []string {
	cmds := r.List()
	lines := make([]string, 0, len(cmds)+1)
	for _, cmd := range cmds {
		lines = append(lines, cmd.Usage()+": "+cmd.Description)
	}
	return append(lines, helpFooter)
}

// RenderHelp builds the ephemeral help listing.
func (r *Registry) RenderHelp() response.Response {
	return response.EphemeralResponse(response.Response{
		Text: helpHeader,
		Attachments: []slack.Attachment{
			{Text: strings.Join(r.HelpLines(), "\n")},
		},
	})
}
