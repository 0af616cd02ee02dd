package manifest

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/morezero/slashbot/pkg/registry"
	"github.com/morezero/slashbot/pkg/response"
)

// Registrar accepts command registrations; *slashbot.Bot satisfies it.
type Registrar interface {
	AddCommand(signature, description string, handler registry.HandlerFunc) error
}

// Install registers every command in m. It stops at the first failure.
func Install(r Registrar, m *Manifest) error {
	for i, spec := range m.Commands {
		handler, err := spec.Handler()
		if err != nil {
			return fmt.Errorf("%s - command %d (%q): %w", logPrefix, i, spec.Usage, err)
		}
		if err := r.AddCommand(spec.Usage, spec.Description, handler); err != nil {
			return fmt.Errorf("%s - command %d (%q): %w", logPrefix, i, spec.Usage, err)
		}
	}
	return nil
}

// Handler compiles the reply template into a command handler.
func (s CommandSpec) Handler() (registry.HandlerFunc, error) {
	visibility, err := parseVisibility(s.Visibility)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(s.Usage).Option("missingkey=error").Parse(s.Reply)
	if err != nil {
		return nil, fmt.Errorf("invalid reply template: %w", err)
	}

	return func(_ context.Context, inv registry.InvocationContext) (response.Response, error) {
		var buf bytes.Buffer
		data := ReplyData{
			User:    inv.RequesterName,
			UserID:  inv.RequesterID,
			Channel: inv.ChannelID,
			Args:    inv.Args,
		}
		if err := tmpl.Execute(&buf, data); err != nil {
			return response.Response{}, fmt.Errorf("render reply: %w", err)
		}
		return response.BuildText(visibility, buf.String()), nil
	}, nil
}

func parseVisibility(v string) (response.Visibility, error) {
	switch response.Visibility(v) {
	case "", response.Ephemeral:
		return response.Ephemeral, nil
	case response.InChannel:
		return response.InChannel, nil
	default:
		return "", fmt.Errorf("unknown visibility %q", v)
	}
}
