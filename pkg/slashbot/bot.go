// Package slashbot is the entry point for building a slash-command bot: register
// commands, then mount the bot as an HTTP handler or a raw event router.
package slashbot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"github.com/morezero/slashbot/pkg/commsutil"
	"github.com/morezero/slashbot/pkg/dispatcher"
	"github.com/morezero/slashbot/pkg/events"
	"github.com/morezero/slashbot/pkg/registry"
	"github.com/morezero/slashbot/pkg/response"
)

const logPrefix = "slashbot:bot"

// ErrMalformedEvent is reported when an event body is not a decodable slash-command payload.
var ErrMalformedEvent = errors.New("malformed slash command")

// Options configures a Bot.
type Options struct {
	// Tokens are the accepted verification tokens.
	Tokens    []string
	Publisher events.EventPublisher
	Timeout   time.Duration
}

// Bot couples a command registry with the dispatcher that serves it.
type Bot struct {
	registry   *registry.Registry
	dispatcher *dispatcher.Dispatcher
}

// New creates a Bot with an empty registry.
func New(opts Options) *Bot {
	reg := registry.NewRegistry()
	return &Bot{
		registry: reg,
		dispatcher: dispatcher.NewDispatcher(dispatcher.NewDispatcherParams{
			Registry:  reg,
			Tokens:    opts.Tokens,
			Publisher: opts.Publisher,
			Timeout:   opts.Timeout,
		}),
	}
}

// AddCommand registers a command. signature is the command name optionally
// followed by parameter labels, e.g. "greet name".
func (b *Bot) AddCommand(signature, description string, handler registry.HandlerFunc) error {
	fields := strings.Fields(signature)
	if len(fields) == 0 {
		return registry.NewRegistryError(registry.CodeConfiguration, "command signature is empty")
	}
	return b.registry.Register(fields[0], fields[1:], description, handler)
}

// Registry returns the bot's command registry.
func (b *Bot) Registry() *registry.Registry { return b.registry }

// Dispatcher returns the bot's dispatcher.
func (b *Bot) Dispatcher() *dispatcher.Dispatcher { return b.dispatcher }

// InChannelResponse makes r visible to the whole channel.
func (b *Bot) InChannelResponse(r response.Response) response.Response {
	return response.InChannelResponse(r)
}

// EphemeralResponse makes r visible only to the requester.
func (b *Bot) EphemeralResponse(r response.Response) response.Response {
	return response.EphemeralResponse(r)
}

// Event is a raw inbound request as delivered by an event-style transport.
type Event struct {
	// Body is the form-encoded slash-command payload.
	Body string `json:"body"`
}

// RouterFunc handles one Event and reports the result through done.
type RouterFunc func(ctx context.Context, event Event, done dispatcher.Completion)

// BuildRouter returns a RouterFunc bound to this bot. done is called exactly once.
func (b *Bot) BuildRouter() RouterFunc {
	return func(ctx context.Context, event Event, done dispatcher.Completion) {
		done = dispatcher.Once(done)
		cmd, err := commsutil.DecodeSlashCommand([]byte(event.Body))
		if err != nil {
			done.Done(fmt.Errorf("%s - %w: %v", logPrefix, ErrMalformedEvent, err), nil)
			return
		}
		b.dispatcher.Route(ctx, cmd, done)
	}
}

// ServeHTTP answers a Slack slash-command webhook.
func (b *Bot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		slog.Warn(fmt.Sprintf("%s - failed to parse slash command: %v", logPrefix, err))
		http.Error(w, ErrMalformedEvent.Error(), http.StatusBadRequest)
		return
	}

	resp, err := b.dispatcher.Dispatch(r.Context(), cmd)
	if err != nil {
		slog.Error(fmt.Sprintf("%s - command failed: %v", logPrefix, err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error(fmt.Sprintf("%s - failed to encode response: %v", logPrefix, err))
	}
}
