// Package dispatcher authenticates slash-command requests and routes them to registered commands.
package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/slack-go/slack"

	"github.com/morezero/slashbot/pkg/argparser"
	"github.com/morezero/slashbot/pkg/events"
	"github.com/morezero/slashbot/pkg/registry"
	"github.com/morezero/slashbot/pkg/response"
)

const logPrefix = "dispatcher:dispatch"

// InvalidTokenText is returned to requesters whose token does not match.
const InvalidTokenText = "Invalid Slack token"

// Dispatcher routes slash-command requests to registry commands.
type Dispatcher struct {
	registry  *registry.Registry
	tokens    []string
	publisher events.EventPublisher
	timeout   time.Duration
}

// NewDispatcherParams holds parameters for NewDispatcher.
type NewDispatcherParams struct {
	Registry *registry.Registry
	// Tokens lists the accepted shared secrets. With none, every request is rejected.
	Tokens    []string
	Publisher events.EventPublisher
	// Timeout bounds each handler call; zero leaves the caller's context as is.
	Timeout time.Duration
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(params NewDispatcherParams) *Dispatcher {
	reg := params.Registry
	if reg == nil {
		reg = registry.NewRegistry()
	}
	pub := params.Publisher
	if pub == nil {
		pub = &events.NoOpPublisher{}
	}
	var tokens []string
	for _, t := range params.Tokens {
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return &Dispatcher{
		registry:  reg,
		tokens:    tokens,
		publisher: pub,
		timeout:   params.Timeout,
	}
}

// Registry returns the registry the dispatcher routes to.
func (d *Dispatcher) Registry() *registry.Registry {
	return d.registry
}

// Dispatch runs a single request to completion. User-facing failures (bad token,
// unknown command, missing arguments) come back as responses; only handler
// errors are returned as errors, unchanged.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd slack.SlashCommand) (response.Response, error) {
	start := time.Now()
	event := &events.CommandInvokedEvent{
		RequestID: uuid.NewString(),
		UserID:    cmd.UserID,
		UserName:  cmd.UserName,
		ChannelID: cmd.ChannelID,
		TeamID:    cmd.TeamID,
	}

	if !d.authenticate(cmd) {
		slog.Warn(fmt.Sprintf("%s - rejected request with invalid token user=%s team=%s", logPrefix, cmd.UserID, cmd.TeamID))
		event.Outcome = events.OutcomeUnauthorized
		d.publish(ctx, event, start)
		return response.EphemeralText(InvalidTokenText), nil
	}

	name, args := argparser.Split(cmd.Text)
	event.Command = name
	slog.Debug(fmt.Sprintf("%s - command=%s args=%d user=%s", logPrefix, name, len(args), cmd.UserName))

	if name == registry.HelpCommand {
		return d.help(ctx, event, start), nil
	}
	def, ok := d.registry.Lookup(name)
	if !ok {
		return d.help(ctx, event, start), nil
	}

	aligned, ok := argparser.Align(def.Params, args)
	if !ok {
		slog.Debug(fmt.Sprintf("%s - command=%s expected %d args, got %d", logPrefix, name, len(def.Params), len(args)))
		return d.help(ctx, event, start), nil
	}
	event.Args = aligned

	inv := registry.InvocationContext{
		RequesterName: cmd.UserName,
		RequesterID:   cmd.UserID,
		ChannelID:     cmd.ChannelID,
		TeamID:        cmd.TeamID,
		Args:          aligned,
	}

	resp, err := d.invoke(ctx, def.Handler, inv)
	if err != nil {
		event.Outcome = events.OutcomeHandlerError
		event.Error = err.Error()
		d.publish(ctx, event, start)
		return response.Response{}, err
	}
	event.Outcome = events.OutcomeInvoked
	d.publish(ctx, event, start)
	return resp, nil
}

// Route dispatches cmd and reports the outcome to done exactly once.
func (d *Dispatcher) Route(ctx context.Context, cmd slack.SlashCommand, done Completion) {
	done = Once(done)
	resp, err := d.Dispatch(ctx, cmd)
	if err != nil {
		done.Done(err, nil)
		return
	}
	done.Done(nil, &resp)
}

func (d *Dispatcher) authenticate(cmd slack.SlashCommand) bool {
	if cmd.Token == "" {
		return false
	}
	return cmd.ValidateToken(d.tokens...)
}

func (d *Dispatcher) invoke(ctx context.Context, h registry.HandlerFunc, inv registry.InvocationContext) (response.Response, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	return h(ctx, inv)
}

func (d *Dispatcher) help(ctx context.Context, event *events.CommandInvokedEvent, start time.Time) response.Response {
	event.Outcome = events.OutcomeHelp
	d.publish(ctx, event, start)
	return d.registry.RenderHelp()
}

func (d *Dispatcher) publish(ctx context.Context, event *events.CommandInvokedEvent, start time.Time) {
	event.DurationMs = time.Since(start).Milliseconds()
	event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	if err := d.publisher.PublishInvoked(ctx, event); err != nil {
		slog.Error(fmt.Sprintf("%s - failed to publish invocation event: %v", logPrefix, err))
	}
}
