// Package server orchestrates all components: bot, HTTP webhook, NATS transport, DB audit log, health.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	comms "github.com/nats-io/nats.go"
	"golang.org/x/time/rate"

	"github.com/morezero/slashbot/internal/config"
	"github.com/morezero/slashbot/pkg/commsutil"
	"github.com/morezero/slashbot/pkg/db"
	"github.com/morezero/slashbot/pkg/dispatcher"
	"github.com/morezero/slashbot/pkg/events"
	"github.com/morezero/slashbot/pkg/manifest"
	"github.com/morezero/slashbot/pkg/response"
	"github.com/morezero/slashbot/pkg/slashbot"
)

const logPrefix = "server:server"

// RegisterFunc adds the integrator's commands to a freshly built bot.
type RegisterFunc func(b *slashbot.Bot) error

// InvocationStore is the part of the audit log the HTTP surface reads.
type InvocationStore interface {
	Ping(ctx context.Context) error
	ListInvocations(ctx context.Context, params db.ListInvocationsParams) ([]db.Invocation, error)
}

// Server wires a bot to its transports.
type Server struct {
	cfg     *config.Config
	bot     *slashbot.Bot
	nc      *comms.Conn
	store   InvocationStore
	limiter *rate.Limiter
	router  slashbot.RouterFunc
}

// NewServerParams holds parameters for NewServer.
type NewServerParams struct {
	Config *config.Config
	Bot    *slashbot.Bot
	// Comms is optional; nil reports comms as disabled.
	Comms *comms.Conn
	// Store is optional; nil disables /invocations and reports the database as disabled.
	Store InvocationStore
}

// NewServer creates a Server. A positive RATE_LIMIT_RPS installs a webhook limiter.
func NewServer(params NewServerParams) *Server {
	s := &Server{
		cfg:    params.Config,
		bot:    params.Bot,
		nc:     params.Comms,
		store:  params.Store,
		router: params.Bot.BuildRouter(),
	}
	if params.Config.RateLimitRPS > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(params.Config.RateLimitRPS), params.Config.RateLimitBurst)
	}
	return s
}

// Router returns the HTTP handler for the webhook and the operational endpoints.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.With(s.rateLimit).Post(s.cfg.SlashCommandPath, s.bot.ServeHTTP)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Get("/commands", s.handleListCommands)
	r.Get("/commands/{name}", s.handleDescribeCommand)
	r.Get("/invocations", s.handleInvocations)
	r.Get("/", s.handleHome())
	return r
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			slog.Warn(fmt.Sprintf("%s - rate limit exceeded for %s", logPrefix, r.RemoteAddr))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HandleCommand decodes a raw form-encoded payload, dispatches it, and returns the reply envelope.
func (s *Server) HandleCommand(ctx context.Context, payload []byte) *dispatcher.Reply {
	var reply *dispatcher.Reply
	s.router(ctx, slashbot.Event{Body: string(payload)}, dispatcher.CompletionFunc(func(err error, resp *response.Response) {
		switch {
		case errors.Is(err, slashbot.ErrMalformedEvent):
			reply = dispatcher.ErrorReply(dispatcher.CodeInvalidRequest, "Failed to decode request")
		case err != nil:
			reply = dispatcher.NewReply(response.Response{}, err)
		default:
			reply = dispatcher.NewReply(*resp, nil)
		}
	}))
	return reply
}

// SubscribeCommands answers NATS requests on subject with dispatched replies.
func (s *Server) SubscribeCommands(ctx context.Context, subject string) (*comms.Subscription, error) {
	if s.nc == nil {
		return nil, fmt.Errorf("%s - comms connection not configured", logPrefix)
	}
	sub, err := s.nc.Subscribe(subject, func(msg *comms.Msg) {
		reply := s.HandleCommand(ctx, msg.Data)
		data, err := commsutil.EncodePayload(reply)
		if err != nil {
			slog.Error(fmt.Sprintf("%s - failed to encode reply: %v", logPrefix, err))
			return
		}
		if err := msg.Respond(data); err != nil {
			slog.Error(fmt.Sprintf("%s - failed to respond on %s: %v", logPrefix, subject, err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%s - failed to subscribe to %s: %w", logPrefix, subject, err)
	}
	slog.Info(fmt.Sprintf("%s - Subscribed to %s", logPrefix, subject))
	return sub, nil
}

// Run starts the server, blocks until shutdown signal, then cleans up.
func Run(register RegisterFunc) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("%s - failed to load config: %w", logPrefix, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	if err := cfg.ValidateForServe(); err != nil {
		return err
	}

	slog.Info(fmt.Sprintf("%s - Starting slashbot", logPrefix))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	publishers := events.MultiPublisher{}

	// Step 1: Connect to NATS (optional)
	var nc *comms.Conn
	if cfg.COMMSURL != "" {
		nc, err = commsutil.Connect(cfg.COMMSURL, cfg.COMMSName, commsutil.ConnectOpts{})
		if err != nil {
			return fmt.Errorf("%s - failed to connect to NATS: %w", logPrefix, err)
		}
		defer nc.Drain()
		slog.Info(fmt.Sprintf("%s - Connected to NATS at %s", logPrefix, cfg.COMMSURL))
		publishers = append(publishers, events.NewCommsPublisher(nc, &events.CommsPublisherOpts{Subject: cfg.EventSubject}))
	}

	// Step 2: Connect to database (optional)
	var store InvocationStore
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("%s - failed to connect to database: %w", logPrefix, err)
		}
		defer pool.Close()

		if cfg.RunMigrations {
			if err := migrate(ctx, pool, cfg.MigrationPath); err != nil {
				return err
			}
		}
		repo := db.NewRepository(pool)
		store = repo
		publishers = append(publishers, repo)
	}

	// Step 3: Build the bot and register commands
	bot := slashbot.New(slashbot.Options{
		Tokens:    cfg.SlackTokens,
		Publisher: publishers,
		Timeout:   cfg.RequestTimeout,
	})
	if register != nil {
		if err := register(bot); err != nil {
			return fmt.Errorf("%s - failed to register commands: %w", logPrefix, err)
		}
	}
	if cfg.CommandsFile != "" {
		m, err := manifest.LoadManifest(cfg.CommandsFile)
		if err != nil {
			return fmt.Errorf("%s - failed to load commands file: %w", logPrefix, err)
		}
		if err := manifest.Install(bot, m); err != nil {
			return fmt.Errorf("%s - failed to install commands file: %w", logPrefix, err)
		}
		slog.Info(fmt.Sprintf("%s - Installed %d commands from %s", logPrefix, len(m.Commands), cfg.CommandsFile))
	}
	slog.Info(fmt.Sprintf("%s - %d commands registered", logPrefix, bot.Registry().Len()))

	s := NewServer(NewServerParams{Config: cfg, Bot: bot, Comms: nc, Store: store})

	// Step 4: NATS request transport
	if nc != nil {
		sub, err := s.SubscribeCommands(ctx, cfg.CommandSubject)
		if err != nil {
			return err
		}
		defer sub.Unsubscribe()
	}

	// Step 5: HTTP
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info(fmt.Sprintf("%s - HTTP server listening on %s (commands at %s)", logPrefix, httpServer.Addr, cfg.SlashCommandPath))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error(fmt.Sprintf("%s - HTTP server error: %v", logPrefix, err))
		}
	}()

	slog.Info(fmt.Sprintf("%s - slashbot is ready", logPrefix))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info(fmt.Sprintf("%s - Received signal %s, shutting down", logPrefix, sig))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HealthCheckTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error(fmt.Sprintf("%s - HTTP shutdown: %v", logPrefix, err))
	}

	slog.Info(fmt.Sprintf("%s - Shutdown complete", logPrefix))
	return nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool, path string) error {
	migrations, err := db.LoadMigrationFiles(path)
	if err != nil {
		return fmt.Errorf("%s - failed to load migrations: %w", logPrefix, err)
	}
	if err := db.RunMigrations(ctx, pool, migrations); err != nil {
		return fmt.Errorf("%s - failed to run migrations: %w", logPrefix, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(fmt.Sprintf("%s - json encode: %v", logPrefix, err))
	}
}
