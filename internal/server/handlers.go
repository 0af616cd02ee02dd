package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	comms "github.com/nats-io/nats.go"

	"github.com/morezero/slashbot/pkg/db"
	"github.com/morezero/slashbot/pkg/registry"
)

// Health check states.
const (
	CheckOK       = "ok"
	CheckFailed   = "failed"
	CheckDisabled = "disabled"
)

// HealthOutput is the /health body.
type HealthOutput struct {
	Status    string       `json:"status"`
	Checks    HealthChecks `json:"checks"`
	Commands  int          `json:"commands"`
	Timestamp string       `json:"timestamp"`
}

// HealthChecks reports each optional dependency.
type HealthChecks struct {
	Database string `json:"database"`
	Comms    string `json:"comms"`
}

// Health checks the configured dependencies. Disabled dependencies do not make the bot unhealthy.
func (s *Server) Health(ctx context.Context) *HealthOutput {
	out := &HealthOutput{
		Status:    "healthy",
		Checks:    HealthChecks{Database: CheckDisabled, Comms: CheckDisabled},
		Commands:  s.bot.Registry().Len(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if s.store != nil {
		out.Checks.Database = CheckOK
		if err := s.store.Ping(ctx); err != nil {
			slog.Warn(fmt.Sprintf("%s - database health check failed: %v", logPrefix, err))
			out.Checks.Database = CheckFailed
		}
	}
	if s.nc != nil {
		out.Checks.Comms = CheckOK
		if s.nc.Status() != comms.CONNECTED {
			out.Checks.Comms = CheckFailed
		}
	}

	if out.Checks.Database == CheckFailed || out.Checks.Comms == CheckFailed {
		out.Status = "unhealthy"
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.HealthCheckTimeout)
	defer cancel()

	h := s.Health(ctx)
	status := http.StatusOK
	if h.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, h)
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// CommandView is the JSON form of a registered command.
type CommandView struct {
	Name        string   `json:"name"`
	Params      []string `json:"params"`
	Usage       string   `json:"usage"`
	Description string   `json:"description"`
}

func newCommandView(c registry.Command) CommandView {
	params := c.Params
	if params == nil {
		params = []string{}
	}
	return CommandView{Name: c.Name, Params: params, Usage: c.Usage(), Description: c.Description}
}

func (s *Server) handleListCommands(w http.ResponseWriter, _ *http.Request) {
	cmds := s.bot.Registry().List()
	out := make([]CommandView, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, newCommandView(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDescribeCommand(w http.ResponseWriter, r *http.Request) {
	cmd, err := s.bot.Registry().Describe(chi.URLParam(r, "name"))
	if err != nil {
		var regErr *registry.RegistryError
		if errors.As(err, &regErr) && regErr.Code == registry.CodeNotFound {
			writeJSON(w, http.StatusNotFound, regErr)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, newCommandView(cmd))
}

func (s *Server) handleInvocations(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "audit log not configured", http.StatusNotFound)
		return
	}

	params := db.ListInvocationsParams{
		Command: r.URL.Query().Get("command"),
		Outcome: r.URL.Query().Get("outcome"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "limit must be an integer", http.StatusBadRequest)
			return
		}
		params.Limit = limit
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.HealthCheckTimeout)
	defer cancel()

	list, err := s.store.ListInvocations(ctx, params)
	if err != nil {
		slog.Error(fmt.Sprintf("%s - list invocations: %v", logPrefix, err))
		http.Error(w, "failed to list invocations", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []db.Invocation{}
	}
	writeJSON(w, http.StatusOK, list)
}

// homePageTemplate is the HTML for the bot home page (white bg, black/blue text).
const homePageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Slash Commands</title>
  <style>
    * { box-sizing: border-box; }
    body { background: #fff; color: #000; font-family: system-ui, sans-serif; margin: 0; padding: 2rem; line-height: 1.5; }
    h1, h2 { color: #0066cc; }
    .status-healthy { color: #0066cc; font-weight: bold; }
    .status-unhealthy { color: #cc0000; font-weight: bold; }
    table { border-collapse: collapse; width: 100%; max-width: 900px; margin-top: 0.5rem; }
    th, td { text-align: left; padding: 0.5rem 0.75rem; border: 1px solid #ccc; }
    th { background: #f0f4f8; color: #0066cc; }
    code { font-family: ui-monospace, monospace; }
    section { margin-bottom: 2rem; }
    .error { color: #cc0000; }
  </style>
</head>
<body>
  <h1>Slash Commands</h1>

  <section>
    <h2>Health</h2>
    <p>Status: <span class="status-{{.Health.Status}}">{{.Health.Status}}</span></p>
    <p>Database: {{.Health.Checks.Database}} &middot; Comms: {{.Health.Checks.Comms}}</p>
    <p>Timestamp: {{.Health.Timestamp}}</p>
  </section>

  <section>
    <h2>Commands</h2>
    <table>
      <thead><tr><th>Usage</th><th>Description</th></tr></thead>
      <tbody>
        {{range .Commands}}
        <tr><td><code>{{.Usage}}</code></td><td>{{.Description}}</td></tr>
        {{end}}
        <tr><td><code>help</code></td><td>display this help message</td></tr>
      </tbody>
    </table>
  </section>

  {{if .ShowInvocations}}
  <section>
    <h2>Recent invocations</h2>
    {{if .InvocationsError}}
    <p class="error">Could not load invocations: {{.InvocationsError}}</p>
    {{else if not .Invocations}}
    <p>No invocations recorded.</p>
    {{else}}
    <table>
      <thead><tr><th>When</th><th>Command</th><th>User</th><th>Outcome</th><th>Duration</th></tr></thead>
      <tbody>
        {{range .Invocations}}
        <tr>
          <td>{{.Created.Format "2006-01-02 15:04:05"}}</td>
          <td>{{.Command}}</td>
          <td>{{.UserName}}</td>
          <td>{{.Outcome}}</td>
          <td>{{.DurationMs}} ms</td>
        </tr>
        {{end}}
      </tbody>
    </table>
    {{end}}
  </section>
  {{end}}
</body>
</html>
`

// homeData is the data passed to the home page template.
type homeData struct {
	Health           *HealthOutput
	Commands         []registry.Command
	ShowInvocations  bool
	Invocations      []db.Invocation
	InvocationsError string
}

// handleHome returns an HTTP handler for the home page.
func (s *Server) handleHome() http.HandlerFunc {
	tmpl := template.Must(template.New("home").Parse(homePageTemplate))
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.HealthCheckTimeout)
		defer cancel()

		data := homeData{
			Health:          s.Health(ctx),
			Commands:        s.bot.Registry().List(),
			ShowInvocations: s.store != nil,
		}
		if s.store != nil {
			list, err := s.store.ListInvocations(ctx, db.ListInvocationsParams{Limit: 10})
			if err != nil {
				data.InvocationsError = err.Error()
			} else {
				data.Invocations = list
			}
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			slog.Error(fmt.Sprintf("%s - home template execute: %v", logPrefix, err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}
