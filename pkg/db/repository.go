package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/morezero/slashbot/pkg/events"
)

const repoLogPrefix = "db:repository"

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

// Repository provides access to the invocation audit log.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// RecordInvocation inserts one audit row.
func (r *Repository) RecordInvocation(ctx context.Context, params RecordInvocationParams) (*Invocation, error) {
	slog.Debug(fmt.Sprintf("%s - RecordInvocation command=%s outcome=%s", repoLogPrefix, params.Command, params.Outcome))

	created := params.Created
	if created.IsZero() {
		created = time.Now().UTC()
	}
	args := params.Args
	if args == nil {
		args = []string{}
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO command_invocations
		   (request_id, command, args, user_id, user_name, channel_id, team_id, outcome, error, duration_ms, created)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, request_id, command, args, user_id, user_name, channel_id, team_id,
		           outcome, error, duration_ms, created`,
		params.RequestID, params.Command, args, params.UserID, params.UserName, params.ChannelID,
		params.TeamID, params.Outcome, params.Error, params.DurationMs, created)

	return scanInvocation(row)
}

// ListInvocations returns the most recent invocations, newest first.
func (r *Repository) ListInvocations(ctx context.Context, params ListInvocationsParams) ([]Invocation, error) {
	limit := ClampLimit(params.Limit)

	query := `SELECT id, request_id, command, args, user_id, user_name, channel_id, team_id,
	                 outcome, error, duration_ms, created
	          FROM command_invocations WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if params.Command != "" {
		query += fmt.Sprintf(` AND command = $%d`, argIdx)
		args = append(args, params.Command)
		argIdx++
	}
	if params.Outcome != "" {
		query += fmt.Sprintf(` AND outcome = $%d`, argIdx)
		args = append(args, params.Outcome)
		argIdx++
	}
	query += fmt.Sprintf(` ORDER BY created DESC, id DESC LIMIT $%d`, argIdx)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s - ListInvocations query: %w", repoLogPrefix, err)
	}
	defer rows.Close()

	var out []Invocation
	for rows.Next() {
		inv, err := scanInvocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

// CountByOutcome aggregates invocations per outcome.
func (r *Repository) CountByOutcome(ctx context.Context) ([]OutcomeCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT outcome, COUNT(*)::int FROM command_invocations GROUP BY outcome ORDER BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("%s - CountByOutcome query: %w", repoLogPrefix, err)
	}
	defer rows.Close()

	var out []OutcomeCount
	for rows.Next() {
		var c OutcomeCount
		if err := rows.Scan(&c.Outcome, &c.Count); err != nil {
			return nil, fmt.Errorf("%s - CountByOutcome scan: %w", repoLogPrefix, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ClearInvocations truncates the audit log. The schema is preserved.
func (r *Repository) ClearInvocations(ctx context.Context) error {
	slog.Info(fmt.Sprintf("%s - Clearing command_invocations", repoLogPrefix))
	if _, err := r.pool.Exec(ctx, `TRUNCATE TABLE command_invocations RESTART IDENTITY`); err != nil {
		return fmt.Errorf("%s - truncate failed: %w", repoLogPrefix, err)
	}
	return nil
}

// PublishInvoked records the event, letting the repository act as an events.EventPublisher.
func (r *Repository) PublishInvoked(ctx context.Context, event *events.CommandInvokedEvent) error {
	_, err := r.RecordInvocation(ctx, ParamsFromEvent(event))
	return err
}

// ParamsFromEvent maps an invocation event onto an audit row.
func ParamsFromEvent(event *events.CommandInvokedEvent) RecordInvocationParams {
	params := RecordInvocationParams{
		RequestID:  event.RequestID,
		Command:    event.Command,
		Args:       event.Args,
		UserID:     event.UserID,
		UserName:   event.UserName,
		ChannelID:  event.ChannelID,
		TeamID:     event.TeamID,
		Outcome:    event.Outcome,
		DurationMs: event.DurationMs,
	}
	if event.Error != "" {
		msg := event.Error
		params.Error = &msg
	}
	if ts, err := time.Parse(time.RFC3339, event.Timestamp); err == nil {
		params.Created = ts
	}
	return params
}

// ClampLimit bounds a list limit to [1, maxListLimit], defaulting when unset.
func ClampLimit(limit int) int {
	if limit < 1 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func scanInvocation(row pgx.Row) (*Invocation, error) {
	var inv Invocation
	err := row.Scan(&inv.ID, &inv.RequestID, &inv.Command, &inv.Args, &inv.UserID, &inv.UserName,
		&inv.ChannelID, &inv.TeamID, &inv.Outcome, &inv.Error, &inv.DurationMs, &inv.Created)
	if err != nil {
		return nil, fmt.Errorf("%s - scan invocation: %w", repoLogPrefix, err)
	}
	return &inv, nil
}
