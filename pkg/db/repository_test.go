package db

import (
	"testing"
	"time"

	"github.com/morezero/slashbot/pkg/events"
)

const repoTestPrefix = "db:repository_test"

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, defaultListLimit},
		{-5, defaultListLimit},
		{1, 1},
		{50, 50},
		{maxListLimit, maxListLimit},
		{maxListLimit + 1, maxListLimit},
	}
	for _, tt := range tests {
		if got := ClampLimit(tt.in); got != tt.want {
			t.Errorf("%s - ClampLimit(%d) = %d, want %d", repoTestPrefix, tt.in, got, tt.want)
		}
	}
}

func TestParamsFromEvent(t *testing.T) {
	ev := &events.CommandInvokedEvent{
		RequestID:  "req-1",
		Command:    "echo",
		Args:       []string{"hello world"},
		UserID:     "U1",
		UserName:   "alice",
		ChannelID:  "C1",
		TeamID:     "T1",
		Outcome:    events.OutcomeHandlerError,
		Error:      "boom",
		DurationMs: 12,
		Timestamp:  "2024-05-01T10:00:00Z",
	}

	p := ParamsFromEvent(ev)
	if p.RequestID != "req-1" || p.Command != "echo" || p.Outcome != events.OutcomeHandlerError {
		t.Errorf("%s - identity fields not copied: %+v", repoTestPrefix, p)
	}
	if len(p.Args) != 1 || p.Args[0] != "hello world" {
		t.Errorf("%s - args = %v", repoTestPrefix, p.Args)
	}
	if p.Error == nil || *p.Error != "boom" {
		t.Errorf("%s - expected error 'boom', got %v", repoTestPrefix, p.Error)
	}
	want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	if !p.Created.Equal(want) {
		t.Errorf("%s - created = %v, want %v", repoTestPrefix, p.Created, want)
	}
}

func TestParamsFromEvent_NoErrorBadTimestamp(t *testing.T) {
	p := ParamsFromEvent(&events.CommandInvokedEvent{
		RequestID: "req-2",
		Outcome:   events.OutcomeInvoked,
		Timestamp: "not-a-time",
	})
	if p.Error != nil {
		t.Errorf("%s - expected nil error pointer, got %q", repoTestPrefix, *p.Error)
	}
	if !p.Created.IsZero() {
		t.Errorf("%s - expected zero created time for unparsable timestamp", repoTestPrefix)
	}
}

var _ events.EventPublisher = (*Repository)(nil)
