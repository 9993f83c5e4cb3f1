// CLAUDE:SUMMARY Chain event logger backed by SQLite, plus retention cleanup.
package observability

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/quizchain/chain"
	"github.com/hazyhaar/quizchain/dbopen"
	"github.com/hazyhaar/quizchain/idgen"
)

// EventLogger writes chain events to the observability database. It
// implements chain.EventSink.
type EventLogger struct {
	db    *sql.DB
	newID idgen.Generator
}

// EventLoggerOption configures an EventLogger.
type EventLoggerOption func(*EventLogger)

// WithEventIDGenerator sets a custom ID generator for event IDs.
func WithEventIDGenerator(gen idgen.Generator) EventLoggerOption {
	return func(l *EventLogger) { l.newID = gen }
}

// NewEventLogger creates a logger backed by the given observability database.
func NewEventLogger(db *sql.DB, opts ...EventLoggerOption) *EventLogger {
	l := &EventLogger{
		db:    db,
		newID: idgen.Prefixed("evt_", idgen.Default),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Record persists one chain event. Errors are logged via slog but do not
// propagate: a failing observability store never blocks a chain.
func (l *EventLogger) Record(ctx context.Context, ev chain.Event) {
	_, err := dbopen.Exec(ctx, l.db, `
		INSERT INTO chain_events (
			event_id, run_id, event_type, url, depth, correct, detail, created_at
		) VALUES (?,?,?,?,?,?,?,?)`,
		l.newID(), ev.RunID, ev.Type, ev.URL, ev.Depth, ev.Correct, ev.Detail, time.Now().Unix())
	if err != nil {
		slog.Error("observability: chain event log failed", "error", err, "event_type", ev.Type)
	}
}

// RunEvents returns the recorded events of one run, oldest first.
func (l *EventLogger) RunEvents(ctx context.Context, runID string) ([]chain.Event, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT run_id, event_type, url, depth, correct, detail
		FROM chain_events WHERE run_id = ? ORDER BY created_at, event_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("observability: query run events: %w", err)
	}
	defer rows.Close()

	var out []chain.Event
	for rows.Next() {
		var ev chain.Event
		var url, detail sql.NullString
		if err := rows.Scan(&ev.RunID, &ev.Type, &url, &ev.Depth, &ev.Correct, &detail); err != nil {
			return nil, fmt.Errorf("observability: scan event: %w", err)
		}
		ev.URL = url.String
		ev.Detail = detail.String
		out = append(out, ev)
	}
	return out, rows.Err()
}

// RetentionConfig specifies per-table retention in days. Zero means no cleanup.
type RetentionConfig struct {
	HTTPLogsDays    int
	ChainEventsDays int
	HeartbeatsDays  int
	RunVacuumAfter  bool
}

// Cleanup deletes records exceeding the retention thresholds.
func Cleanup(ctx context.Context, db *sql.DB, cfg RetentionConfig) error {
	now := time.Now().Unix()

	type cleanupTarget struct {
		table  string
		column string
		days   int
	}
	targets := []cleanupTarget{
		{"http_request_logs", "created_at", cfg.HTTPLogsDays},
		{"chain_events", "created_at", cfg.ChainEventsDays},
		{"worker_heartbeats", "timestamp", cfg.HeartbeatsDays},
	}

	for _, t := range targets {
		if t.days <= 0 {
			continue
		}
		cutoff := now - int64(t.days*86400)
		q := fmt.Sprintf("DELETE FROM %s WHERE %s < ?", t.table, t.column)
		if _, err := db.ExecContext(ctx, q, cutoff); err != nil {
			return fmt.Errorf("observability: cleanup %s: %w", t.table, err)
		}
	}

	if cfg.RunVacuumAfter {
		if _, err := db.ExecContext(ctx, "VACUUM"); err != nil {
			return fmt.Errorf("observability: vacuum: %w", err)
		}
	}
	return nil
}
