package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"loom/domain"

	_ "github.com/mattn/go-sqlite3"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const schema = `
CREATE TABLE IF NOT EXISTS spans (
	trace_id TEXT NOT NULL,
	span_id TEXT NOT NULL,
	parent_id TEXT,
	name TEXT NOT NULL,
	kind TEXT NOT NULL,
	start_time INTEGER NOT NULL,
	end_time INTEGER NOT NULL,
	status_code TEXT NOT NULL,
	status_message TEXT,
	attributes TEXT,
	PRIMARY KEY (trace_id, span_id)
);
CREATE INDEX IF NOT EXISTS idx_spans_trace ON spans(trace_id);
CREATE INDEX IF NOT EXISTS idx_spans_start ON spans(start_time);
`

// Store persists completed spans to a local SQLite file, alongside whatever
// the OTLP transport exports. It runs inside the span pipeline, so its own
// database calls must never create spans.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ sdktrace.SpanExporter = (*Store)(nil)

func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, logger: logger}, nil
}

func dsn(path string) string {
	if path == ":memory:" {
		return path
	}

	return path + "?_journal_mode=WAL&_busy_timeout=5000"
}

func migrate(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := db.ExecContext(ctx, schema)
	return err
}

// ExportSpans stores a batch. A span that fails to store is skipped, one bad
// row must not lose the rest of the batch.
func (s *Store) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, ro := range spans {
		if err := s.store(ctx, domain.FromReadOnly(ro)); err != nil {
			s.logger.Warn("skipping span", "name", ro.Name(), "error", err)
		}
	}

	return nil
}

func (s *Store) store(ctx context.Context, span *domain.Span) error {
	attrs, err := json.Marshal(span.Attributes)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO spans
		 (trace_id, span_id, parent_id, name, kind, start_time, end_time, status_code, status_message, attributes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		span.TraceID,
		span.SpanID,
		span.ParentID,
		span.Name,
		span.SpanKind.String(),
		span.StartTime.UnixNano(),
		span.EndTime.UnixNano(),
		span.Status.Code,
		span.Status.Message,
		string(attrs),
	)

	return err
}

func (s *Store) Shutdown(ctx context.Context) error {
	return s.db.Close()
}
