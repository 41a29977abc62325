package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"loom/domain"

	"github.com/XSAM/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Reader queries an existing archive. Unlike the Store, its database calls
// are otelsql-instrumented; reads happen from commands, not from inside the
// export pipeline.
type Reader struct {
	db *sql.DB
}

func OpenReader(path string) (*Reader, error) {
	db, err := otelsql.Open("sqlite3", dsn(path),
		otelsql.WithAttributes(semconv.DBSystemSqlite),
	)
	if err != nil {
		return nil, err
	}

	return &Reader{db: db}, nil
}

func (r *Reader) Close() error {
	return r.db.Close()
}

// Trace loads every archived span of one trace, parents before children is
// not guaranteed, callers get start-time order.
func (r *Reader) Trace(ctx context.Context, traceID string) ([]*domain.Span, error) {
	if _, err := trace.TraceIDFromHex(traceID); err != nil {
		return nil, fmt.Errorf("trace id %q: %w", traceID, err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT trace_id, span_id, parent_id, name, kind, start_time, end_time, status_code, status_message, attributes
		 FROM spans WHERE trace_id = ? ORDER BY start_time`, traceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSpans(rows)
}

// Traces loads several traces concurrently.
func (r *Reader) Traces(ctx context.Context, traceIDs []string) (map[string][]*domain.Span, error) {
	results := make([][]*domain.Span, len(traceIDs))

	wg, ctx := errgroup.WithContext(ctx)
	for i, id := range traceIDs {
		i, id := i, id
		wg.Go(func() error {
			spans, err := r.Trace(ctx, id)
			if err != nil {
				return err
			}
			results[i] = spans
			return nil
		})
	}

	if err := wg.Wait(); err != nil {
		return nil, err
	}

	traces := make(map[string][]*domain.Span, len(traceIDs))
	for i, id := range traceIDs {
		traces[id] = results[i]
	}

	return traces, nil
}

// Recent returns the newest root spans, one per trace.
func (r *Reader) Recent(ctx context.Context, limit int) ([]*domain.Span, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT trace_id, span_id, parent_id, name, kind, start_time, end_time, status_code, status_message, attributes
		 FROM spans WHERE parent_id = '' ORDER BY start_time DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSpans(rows)
}

func scanSpans(rows *sql.Rows) ([]*domain.Span, error) {
	spans := []*domain.Span{}

	for rows.Next() {
		span := &domain.Span{}
		var kind, attrs string
		var start, end int64

		err := rows.Scan(
			&span.TraceID,
			&span.SpanID,
			&span.ParentID,
			&span.Name,
			&kind,
			&start,
			&end,
			&span.Status.Code,
			&span.Status.Message,
			&attrs,
		)
		if err != nil {
			return nil, err
		}

		span.SpanKind = parseKind(kind)
		span.StartTime = time.Unix(0, start)
		span.EndTime = time.Unix(0, end)

		if err := json.Unmarshal([]byte(attrs), &span.Attributes); err != nil {
			return nil, fmt.Errorf("span %s attributes: %w", span.SpanID, err)
		}

		spans = append(spans, span)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].StartTime.Before(spans[j].StartTime)
	})

	return spans, nil
}

func parseKind(kind string) trace.SpanKind {
	for _, k := range []trace.SpanKind{
		trace.SpanKindInternal,
		trace.SpanKindServer,
		trace.SpanKindClient,
		trace.SpanKindProducer,
		trace.SpanKindConsumer,
	} {
		if k.String() == kind {
			return k
		}
	}

	return trace.SpanKindUnspecified
}
