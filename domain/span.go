package domain

import (
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Span is the archived form of a completed span: ids as hex strings, times
// stamped by the SDK, attributes in their exported JSON shape.
type Span struct {
	TraceID    string
	SpanID     string
	ParentID   string
	Name       string
	SpanKind   trace.SpanKind
	StartTime  time.Time
	EndTime    time.Time
	Status     Status
	Attributes []Attribute
}

type Status struct {
	Code    string
	Message string
}

func FromReadOnly(ro sdktrace.ReadOnlySpan) *Span {
	span := &Span{
		TraceID:    ro.SpanContext().TraceID().String(),
		SpanID:     ro.SpanContext().SpanID().String(),
		Name:       ro.Name(),
		SpanKind:   ro.SpanKind(),
		StartTime:  ro.StartTime(),
		EndTime:    ro.EndTime(),
		Attributes: FromKeyValues(ro.Attributes()),
	}

	if ro.Parent().IsValid() {
		span.ParentID = ro.Parent().SpanID().String()
	}

	span.Status = Status{
		Code:    ro.Status().Code.String(),
		Message: ro.Status().Description,
	}

	return span
}

// Root reports whether the span started a new trace.
func (s *Span) Root() bool {
	return s.ParentID == ""
}

func (s *Span) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}
