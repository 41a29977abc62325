package tracing

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"loom/util"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Reserved attribute keys for structured payload capture. These are stable
// across every instrumented call site; ad hoc scalar attributes must not
// reuse them.
const (
	KeyInput        = "llm.input"
	KeyInputLength  = "llm.input.length"
	KeyInputDigest  = "llm.input.digest"
	KeyOutput       = "llm.output"
	KeyOutputLength = "llm.output.length"
	KeyOutputDigest = "llm.output.digest"
)

// Recorder serializes structured payloads onto spans with bounded cost: the
// stored value is truncated to Preview runes, while the true serialized
// length and a content digest are always recorded in full. Recording twice
// before the span ends overwrites; recording after End is a no-op, the SDK
// discards attribute writes on ended spans.
type Recorder struct {
	// Preview is the maximum stored payload length in runes.
	// DefaultPreviewBound when zero.
	Preview int
}

// Input records payload under the model-input slots of the span.
func (r Recorder) Input(span trace.Span, payload any) {
	r.record(span, KeyInput, KeyInputLength, KeyInputDigest, payload)
}

// Output records payload under the model-output slots of the span.
func (r Recorder) Output(span trace.Span, payload any) {
	r.record(span, KeyOutput, KeyOutputLength, KeyOutputDigest, payload)
}

func (r Recorder) record(span trace.Span, key, lengthKey, digestKey string, payload any) {
	serialized := serialize(payload)

	span.SetAttributes(
		attribute.String(key, util.Truncate(serialized, r.bound())),
		attribute.Int(lengthKey, utf8.RuneCountInString(serialized)),
		HashedString(digestKey, serialized),
	)
}

func (r Recorder) bound() int {
	if r.Preview > 0 {
		return r.Preview
	}

	return DefaultPreviewBound
}

// serialize renders an arbitrary nested payload as a transport-safe string.
// Strings pass through untouched so previews stay human readable.
func serialize(payload any) string {
	switch v := payload.(type) {
	case string:
		return v
	case nil:
		return "null"
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprint(payload)
	}

	return string(b)
}
