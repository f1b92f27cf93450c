package tracing

import (
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrSessionID    = "session.id"
	AttrSessionState = "session.state"
	AttrLocale       = "session.locale"
	AttrInputCount   = "session.input_count"
	AttrSourceBytes  = "session.source_bytes"

	AttrVerdictError      = "verdict.is_error"
	AttrVerdictNeedsInput = "verdict.needs_input"
	AttrErrorLineCount    = "verdict.error_lines"

	AttrErrorMessage = "error.message"
	AttrErrorType    = "error.type"
)

// Span names.
const (
	SpanSessionStart  = "session.start"
	SpanSessionSubmit = "session.submit_input"
	SpanTutorCall     = "tutor.call"
)

// Event names.
const (
	EventStateChanged = "state.changed"
	EventBusyVerdict  = "verdict.synthesized"
)

// RecordError marks span as failed with err.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
