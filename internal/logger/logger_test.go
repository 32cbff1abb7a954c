package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func TestTraceContextHandler_AddsSpanIDs(t *testing.T) {
	t.Setenv("ENV", "local")

	var buf bytes.Buffer
	log := newLogger(&buf)

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	log.InfoContext(ctx, "course viewed")

	assert.Contains(t, buf.String(), "trace_id=0102030405060708090a0b0c0d0e0f10")
	assert.Contains(t, buf.String(), "span_id=0102030405060708")
}

func TestTraceContextHandler_NoSpan(t *testing.T) {
	t.Setenv("ENV", "local")

	var buf bytes.Buffer
	newLogger(&buf).Info("anonymous request")

	assert.Contains(t, buf.String(), "anonymous request")
	assert.NotContains(t, buf.String(), "trace_id")
}

func TestColorTextHandler_ColorsErrors(t *testing.T) {
	t.Setenv("ENV", "local")

	var buf bytes.Buffer
	newLogger(&buf).Error("database unreachable")

	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "[31mdatabase unreachable")
}

func TestJSONHandlerInProduction(t *testing.T) {
	t.Setenv("ENV", "production")

	var buf bytes.Buffer
	newLogger(&buf).Info("started", "port", "8080")

	assert.Contains(t, buf.String(), `"msg":"started"`)
	assert.Contains(t, buf.String(), `"port":"8080"`)
}
