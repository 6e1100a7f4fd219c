package trace

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestDisabledIsNoop(t *testing.T) {
	require.NoError(t, Init(false, nil))
	assert.False(t, Enabled())
	ctx, span := StartSpan(context.Background(), "noop", "t-1")
	assert.NotNil(t, ctx)
	assert.False(t, span.SpanContext().IsValid())
	End(span, errors.New("ignored"))
}

func TestEnabledExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(true, &buf))
	assert.True(t, Enabled())

	_, span := StartSpan(context.Background(), "agent.classify", "trace-123", attribute.String("intent", "retrieval"))
	assert.True(t, span.SpanContext().IsValid())
	End(span, errors.New("classifier timeout"))

	require.NoError(t, Shutdown(context.Background()))
	assert.False(t, Enabled())
	out := buf.String()
	assert.Contains(t, out, "agent.classify")
	assert.Contains(t, out, "trace-123")
	assert.Contains(t, out, "classifier timeout")
}
