package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(f.calls)}, nil
}

func TestCachingEmbedderCollapsesRepeatCalls(t *testing.T) {
	inner := &fakeEmbedder{}
	e, err := NewCachingEmbedder(inner, 8)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := e.Embed(ctx, "same text")
	require.NoError(t, err)
	second, err := e.Embed(ctx, "same text")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first, second)

	_, err = e.Embed(ctx, "different text")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachingEmbedderEvictsAtCapacity(t *testing.T) {
	inner := &fakeEmbedder{}
	e, err := NewCachingEmbedder(inner, 1)
	require.NoError(t, err)
	ctx := context.Background()

	_, _ = e.Embed(ctx, "a")
	_, _ = e.Embed(ctx, "b") // evicts "a"
	_, _ = e.Embed(ctx, "a")

	assert.Equal(t, 3, inner.calls)
}

func TestCachingEmbedderDoesNotCacheFailures(t *testing.T) {
	inner := &fakeEmbedder{err: errors.New("provider down")}
	e, err := NewCachingEmbedder(inner, 8)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = e.Embed(ctx, "text")
	require.Error(t, err)

	inner.err = nil
	_, err = e.Embed(ctx, "text")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"```json\n[{\"name\":\"Go\"}]\n```", `[{"name":"Go"}]`},
		{"```\n{}\n```", "{}"},
		{"  {\"a\":1}  ", `{"a":1}`},
		{"[]", "[]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanJSONBlock(tt.in))
	}
}

func TestClassifyPreservesCancellation(t *testing.T) {
	err := classify("model", context.Canceled)
	assert.ErrorIs(t, err, context.Canceled)

	var timeoutErr *TimeoutError
	assert.ErrorAs(t, classify("model", context.DeadlineExceeded), &timeoutErr)

	var transportErr *TransportError
	assert.ErrorAs(t, classify("model", errors.New("boom")), &transportErr)
}
