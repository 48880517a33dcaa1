package ratelimit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"marketdash/internal/marketerr"
	"marketdash/internal/provider/mock"
	"marketdash/internal/provider/ratelimit"
)

func TestTokenBucket_BurstThenThrottle(t *testing.T) {
	t.Parallel()

	// Arrange: 20 tokens/s, burst of 2
	tb := ratelimit.NewTokenBucket(20, 2)

	// Act
	start := time.Now()
	for range 4 {
		require.NoError(t, tb.Wait(t.Context()))
	}
	elapsed := time.Since(start)

	// Assert: two calls were free, two waited ~50ms each
	require.GreaterOrEqual(t, elapsed, 80*time.Millisecond)
}

func TestTokenBucket_ContextCanceled(t *testing.T) {
	t.Parallel()

	tb := ratelimit.PerMinute(1, 1)
	require.NoError(t, tb.Wait(t.Context()))

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	err := tb.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMinInterval_SpacesCalls(t *testing.T) {
	t.Parallel()

	gate := &ratelimit.MinInterval{Interval: 30 * time.Millisecond}

	start := time.Now()
	for range 3 {
		require.NoError(t, gate.Wait(t.Context()))
	}
	require.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestProvider_PassesThrough(t *testing.T) {
	t.Parallel()

	// Arrange
	p := ratelimit.New(mock.New(), ratelimit.NewTokenBucket(1000, 10))

	// Act + Assert
	require.Equal(t, "mock", p.Name())

	q, err := p.GetQuote(t.Context(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, "AAPL", q.Symbol)

	candles, err := p.GetHistory(t.Context(), "AAPL", 7)
	require.NoError(t, err)
	require.Len(t, candles, 7)

	_, err = p.GetIndicators(t.Context(), "AAPL")
	require.NoError(t, err)

	news, err := p.GetNews(t.Context(), "AAPL", 3)
	require.NoError(t, err)
	require.Len(t, news, 3)
}

func TestProvider_WaitFailureIsNetworkError(t *testing.T) {
	t.Parallel()

	// Arrange: a drained bucket and an already-canceled context
	tb := ratelimit.PerMinute(1, 1)
	require.NoError(t, tb.Wait(t.Context()))
	p := ratelimit.New(mock.New(), tb)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	// Act
	_, err := p.GetQuote(ctx, "AAPL")

	// Assert
	require.True(t, marketerr.IsKind(err, marketerr.KindNetwork))
	require.True(t, errors.Is(err, context.Canceled))
}
