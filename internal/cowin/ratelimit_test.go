package cowin_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/vaccine-alert/internal/cowin"
)

func TestRateLimiter_Wait(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		calls   int
		burst   int
		attempt int
		wantErr bool
	}{
		{
			name:    "allows calls within budget",
			calls:   100,
			burst:   10,
			attempt: 3,
		},
		{
			name:    "allows full burst",
			calls:   100,
			burst:   5,
			attempt: 5,
		},
		{
			name:    "rejects once window budget is spent",
			calls:   2,
			burst:   5,
			attempt: 3,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rl := cowin.NewRateLimiter(tt.calls, 5*time.Minute, tt.burst)

			var lastErr error
			for range tt.attempt {
				lastErr = rl.Wait(context.Background())
				if lastErr != nil {
					break
				}
			}

			if tt.wantErr {
				require.ErrorIs(t, lastErr, cowin.ErrBudgetExhausted)
			} else {
				require.NoError(t, lastErr)
			}
		})
	}
}

func TestRateLimiter_Remaining(t *testing.T) {
	t.Parallel()

	rl := cowin.NewRateLimiter(100, 5*time.Minute, 10)

	assert.Equal(t, int64(0), rl.Count())
	assert.Equal(t, int64(100), rl.Remaining())

	require.NoError(t, rl.Wait(context.Background()))
	require.NoError(t, rl.Wait(context.Background()))

	assert.Equal(t, int64(2), rl.Count())
	assert.Equal(t, int64(98), rl.Remaining())
}

func TestRateLimiter_WindowReset(t *testing.T) {
	t.Parallel()

	start := time.Date(2021, 5, 10, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	currentTime := start

	rl := cowin.NewRateLimiter(
		2, 5*time.Minute, 5,
		cowin.WithRateLimiterNowFunc(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return currentTime
		}),
	)

	require.NoError(t, rl.Wait(context.Background()))
	require.NoError(t, rl.Wait(context.Background()))
	require.ErrorIs(t, rl.Wait(context.Background()), cowin.ErrBudgetExhausted)
	assert.Equal(t, start.Add(5*time.Minute), rl.ResetAt())

	mu.Lock()
	currentTime = start.Add(6 * time.Minute)
	mu.Unlock()

	require.NoError(t, rl.Wait(context.Background()))
	assert.Equal(t, int64(1), rl.Count())
}

func TestRateLimiter_ContextCanceled(t *testing.T) {
	t.Parallel()

	// One call per minute, burst 1.
	rl := cowin.NewRateLimiter(5, 5*time.Minute, 1)

	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rl.Wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter wait")
	assert.NotErrorIs(t, err, cowin.ErrBudgetExhausted)
}
