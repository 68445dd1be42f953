package limiter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestLocalLimiterBurst(t *testing.T) {
	t.Parallel()

	l := NewLocalLimiter(rate.Limit(1), 2)
	ctx := context.Background()
	for range 2 {
		ok, err := l.Allow(ctx, "ignored")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "ignored")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDynamicLimiter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	d := NewDynamicLocalLimiter(1, 1)

	ok, _ := d.Allow(ctx, "k")
	assert.True(t, ok)
	ok, _ = d.Allow(ctx, "k")
	assert.False(t, ok)

	// 关闭后全部放行。
	d.UpdateLocal(0, 0)
	for range 5 {
		ok, _ = d.Allow(ctx, "k")
		assert.True(t, ok)
	}

	d.UpdateLocal(1, 0)
	ok, _ = d.Allow(ctx, "k")
	assert.True(t, ok)
	ok, _ = d.Allow(ctx, "k")
	assert.False(t, ok)

	var nilLimiter *DynamicLimiter
	ok, err := nilLimiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}
