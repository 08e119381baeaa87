package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateFetchesOnceAndCachesInRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	calls := 0
	fetch := func(ctx context.Context, maturityYears int) (float64, string, error) {
		calls++
		return 0.045, "fred", nil
	}

	tc := New(mr.Addr(), fetch)

	rate, source, err := tc.Rate(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0.045, rate)
	assert.Equal(t, "fred", source)

	_, _, err = tc.Rate(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "expected exactly one underlying fetch")
}

func TestRateFallsBackToInMemoryWhenNoRedisAddr(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context, maturityYears int) (float64, string, error) {
		calls++
		return 0.04, "static_default", nil
	}
	tc := New("", fetch)

	_, _, err := tc.Rate(context.Background(), 5)
	require.NoError(t, err)
	_, _, err = tc.Rate(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "expected the in-memory fallback to serve the second call")
}

func TestRatePropagatesFetchError(t *testing.T) {
	mr := miniredis.RunT(t)
	fetch := func(ctx context.Context, maturityYears int) (float64, string, error) {
		return 0, "", errProbe
	}
	tc := New(mr.Addr(), fetch)
	_, _, err := tc.Rate(context.Background(), 30)
	assert.Error(t, err, "expected the probe error to propagate on a cache miss")
}

type sentinelErr string

func (e sentinelErr) Error() string { return string(e) }

const errProbe = sentinelErr("probe unavailable")
