package tool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateOrderCodeEmbedsCreationSecond(t *testing.T) {
	now := time.Date(2026, 8, 26, 10, 30, 0, 0, time.UTC)

	for i := 0; i < 200; i++ {
		code := GenerateOrderCode(now)
		require.True(t, code > 0)
		require.Less(t, code, int64(1)<<53, "PayOS rejects order codes at or above 2^53")
		require.Equal(t, now.Unix(), OrderCodeTime(code).Unix())

		tail := code % orderCodeTailRange
		require.GreaterOrEqual(t, tail, int64(0))
		require.Less(t, tail, int64(orderCodeTailRange))
	}
}

func TestGenerateOrderCodeSameSecondSpread(t *testing.T) {
	now := time.Now()
	seen := map[int64]bool{}
	for i := 0; i < 100; i++ {
		seen[GenerateOrderCode(now)] = true
	}
	// 100 draws from a million-wide tail should essentially never collide.
	require.Greater(t, len(seen), 95)
}
