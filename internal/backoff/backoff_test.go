package backoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelayGrowsExponentially(t *testing.T) {
	p := NewPolicy(100*time.Millisecond, 10*time.Second, 5)
	p.JitterFrac = 0 // disable jitter to assert exact growth

	d0, ok := p.Delay(0)
	require.True(t, ok)
	assert.Equal(t, 100*time.Millisecond, d0)

	d1, _ := p.Delay(1)
	assert.Equal(t, 200*time.Millisecond, d1)

	d2, _ := p.Delay(2)
	assert.Equal(t, 400*time.Millisecond, d2)
}

func TestDelayCapsAtMax(t *testing.T) {
	p := NewPolicy(time.Second, 3*time.Second, 10)
	p.JitterFrac = 0

	d, ok := p.Delay(5)
	require.True(t, ok)
	assert.Equal(t, 3*time.Second, d, "delay must cap at Max")
}

func TestDelayExhaustsAfterMaxRetries(t *testing.T) {
	p := NewPolicy(time.Millisecond, time.Second, 3)
	for i := 0; i < 3; i++ {
		_, ok := p.Delay(i)
		require.True(t, ok, "attempt %d should still be allowed", i)
	}
	_, ok := p.Delay(3)
	assert.False(t, ok, "attempt 3 should be exhausted with MaxRetries=3")
	assert.True(t, p.Exhausted(3))
}

func TestJitterStaysWithinBounds(t *testing.T) {
	p := NewPolicy(time.Second, time.Minute, 5)
	p.JitterFrac = 0.2
	for i := 0; i < 20; i++ {
		d, ok := p.Delay(0)
		require.True(t, ok)
		assert.GreaterOrEqual(t, d, 700*time.Millisecond)
		assert.LessOrEqual(t, d, 1300*time.Millisecond)
	}
}
