package jitter_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/DRSN-tech/pos-backend/pkg/jitter"
	"github.com/stretchr/testify/assert"
)

func TestDurationRange(t *testing.T) {
	base := 100 * time.Millisecond

	for i := 0; i < 100; i++ {
		got := jitter.Duration(base, jitter.DefaultJitter)
		assert.GreaterOrEqual(t, got, base)
		assert.LessOrEqual(t, got, base+base/2)
	}
}

func TestDurationWithSeedDeterministic(t *testing.T) {
	base := 100 * time.Millisecond

	a := jitter.DurationWithSeed(base, jitter.DefaultJitter, rand.New(rand.NewSource(1)))
	b := jitter.DurationWithSeed(base, jitter.DefaultJitter, rand.New(rand.NewSource(1)))
	assert.Equal(t, a, b)
}

func TestExponentialBackoff(t *testing.T) {
	const (
		base = 20 * time.Millisecond
		max  = 200 * time.Millisecond
	)

	// Без джиттера рост строго удваивается до потолка
	assert.Equal(t, base, jitter.ExponentialBackoff(base, max, 0, 0))
	assert.Equal(t, 40*time.Millisecond, jitter.ExponentialBackoff(base, max, 1, 0))
	assert.Equal(t, 80*time.Millisecond, jitter.ExponentialBackoff(base, max, 2, 0))
	assert.Equal(t, 160*time.Millisecond, jitter.ExponentialBackoff(base, max, 3, 0))
	assert.Equal(t, max, jitter.ExponentialBackoff(base, max, 4, 0))
	assert.Equal(t, max, jitter.ExponentialBackoff(base, max, 10, 0))
}

func TestExponentialBackoffJitterBound(t *testing.T) {
	const (
		base = 20 * time.Millisecond
		max  = 200 * time.Millisecond
	)

	for attempt := 0; attempt < 10; attempt++ {
		got := jitter.ExponentialBackoff(base, max, attempt, jitter.DefaultJitter)
		assert.LessOrEqual(t, got, max+max/2)
		assert.GreaterOrEqual(t, got, base)
	}
}
