package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClockNow(t *testing.T) {
	c := RealClock{}
	before := time.Now()
	now := c.Now()
	after := time.Now()

	assert.False(t, now.Before(before))
	assert.False(t, now.After(after))
}

func TestRealClockNowUnixMilli(t *testing.T) {
	c := RealClock{}
	before := time.Now().UnixMilli()
	millis := c.NowUnixMilli()
	after := time.Now().UnixMilli()

	assert.GreaterOrEqual(t, millis, before)
	assert.LessOrEqual(t, millis, after)
}

func TestMockClockReturnsFixedTime(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewMockClock(fixed)

	assert.Equal(t, fixed, c.Now())
	assert.Equal(t, fixed.UnixMilli(), c.NowUnixMilli())
}

func TestMockClockSet(t *testing.T) {
	c := NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	updated := time.Date(2025, 6, 2, 8, 30, 0, 0, time.UTC)

	c.Set(updated)

	assert.Equal(t, updated, c.Now())
}

func TestMockClockAdvance(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewMockClock(start)

	c.Advance(30 * time.Second)
	assert.Equal(t, start.Add(30*time.Second), c.Now())

	c.Advance(-time.Minute)
	assert.Equal(t, start.Add(-30*time.Second), c.Now())
}
