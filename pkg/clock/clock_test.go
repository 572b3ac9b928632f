package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMock_AdvanceFiresDueTimers(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMock(start)

	var fired []string
	c.AfterFunc(2*time.Second, func() { fired = append(fired, "two") })
	c.AfterFunc(time.Second, func() { fired = append(fired, "one") })
	c.AfterFunc(time.Minute, func() { fired = append(fired, "minute") })

	c.Advance(5 * time.Second)

	assert.Equal(t, []string{"one", "two"}, fired)
	assert.Equal(t, start.Add(5*time.Second), c.Now())
	assert.Equal(t, 1, c.Pending())
}

func TestMock_StopPreventsFiring(t *testing.T) {
	c := NewMock(time.Now())
	called := false
	timer := c.AfterFunc(time.Second, func() { called = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	c.Advance(time.Hour)
	assert.False(t, called)
	assert.Zero(t, c.Pending())
}

func TestMock_After(t *testing.T) {
	c := NewMock(time.Now())
	ch := c.After(300 * time.Second)

	select {
	case <-ch:
		t.Fatal("channel fired before the clock advanced")
	default:
	}

	c.Advance(300 * time.Second)
	select {
	case <-ch:
	default:
		t.Fatal("channel did not fire after advancing")
	}
}

func TestMock_TimersScheduledFromCallbacks(t *testing.T) {
	c := NewMock(time.Now())
	count := 0
	var schedule func()
	schedule = func() {
		count++
		c.AfterFunc(time.Minute, schedule)
	}
	c.AfterFunc(time.Minute, schedule)

	c.Advance(time.Minute)
	c.Advance(time.Minute)
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, c.Pending())
}
