package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCache_LastWriterWins(t *testing.T) {
	c := NewMemoryCache(0)

	_, _, ok := c.Get()
	assert.False(t, ok)

	c.Set([]Offer{{ID: "S1"}})
	c.Set([]Offer{{ID: "S2"}})

	offers, _, ok := c.Get()
	assert.True(t, ok)
	assert.Equal(t, 1, len(offers))
	assert.Equal(t, "S2", offers[0].ID)
}

func TestMemoryCache_TTL(t *testing.T) {
	now := time.Now()
	c := NewMemoryCache(5 * time.Minute)
	c.now = func() time.Time { return now }

	c.Set([]Offer{{ID: "S1"}})

	_, ts, ok := c.Get()
	assert.True(t, ok)
	assert.Equal(t, now, ts)

	now = now.Add(5*time.Minute + time.Second)
	_, _, ok = c.Get()
	assert.False(t, ok)
}

func TestMemoryCache_Invalidate(t *testing.T) {
	c := NewMemoryCache(0)
	c.Set([]Offer{{ID: "S1"}})
	c.Invalidate()
	_, _, ok := c.Get()
	assert.False(t, ok)
}

func TestNoOpCache(t *testing.T) {
	c := NoOpCache{}
	c.Set([]Offer{{ID: "S1"}})
	_, _, ok := c.Get()
	assert.False(t, ok)
}
