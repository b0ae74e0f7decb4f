package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheHitAndMiss(t *testing.T) {
	c := NewResponseCache(time.Minute)
	c.Put("chan1", "hello", "hi there")

	got, ok := c.Get("chan1", "hello")
	assert.True(t, ok)
	assert.Equal(t, "hi there", got)

	_, ok = c.Get("chan1", "different prompt")
	assert.False(t, ok)

	// Same prompt in another channel is a separate conversation.
	_, ok = c.Get("chan2", "hello")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	c := NewResponseCache(10 * time.Millisecond)
	c.Put("chan1", "hello", "hi there")

	time.Sleep(30 * time.Millisecond)
	_, ok := c.Get("chan1", "hello")
	assert.False(t, ok)
}

func TestCacheDisabledWithZeroTTL(t *testing.T) {
	c := NewResponseCache(0)
	c.Put("chan1", "hello", "hi there")
	_, ok := c.Get("chan1", "hello")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}
