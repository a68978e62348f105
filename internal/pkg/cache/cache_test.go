package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGet(t *testing.T) {
	c := New(time.Minute, 10)
	defer c.Close()

	c.Set("openid-1", "session-key-1")

	v, ok := c.Get("openid-1")
	require.True(t, ok)
	assert.Equal(t, "session-key-1", v)

	_, ok = c.Get("openid-2")
	assert.False(t, ok)
}

func TestExpiry(t *testing.T) {
	c := New(50*time.Millisecond, 10)
	defer c.Close()

	c.Set("openid-1", "session-key-1")
	time.Sleep(80 * time.Millisecond)

	_, ok := c.Get("openid-1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestSetRefreshesTTL(t *testing.T) {
	c := New(100*time.Millisecond, 10)
	defer c.Close()

	c.Set("openid-1", "old")
	time.Sleep(60 * time.Millisecond)
	c.Set("openid-1", "new")
	time.Sleep(60 * time.Millisecond)

	v, ok := c.Get("openid-1")
	require.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestBoundedEviction(t *testing.T) {
	c := New(time.Minute, 3)
	defer c.Close()

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("key-%d", i), "v")
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, 3, c.Len())

	// 写满后再写会淘汰最早过期的一项，总量不超过上限
	c.Set("key-3", "v")
	assert.Equal(t, 3, c.Len())

	_, ok := c.Get("key-0")
	assert.False(t, ok)
	_, ok = c.Get("key-3")
	assert.True(t, ok)
}

func TestDelete(t *testing.T) {
	c := New(time.Minute, 10)
	defer c.Close()

	c.Set("openid-1", "session-key-1")
	c.Delete("openid-1")

	_, ok := c.Get("openid-1")
	assert.False(t, ok)
}

func TestCloseIdempotent(t *testing.T) {
	c := New(time.Minute, 10)
	c.Close()
	c.Close()
}
