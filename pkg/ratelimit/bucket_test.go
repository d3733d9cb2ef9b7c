package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBucketAllowsUpToLimit(t *testing.T) {
	b := NewBucket(3, time.Second)
	now := time.Now()

	require.True(t, b.Allow("alice", now))
	require.True(t, b.Allow("alice", now))
	require.True(t, b.Allow("alice", now))
	require.False(t, b.Allow("alice", now))
}

func TestBucketWindowResetsOnIdleGap(t *testing.T) {
	b := NewBucket(1, 100*time.Millisecond)
	now := time.Now()

	require.True(t, b.Allow("alice", now))
	require.False(t, b.Allow("alice", now))

	later := now.Add(200 * time.Millisecond)
	require.True(t, b.Allow("alice", later))
}

func TestBucketKeysAreIndependent(t *testing.T) {
	b := NewBucket(1, time.Second)
	now := time.Now()

	require.True(t, b.Allow("alice", now))
	require.True(t, b.Allow("bob", now))
	require.False(t, b.Allow("alice", now))
}

func TestBucketForget(t *testing.T) {
	b := NewBucket(1, time.Second)
	now := time.Now()

	require.True(t, b.Allow("alice", now))
	require.False(t, b.Allow("alice", now))

	b.Forget("alice")
	require.True(t, b.Allow("alice", now))
}

func TestCooldownActiveWithinWindow(t *testing.T) {
	c := NewCooldown(60 * time.Second)
	now := time.Now()

	require.False(t, c.Active("alice", now))
	c.Record("alice", now)
	require.True(t, c.Active("alice", now.Add(30*time.Second)))
	require.False(t, c.Active("alice", now.Add(61*time.Second)))
}

func TestCooldownUnknownKeyNotActive(t *testing.T) {
	c := NewCooldown(time.Minute)
	require.False(t, c.Active("nobody", time.Now()))
}
