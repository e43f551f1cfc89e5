package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSpawner(t *testing.T) {
	assert.IsType(t, Unbounded{}, NewSpawner(0))
	assert.IsType(t, Unbounded{}, NewSpawner(-3))
	assert.IsType(t, &Pool{}, NewSpawner(8))
}

func TestUnboundedRuns(t *testing.T) {
	done := make(chan struct{})
	require.NoError(t, Unbounded{}.Spawn(context.Background(), func() { close(done) }))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("spawned function never ran")
	}
}

func TestPoolBlocksWhenFull(t *testing.T) {
	p := NewPool(1)
	release := make(chan struct{})
	require.NoError(t, p.Spawn(context.Background(), func() { <-release }))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Spawn(ctx, func() {}), context.DeadlineExceeded)

	close(release)
	ran := make(chan struct{})
	require.NoError(t, p.Spawn(context.Background(), func() { close(ran) }))
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("slot was never released")
	}
}
