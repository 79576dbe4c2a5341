package login

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualSignalIgnoredWithoutWaiter(t *testing.T) {
	m := NewManualSignal()
	assert.False(t, m.Pending())
	assert.False(t, m.Done())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, m.Wait(ctx), context.DeadlineExceeded, "an early Done is not remembered")
}

func TestManualSignalDeliversAndCoalesces(t *testing.T) {
	m := NewManualSignal()
	errc := make(chan error, 1)
	go func() { errc <- m.Wait(context.Background()) }()

	require.Eventually(t, m.Pending, time.Second, time.Millisecond)
	assert.True(t, m.Done())
	assert.True(t, m.Done() || !m.Pending())

	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Done")
	}
	assert.False(t, m.Pending())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, m.Wait(ctx), context.DeadlineExceeded, "coalesced signals do not leak into the next wait")
}
