package application

import (
	"context"
	"log/slog"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchSignals(t *testing.T) {
	log := slog.New(slog.DiscardHandler)

	t.Run("Signal cancels the app", func(t *testing.T) {
		// Given: a watcher on SIGUSR1
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		stop := watchSignals(log, cancel, syscall.SIGUSR1)
		defer stop()

		// When: the process receives SIGUSR1
		require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))

		// Then: the app context is canceled
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
			t.Fatal("context was not canceled")
		}
	})

	t.Run("Stop releases the watcher", func(t *testing.T) {
		// Given: a watcher that never sees a signal
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		stop := watchSignals(log, cancel, syscall.SIGUSR2)

		// When: the app returns early and stops watching
		stopped := make(chan struct{})
		go func() {
			stop()
			close(stopped)
		}()

		// Then: the watcher exits without canceling the app
		select {
		case <-stopped:
		case <-time.After(5 * time.Second):
			t.Fatal("watcher did not exit")
		}
		assert.NoError(t, ctx.Err())
	})
}
