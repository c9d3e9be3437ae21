package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/tokenflow/internal/logger"
)

func TestWatcherDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tokenflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"1\"\n"), 0o644))

	var calls atomic.Int32
	changed := make(chan string, 4)
	w := New(path, func(p string) {
		calls.Add(1)
		changed <- p
	}, logger.Discard()).WithDebounce(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("version: \"2\"\n"), 0o644))
	}

	select {
	case got := <-changed:
		abs, _ := filepath.Abs(path)
		require.Equal(t, abs, got)
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification")
	}

	time.Sleep(150 * time.Millisecond)
	require.Equal(t, int32(1), calls.Load())

	cancel()
	select {
	case err := <-done:
		require.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
