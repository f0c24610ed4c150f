package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "engine:\n  angle: rad\n")

	var (
		mu      sync.Mutex
		configs []*Config
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := Watch(ctx, path, noEnv, func(c *Config) {
		mu.Lock()
		defer mu.Unlock()
		configs = append(configs, c)
	}, nil)
	require.NoError(t, err)
	defer w.Close()

	// A burst of writes is coalesced into one reload.
	for _, angle := range []string{"grad", "deg"} {
		require.NoError(t, os.WriteFile(path, []byte("engine:\n  angle: "+angle+"\n"), 0644))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(configs) > 0
	}, 2*time.Second, 20*time.Millisecond)

	time.Sleep(3 * debounce)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, configs, 1)
	assert.Equal(t, "deg", configs[len(configs)-1].Engine.Angle)
	assert.Equal(t, uint64(1), w.Reloads())
}

func TestWatchReportsInvalidConfig(t *testing.T) {
	path := writeConfig(t, "engine:\n  angle: rad\n")

	errs := make(chan error, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := Watch(ctx, path, noEnv, func(*Config) {
		t.Error("invalid config must not be delivered")
	}, func(err error) { errs <- err })
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("engine:\n  angle: turns\n"), 0644))

	select {
	case err := <-errs:
		assert.Contains(t, err.Error(), "reloading config")
		assert.Contains(t, err.Error(), "engine.angle")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload error")
	}
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	path := writeConfig(t, "engine:\n  angle: rad\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := Watch(ctx, path, noEnv, func(*Config) {
		t.Error("unrelated file triggered a reload")
	}, nil)
	require.NoError(t, err)
	defer w.Close()

	other := filepath.Join(filepath.Dir(path), "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("hello"), 0644))

	time.Sleep(3 * debounce)
	assert.Zero(t, w.Reloads())
}

func TestWatchRequiresPath(t *testing.T) {
	_, err := Watch(context.Background(), "", noEnv, func(*Config) {}, nil)
	assert.Error(t, err)
}
