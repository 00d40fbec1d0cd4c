package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_CountsRelevantChanges(t *testing.T) {
	base := t.TempDir()
	w, err := NewWatcher(base, zerolog.Nop())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	assert.Zero(t, w.Generation())
	writeModel(t, base, "foo.safetensors", nil)
	require.Eventually(t, func() bool { return w.Generation() > 0 }, 2*time.Second, 10*time.Millisecond)
	assert.NotZero(t, w.LastChange())

	// files in directories created after start are seen too
	sub := filepath.Join(base, "new")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.Eventually(t, func() bool { return w.Generation() > 1 }, 2*time.Second, 10*time.Millisecond)
	before := w.Generation()
	time.Sleep(50 * time.Millisecond)
	writeFile(t, filepath.Join(sub, "bar.png"), "x")
	require.Eventually(t, func() bool { return w.Generation() > before }, 2*time.Second, 10*time.Millisecond)
}

func TestRelevant(t *testing.T) {
	assert.True(t, relevant("/x/a.safetensors"))
	assert.True(t, relevant("/x/a.PNG"))
	assert.True(t, relevant("/x/a.json"))
	assert.False(t, relevant("/x/a.txt"))
	assert.False(t, relevant("/x/lora_clicks.json483920174"))
}
