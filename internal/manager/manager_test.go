package manager

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loradex/internal/config"
	"loradex/internal/safetensors"
	"loradex/pkg/types"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newTestManager(t *testing.T) (*Manager, string, *MemoryPublisher) {
	t.Helper()
	base := t.TempDir()
	pub := NewMemoryPublisher()
	m := NewWithConfig(ManagerConfig{
		Config:     config.NewStore("", config.Config{LoraPath: base}),
		ClicksFile: filepath.Join(t.TempDir(), "clicks.json"),
		Logger:     zerolog.Nop(),
		Publisher:  pub,
	})
	return m, base, pub
}

func writeModel(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	b, err := safetensors.EncodeHeader(nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), b, 0o644))
}

func writeFile(t *testing.T, p string, b []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, b, 0o644))
}

func TestLoraFiles_EndToEndScenario(t *testing.T) {
	m, base, _ := newTestManager(t)
	writeModel(t, base, "foo.safetensors")
	writeFile(t, filepath.Join(base, "foo.png"), pngBytes)
	writeFile(t, filepath.Join(base, "foo.json"), []byte(`{"notes":"test"}`))

	res, err := m.LoraFiles(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "/", res.CurrentPath)
	require.Len(t, res.LoraFiles, 1)
	e := res.LoraFiles[0]
	assert.True(t, e.HasPreview)
	assert.True(t, e.HasConfig)
	assert.Equal(t, "test", e.Config.Notes)
	assert.Equal(t, 0, e.GlobalClicks)
}

func TestBasePathPrecondition(t *testing.T) {
	m := NewWithConfig(ManagerConfig{Logger: zerolog.Nop(), ClicksFile: filepath.Join(t.TempDir(), "c.json")})
	assert.False(t, m.Ready())

	_, err := m.LoraFiles(context.Background(), "", "")
	assert.True(t, IsInvalidBasePath(err), "got %v", err)
	_, err = m.ScanAll(context.Background(), "")
	assert.True(t, IsInvalidBasePath(err))
	_, err = m.Combinations()
	assert.True(t, IsInvalidBasePath(err))

	missing := NewWithConfig(ManagerConfig{
		Config:     config.NewStore("", config.Config{LoraPath: filepath.Join(t.TempDir(), "gone")}),
		ClicksFile: filepath.Join(t.TempDir(), "c.json"),
	})
	_, err = missing.Folders("")
	assert.True(t, IsInvalidBasePath(err))
}

func TestPathErrorsAreTranslated(t *testing.T) {
	m, _, _ := newTestManager(t)

	_, err := m.LoraFiles(context.Background(), "../outside", "")
	require.True(t, IsPathEscape(err), "got %v", err)
	he, ok := err.(interface{ StatusCode() int })
	require.True(t, ok)
	assert.Equal(t, 403, he.StatusCode())

	_, err = m.Folders("nope")
	assert.True(t, IsPathNotFound(err), "got %v", err)

	err = m.SaveLoraConfig(types.LoraConfigRequest{Path: "a/../..", Name: "x"})
	assert.True(t, IsPathEscape(err), "got %v", err)

	_, err = m.LoraConfig("", "")
	assert.True(t, IsInvalidParameters(err))
	_, err = m.LoraConfig("", "a/b")
	assert.True(t, IsInvalidParameters(err))
}

func TestSaveLoraConfig_DanglingSymlinkIsNotFound(t *testing.T) {
	m, base, pub := newTestManager(t)
	outside := filepath.Join(t.TempDir(), "target.json")
	require.NoError(t, os.Symlink(outside, filepath.Join(base, "evil.json")))

	err := m.SaveLoraConfig(types.LoraConfigRequest{Name: "evil"})
	require.True(t, IsPathNotFound(err), "got %v", err)
	assert.NoFileExists(t, outside)
	assert.Empty(t, pub.Names())
}

func TestSidecarRoundTripCreatesDirectory(t *testing.T) {
	m, base, pub := newTestManager(t)
	cfg := types.SidecarConfig{ActivationText: "x", PreferredWeight: 0.7, Notes: "n", Description: "d", BaseModel: "SD1.5"}

	require.NoError(t, m.SaveLoraConfig(types.LoraConfigRequest{Path: "new/sub", Name: "foo", Config: cfg}))
	assert.FileExists(t, filepath.Join(base, "new", "sub", "foo.json"))

	got, err := m.LoraConfig("new/sub", "foo")
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
	assert.Equal(t, []string{EventSidecarSaved}, pub.Names())

	missing, err := m.LoraConfig("new/sub", "bar")
	require.NoError(t, err)
	assert.Equal(t, types.SidecarConfig{}, missing)
}

func TestRecordClickAnnotatesScans(t *testing.T) {
	m, base, pub := newTestManager(t)
	writeModel(t, filepath.Join(base, "chars"), "foo.safetensors")

	for _, term := range []string{"My Term", "my-term"} {
		_, err := m.RecordClick(types.ClickRequest{ModelName: "foo.safetensors", SearchTerm: term})
		require.NoError(t, err)
	}
	resp, err := m.RecordClick(types.ClickRequest{ModelName: "foo.safetensors"})
	require.NoError(t, err)
	assert.Equal(t, types.ClickResponse{GlobalClicks: 3, SearchClicks: 0}, resp)

	res, err := m.ScanAll(context.Background(), "  my_term ")
	require.NoError(t, err)
	require.Len(t, res.LoraFiles, 1)
	assert.Equal(t, 3, res.LoraFiles[0].GlobalClicks)
	assert.Equal(t, 2, res.LoraFiles[0].SearchClicks)
	assert.Equal(t, "chars", *res.LoraFiles[0].RelativePath)

	_, err = m.RecordClick(types.ClickRequest{})
	assert.True(t, IsInvalidParameters(err))
	assert.Len(t, pub.Events(), 3)
}

func TestModelPreviews(t *testing.T) {
	m, base, _ := newTestManager(t)
	writeModel(t, base, "foo.safetensors")
	writeFile(t, filepath.Join(base, "foo.png"), []byte("primary"))

	up, err := m.UploadPreview("", "foo", pngBytes)
	require.NoError(t, err)
	assert.Equal(t, "foo_1.png", up.Filename)
	assert.Equal(t, "success", up.Status)

	list, err := m.Previews("", "foo")
	require.NoError(t, err)
	assert.Len(t, list.Previews, 2)

	require.NoError(t, m.SwapPreview(types.SwapPreviewRequest{Name: "foo", File: "foo_1.png"}))
	b, err := os.ReadFile(filepath.Join(base, "foo.png"))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, b)

	p, err := m.PreviewFile("", "foo.png")
	require.NoError(t, err)
	assert.Equal(t, "foo.png", filepath.Base(p))

	_, err = m.PreviewFile("", "missing.png")
	assert.True(t, IsPathNotFound(err))
	_, err = m.PreviewFile("", "foo.safetensors")
	assert.True(t, IsInvalidParameters(err))
	_, err = m.UploadPreview("", "foo", nil)
	assert.True(t, IsInvalidParameters(err))
}

func TestCombinationLifecycle(t *testing.T) {
	m, base, pub := newTestManager(t)

	c, err := m.CreateCombination(map[string]any{"name": "duo", "loras": []any{"a", "b"}})
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(base, "lora_combinations", c.ID))

	first, err := m.AddCombinationPreview(c.ID, pngBytes)
	require.NoError(t, err)
	assert.Equal(t, "preview.png", first.Filename)

	err = m.RemoveCombinationPreview(c.ID, "preview.png")
	require.True(t, IsLastPreviewDeleteRejected(err), "got %v", err)
	assert.FileExists(t, filepath.Join(base, "lora_combinations", c.ID, "preview.png"))

	second, err := m.AddCombinationPreview(c.ID, pngBytes)
	require.NoError(t, err)
	require.NoError(t, m.RemoveCombinationPreview(c.ID, second.Filename))

	list, err := m.Combinations()
	require.NoError(t, err)
	require.Len(t, list.Combinations, 1)
	assert.Equal(t, []string{"preview.png"}, list.Combinations[0].Previews)

	// the combinations directory is not a model folder
	folders, err := m.Folders("")
	require.NoError(t, err)
	assert.Empty(t, folders.Folders)

	require.NoError(t, m.DeleteCombination(c.ID))
	assert.True(t, IsCombinationNotFound(m.DeleteCombination(c.ID)))
	_, err = m.CombinationPreviewFile(c.ID, "preview.png")
	assert.True(t, IsCombinationNotFound(err))

	_, err = m.CreateCombination(nil)
	assert.True(t, IsInvalidParameters(err))

	assert.Equal(t, []string{
		EventComboCreated, EventComboPreviewAdded, EventComboPreviewAdded,
		EventComboPreviewRemove, EventComboDeleted,
	}, pub.Names())
}

func TestCreateCombination_ReservedFieldIsInvalid(t *testing.T) {
	m, _, pub := newTestManager(t)
	_, err := m.CreateCombination(map[string]any{"name": "set", "previews": []any{"a"}})
	assert.True(t, IsInvalidParameters(err), "got %v", err)
	assert.Empty(t, pub.Names())
}

func TestSetConfig(t *testing.T) {
	m, _, pub := newTestManager(t)

	assert.True(t, IsInvalidParameters(m.SetConfig(types.ServiceConfig{})))
	assert.True(t, IsInvalidBasePath(m.SetConfig(types.ServiceConfig{LoraPath: filepath.Join(t.TempDir(), "x")})))

	next := t.TempDir()
	require.NoError(t, m.SetConfig(types.ServiceConfig{LoraPath: next}))
	assert.Equal(t, next, m.Config().LoraPath)
	assert.Equal(t, next, m.Status().BasePath)
	assert.Equal(t, []string{EventBasePathChanged}, pub.Names())
}

func TestWatchGenerationIsMonotonic(t *testing.T) {
	m, base, _ := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Watch(ctx)

	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(base, "a.safetensors"), []byte("x"), 0o644)
		return m.Status().CatalogGeneration > 0
	}, 3*time.Second, 50*time.Millisecond)
	before := m.Status().CatalogGeneration

	require.NoError(t, m.SetConfig(types.ServiceConfig{LoraPath: t.TempDir()}))
	require.Eventually(t, func() bool { return m.Status().CatalogGeneration > before }, 3*time.Second, 20*time.Millisecond)
	assert.NotZero(t, m.Status().LastChangeUnix)
	assert.True(t, m.Status().BasePathValid)
}

func TestBaseModelsReturnsCopy(t *testing.T) {
	m, _, _ := newTestManager(t)
	got := m.BaseModels()
	require.Len(t, got, len(types.BaseModels))
	got[0] = "mutated"
	assert.Equal(t, "SDXL-Base", m.BaseModels()[0])
}
