package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPreviews(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "c", "foo.png"), "a")
	writeFile(t, filepath.Join(base, "c", "foo_2.png"), "b")
	writeFile(t, filepath.Join(base, "c", "foobar.png"), "c")

	got, err := ListPreviews(base, "c", "foo")
	require.NoError(t, err)
	assert.Equal(t, []string{PreviewRef("c", "foo.png"), PreviewRef("c", "foo_2.png")}, got)

	_, err = ListPreviews(base, "c", "../foo")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestSavePreview_NeverOverwrites(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "foo.png"), "primary")

	name, err := SavePreview(base, "", "foo", []byte("one"))
	require.NoError(t, err)
	assert.Equal(t, "foo_1.png", name)

	// a gap in numbering must not clobber the existing highest file
	require.NoError(t, os.Remove(filepath.Join(base, "foo_1.png")))
	writeFile(t, filepath.Join(base, "foo_2.png"), "two")
	name, err = SavePreview(base, "", "foo", []byte("three"))
	require.NoError(t, err)
	assert.Equal(t, "foo_3.png", name)

	b, err := os.ReadFile(filepath.Join(base, "foo_2.png"))
	require.NoError(t, err)
	assert.Equal(t, "two", string(b))
}

func TestSwapPreview(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "foo.png"), "primary")
	writeFile(t, filepath.Join(base, "foo_1.png"), "alt")

	require.NoError(t, SwapPreview(base, "", "foo", "foo_1.png"))

	b, err := os.ReadFile(filepath.Join(base, "foo.png"))
	require.NoError(t, err)
	assert.Equal(t, "alt", string(b))
	b, err = os.ReadFile(filepath.Join(base, "foo_1.png"))
	require.NoError(t, err)
	assert.Equal(t, "primary", string(b))
}

func TestSwapPreview_NoPrimary(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "foo_4.png"), "alt")

	require.NoError(t, SwapPreview(base, "", "foo", "foo_4.png"))
	assert.FileExists(t, filepath.Join(base, "foo.png"))
	assert.NoFileExists(t, filepath.Join(base, "foo_4.png"))
}

func TestSwapPreview_Rejects(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "bar_1.png"), "x")

	assert.ErrorIs(t, SwapPreview(base, "", "foo", "bar_1.png"), ErrInvalidName)
	assert.ErrorIs(t, SwapPreview(base, "", "foo", "../foo_1.png"), ErrInvalidName)
	assert.Error(t, SwapPreview(base, "", "foo", "foo_9.png"))
}
