package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loradex/internal/safetensors"
)

// testCmd mirrors the flag set of serve so flag precedence can be exercised
// without touching the global commands.
func testCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "t", RunE: func(*cobra.Command, []string) error { return nil }}
	f := cmd.Flags()
	f.String("config", "", "")
	f.String("data-dir", "", "")
	f.String("lora-path", "", "")
	f.String("clicks-file", "", "")
	f.String("log-level", "", "")
	f.String("log-format", "", "")
	f.Int("scan-workers", 0, "")
	f.String("addr", "", "")
	f.Bool("cors", false, "")
	f.String("cors-origins", "", "")
	f.Int64("max-body-bytes", 0, "")
	f.Float64("upload-rps", 0, "")
	f.Int("upload-burst", 0, "")
	f.Bool("watch", false, "")
	require.NoError(t, f.Parse(args))
	return cmd
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, path, err := loadConfig(testCmd(t, "--data-dir", dir))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.json"), path)
	assert.Equal(t, ":5000", cfg.Addr)
	assert.Equal(t, 4, cfg.ScanWorkers)
	assert.Equal(t, filepath.Join(dir, "lora_clicks.json"), clicksPath(cfg))
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(file, []byte("addr: \":6000\"\nlora_path: /from/file\nscan_workers: 2\nwatch: true\n"), 0o644))

	t.Setenv("LORADEX_LORA_PATH", "/from/env")
	t.Setenv("LORADEX_SCAN_WORKERS", "3")

	cfg, path, err := loadConfig(testCmd(t, "--config", file, "--scan-workers", "8", "--cors-origins", "a, b"))
	require.NoError(t, err)
	assert.Equal(t, file, path)
	assert.Equal(t, ":6000", cfg.Addr, "file beats default")
	assert.Equal(t, "/from/env", cfg.LoraPath, "env beats file")
	assert.Equal(t, 8, cfg.ScanWorkers, "flag beats env")
	assert.True(t, cfg.Watch)
	assert.Equal(t, []string{"a", "b"}, cfg.CORSOrigins)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	_, _, err := loadConfig(testCmd(t, "--config", filepath.Join(dir, "missing.json")))
	assert.Error(t, err, "explicit missing config file")

	t.Setenv("LORADEX_WATCH", "maybe")
	_, _, err = loadConfig(testCmd(t, "--data-dir", dir))
	assert.Error(t, err, "unparsable boolean")
}

func TestClicksPath(t *testing.T) {
	cfg := defaults()
	cfg.DataDir = "/data"
	cfg.ClicksFile = "/abs/clicks.json"
	assert.Equal(t, "/abs/clicks.json", clicksPath(cfg))
	cfg.ClicksFile = "sub/clicks.json"
	assert.Equal(t, filepath.Join("/data", "sub/clicks.json"), clicksPath(cfg))
}

func TestNewLogger_Levels(t *testing.T) {
	assert.Equal(t, zerolog.Disabled, newLogger("off", "json").GetLevel())
	assert.Equal(t, zerolog.DebugLevel, newLogger("DEBUG", "json").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, newLogger("", "console").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, newLogger("bogus", "json").GetLevel())
}

func TestClassifyCommand(t *testing.T) {
	dir := t.TempDir()
	hdr, err := safetensors.EncodeHeader(map[string]string{
		"ss_base_model_version": "sdxl_base_v1-0",
		"ss_network_dim":        "16",
	})
	require.NoError(t, err)
	file := filepath.Join(dir, "style.safetensors")
	require.NoError(t, os.WriteFile(file, hdr, 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"classify", file})
	t.Cleanup(func() { rootCmd.SetOut(nil); rootCmd.SetArgs(nil) })
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), `"ss_network_dim": "16"`)
	assert.Contains(t, out.String(), `"base_model": "SDXL-Base"`)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetOut(nil); rootCmd.SetArgs(nil) })
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "loradex dev\n", out.String())
}
