package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"loradex/internal/common/fsutil"
	"loradex/internal/config"
)

const envPrefix = "LORADEX_"

// defaults returns the built-in configuration.
func defaults() config.Config {
	return config.Config{
		Addr:         ":5000",
		DataDir:      defaultDataDir(),
		ClicksFile:   "lora_clicks.json",
		LogLevel:     "info",
		LogFormat:    "console",
		MaxBodyBytes: 1 << 20,
		UploadBurst:  5,
		ScanWorkers:  4,
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "loradex")
	}
	return ".loradex"
}

// loadConfig resolves the effective configuration. Precedence, highest
// first: flags, LORADEX_* environment (a .env file in the working directory
// is loaded first), the config file, built-in defaults. It returns the path
// the config should be persisted to.
func loadConfig(cmd *cobra.Command) (config.Config, string, error) {
	_ = godotenv.Load()

	cfg := defaults()
	cfg.DataDir = expandHome(pick(cmd, "data-dir", "DATA_DIR", cfg.DataDir))

	path := pick(cmd, "config", "CONFIG", "")
	explicit := path != ""
	if !explicit {
		path = filepath.Join(cfg.DataDir, "config.json")
	}
	path = expandHome(path)
	if fsutil.PathExists(path) {
		fileCfg, err := config.Load(path)
		if err != nil {
			return cfg, path, fmt.Errorf("load config %s: %w", path, err)
		}
		// data_dir in the file only moves the ledger, not the config file itself.
		cfg.Merge(fileCfg)
	} else if explicit {
		return cfg, path, fmt.Errorf("config file not found: %s", path)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, path, err
	}
	if err := applyFlags(cmd, &cfg); err != nil {
		return cfg, path, err
	}
	return cfg, path, nil
}

// pick returns the flag value when set, else the environment value, else fallback.
func pick(cmd *cobra.Command, flag, env, fallback string) string {
	if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
		return f.Value.String()
	}
	return getEnv(envPrefix+env, fallback)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func applyEnv(cfg *config.Config) error {
	cfg.Addr = getEnv(envPrefix+"ADDR", cfg.Addr)
	cfg.LoraPath = getEnv(envPrefix+"LORA_PATH", cfg.LoraPath)
	cfg.ClicksFile = getEnv(envPrefix+"CLICKS_FILE", cfg.ClicksFile)
	cfg.LogLevel = getEnv(envPrefix+"LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv(envPrefix+"LOG_FORMAT", cfg.LogFormat)
	if v := getEnv(envPrefix+"CORS_ORIGINS", ""); v != "" {
		cfg.CORSOrigins = splitCSV(v)
	}

	var err error
	if cfg.CORSEnabled, err = envBool("CORS_ENABLED", cfg.CORSEnabled); err != nil {
		return err
	}
	if cfg.Watch, err = envBool("WATCH", cfg.Watch); err != nil {
		return err
	}
	if v := getEnv(envPrefix+"MAX_BODY_BYTES", ""); v != "" {
		if cfg.MaxBodyBytes, err = strconv.ParseInt(v, 10, 64); err != nil {
			return fmt.Errorf("%sMAX_BODY_BYTES: %w", envPrefix, err)
		}
	}
	if v := getEnv(envPrefix+"UPLOAD_RPS", ""); v != "" {
		if cfg.UploadRPS, err = strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("%sUPLOAD_RPS: %w", envPrefix, err)
		}
	}
	if cfg.UploadBurst, err = envInt("UPLOAD_BURST", cfg.UploadBurst); err != nil {
		return err
	}
	if cfg.ScanWorkers, err = envInt("SCAN_WORKERS", cfg.ScanWorkers); err != nil {
		return err
	}
	return nil
}

func envBool(name string, fallback bool) (bool, error) {
	v := getEnv(envPrefix+name, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("%s%s: %w", envPrefix, name, err)
	}
	return b, nil
}

func envInt(name string, fallback int) (int, error) {
	v := getEnv(envPrefix+name, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("%s%s: %w", envPrefix, name, err)
	}
	return n, nil
}

// applyFlags copies every flag the user set explicitly onto cfg. Flags not
// defined on cmd are ignored.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	changed := func(name string) bool {
		f := fs.Lookup(name)
		return f != nil && f.Changed
	}
	var err error
	if changed("addr") {
		if cfg.Addr, err = fs.GetString("addr"); err != nil {
			return err
		}
	}
	if changed("lora-path") {
		if cfg.LoraPath, err = fs.GetString("lora-path"); err != nil {
			return err
		}
	}
	if changed("clicks-file") {
		if cfg.ClicksFile, err = fs.GetString("clicks-file"); err != nil {
			return err
		}
	}
	if changed("log-level") {
		if cfg.LogLevel, err = fs.GetString("log-level"); err != nil {
			return err
		}
	}
	if changed("log-format") {
		if cfg.LogFormat, err = fs.GetString("log-format"); err != nil {
			return err
		}
	}
	if changed("cors") {
		if cfg.CORSEnabled, err = fs.GetBool("cors"); err != nil {
			return err
		}
	}
	if changed("cors-origins") {
		v, err := fs.GetString("cors-origins")
		if err != nil {
			return err
		}
		cfg.CORSOrigins = splitCSV(v)
	}
	if changed("max-body-bytes") {
		if cfg.MaxBodyBytes, err = fs.GetInt64("max-body-bytes"); err != nil {
			return err
		}
	}
	if changed("upload-rps") {
		if cfg.UploadRPS, err = fs.GetFloat64("upload-rps"); err != nil {
			return err
		}
	}
	if changed("upload-burst") {
		if cfg.UploadBurst, err = fs.GetInt("upload-burst"); err != nil {
			return err
		}
	}
	if changed("scan-workers") {
		if cfg.ScanWorkers, err = fs.GetInt("scan-workers"); err != nil {
			return err
		}
	}
	if changed("watch") {
		if cfg.Watch, err = fs.GetBool("watch"); err != nil {
			return err
		}
	}
	return nil
}

// expandHome is fsutil.ExpandHome that keeps the input when the home
// directory is unknown.
func expandHome(p string) string {
	if exp, err := fsutil.ExpandHome(p); err == nil {
		return exp
	}
	return p
}

// clicksPath resolves the ledger file against the data dir.
func clicksPath(cfg config.Config) string {
	p := expandHome(cfg.ClicksFile)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cfg.DataDir, p)
}

// splitCSV splits a comma-separated list, trimming blanks and dropping empties.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// newLogger builds the process logger. "off" disables logging entirely.
func newLogger(level, format string) zerolog.Logger {
	lvl := zerolog.InfoLevel
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "off":
		lvl = zerolog.Disabled
	case "":
	default:
		if l, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil {
			lvl = l
		}
	}
	if format == "json" {
		return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
