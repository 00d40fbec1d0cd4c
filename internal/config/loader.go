package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"loradex/internal/common/fsutil"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr         string   `json:"addr,omitempty" yaml:"addr,omitempty" toml:"addr,omitempty"`
	LoraPath     string   `json:"lora_path" yaml:"lora_path" toml:"lora_path"`
	DataDir      string   `json:"data_dir,omitempty" yaml:"data_dir,omitempty" toml:"data_dir,omitempty"`
	ClicksFile   string   `json:"clicks_file,omitempty" yaml:"clicks_file,omitempty" toml:"clicks_file,omitempty"`
	LogLevel     string   `json:"log_level,omitempty" yaml:"log_level,omitempty" toml:"log_level,omitempty"`
	LogFormat    string   `json:"log_format,omitempty" yaml:"log_format,omitempty" toml:"log_format,omitempty"`
	CORSEnabled  bool     `json:"cors_enabled,omitempty" yaml:"cors_enabled,omitempty" toml:"cors_enabled,omitempty"`
	CORSOrigins  []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty" toml:"cors_origins,omitempty"`
	MaxBodyBytes int64    `json:"max_body_bytes,omitempty" yaml:"max_body_bytes,omitempty" toml:"max_body_bytes,omitempty"`
	UploadRPS    float64  `json:"upload_rps,omitempty" yaml:"upload_rps,omitempty" toml:"upload_rps,omitempty"`
	UploadBurst  int      `json:"upload_burst,omitempty" yaml:"upload_burst,omitempty" toml:"upload_burst,omitempty"`
	ScanWorkers  int      `json:"scan_workers,omitempty" yaml:"scan_workers,omitempty" toml:"scan_workers,omitempty"`
	Watch        bool     `json:"watch,omitempty" yaml:"watch,omitempty" toml:"watch,omitempty"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil { return cfg, err }
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil { return cfg, err }
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil { return cfg, err }
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// Save writes cfg to path in the format implied by its extension, creating
// the parent directory when needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return fmt.Errorf("empty config path")
	}
	var (
		b   []byte
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		b, err = yaml.Marshal(cfg)
	case ".json":
		b, err = json.MarshalIndent(cfg, "", "    ")
	case ".toml":
		b, err = toml.Marshal(cfg)
	default:
		return fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, b, 0o644)
}

// Merge overlays the non-zero fields of o onto c. Boolean fields can only be
// switched on this way.
func (c *Config) Merge(o Config) {
	if o.Addr != "" {
		c.Addr = o.Addr
	}
	if o.LoraPath != "" {
		c.LoraPath = o.LoraPath
	}
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.ClicksFile != "" {
		c.ClicksFile = o.ClicksFile
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		c.LogFormat = o.LogFormat
	}
	if o.CORSEnabled {
		c.CORSEnabled = true
	}
	if len(o.CORSOrigins) > 0 {
		c.CORSOrigins = append([]string(nil), o.CORSOrigins...)
	}
	if o.MaxBodyBytes > 0 {
		c.MaxBodyBytes = o.MaxBodyBytes
	}
	if o.UploadRPS > 0 {
		c.UploadRPS = o.UploadRPS
	}
	if o.UploadBurst > 0 {
		c.UploadBurst = o.UploadBurst
	}
	if o.ScanWorkers > 0 {
		c.ScanWorkers = o.ScanWorkers
	}
	if o.Watch {
		c.Watch = true
	}
}
