// Package sidecar reads and writes the per-model JSON sidecar holding
// user-entered notes. On disk the keys use spaces ("activation text"); the API
// uses underscores. The mapping lives in Decode and Encode only.
package sidecar

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"loradex/internal/common/fsutil"
	"loradex/pkg/types"
)

// Extension of sidecar files.
const Extension = ".json"

// SDVersion is the schema marker written into every sidecar.
const SDVersion = "SDXL"

// On-disk key names.
const (
	keyDescription     = "description"
	keyActivationText  = "activation text"
	keyPreferredWeight = "preferred weight"
	keyNotes           = "notes"
	keyBaseModel       = "base_model"
)

// record is the on-disk shape. Field order is the file's key order.
type record struct {
	Description     string  `json:"description"`
	SDVersion       string  `json:"sd version"`
	ActivationText  string  `json:"activation text"`
	PreferredWeight float64 `json:"preferred weight"`
	Notes           string  `json:"notes"`
	BaseModel       string  `json:"base_model"`
}

// FileName returns the sidecar name for a model base name.
func FileName(baseName string) string { return baseName + Extension }

// Decode maps an on-disk sidecar to the API shape. Underscore spellings of
// the spaced keys are accepted as well.
func Decode(b []byte) (types.SidecarConfig, error) {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return types.SidecarConfig{}, err
	}
	if raw == nil {
		return types.SidecarConfig{}, errors.New("sidecar is not a JSON object")
	}
	return types.SidecarConfig{
		Description:     str(raw, keyDescription),
		ActivationText:  str(raw, keyActivationText, "activation_text"),
		PreferredWeight: num(raw, keyPreferredWeight, "preferred_weight"),
		Notes:           str(raw, keyNotes),
		BaseModel:       str(raw, keyBaseModel, "base model"),
	}, nil
}

// Encode maps an API config to the on-disk shape, stamping the schema marker.
func Encode(cfg types.SidecarConfig) ([]byte, error) {
	return json.MarshalIndent(record{
		Description:     cfg.Description,
		SDVersion:       SDVersion,
		ActivationText:  cfg.ActivationText,
		PreferredWeight: cfg.PreferredWeight,
		Notes:           cfg.Notes,
		BaseModel:       cfg.BaseModel,
	}, "", "    ")
}

// Store reads and writes sidecar files.
type Store struct {
	log zerolog.Logger
}

// NewStore returns a Store logging to l.
func NewStore(l zerolog.Logger) *Store { return &Store{log: l} }

// Read returns the sidecar at path. A missing or unparsable file yields an
// all-default config; parse failures are logged.
func (s *Store) Read(path string) types.SidecarConfig {
	b, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn().Str("op", "read_sidecar").Str("path", path).Err(err).Msg("sidecar read failed")
		}
		return types.SidecarConfig{}
	}
	cfg, err := Decode(b)
	if err != nil {
		s.log.Warn().Str("op", "parse_sidecar").Str("path", path).Err(err).Msg("sidecar parse failed")
		return types.SidecarConfig{}
	}
	return cfg
}

// Write replaces the sidecar at path, creating the parent directory.
func (s *Store) Write(path string, cfg types.SidecarConfig) error {
	b, err := Encode(cfg)
	if err != nil {
		return fmt.Errorf("encode sidecar: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create sidecar dir: %w", err)
	}
	if err := fsutil.WriteFileAtomic(path, b, 0o644); err != nil {
		return err
	}
	s.log.Debug().Str("op", "write_sidecar").Str("path", path).Msg("sidecar written")
	return nil
}

func str(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			if s, ok := v.(string); ok {
				return s
			}
			return fmt.Sprint(v)
		}
	}
	return ""
}

func num(raw map[string]any, keys ...string) float64 {
	for _, k := range keys {
		switch v := raw[k].(type) {
		case float64:
			return v
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f
			}
		}
	}
	return 0
}
