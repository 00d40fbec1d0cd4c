package safetensors

import (
	"github.com/rs/zerolog"
)

// Metadata keys read from the embedded block.
const (
	KeyBaseModelVersion = "ss_base_model_version"
	KeyNetworkModule    = "ss_network_module"
	KeyNetworkDim       = "ss_network_dim"
	KeyNetworkAlpha     = "ss_network_alpha"
	KeyTrainingComment  = "ss_training_comment"
	KeySDModelName      = "ss_sd_model_name"
)

// Metadata is the fixed set of recognized keys.
type Metadata struct {
	BaseModelVersion string
	NetworkModule    string
	NetworkDim       string
	NetworkAlpha     string
	TrainingComment  string
	SDModelName      string
}

// Extractor opens model files and pulls out Metadata.
type Extractor struct {
	log zerolog.Logger
}

// NewExtractor returns an Extractor logging failures to l.
func NewExtractor(l zerolog.Logger) *Extractor { return &Extractor{log: l} }

// Extract reads the metadata block of path. Read or parse failures are logged
// and yield a zero Metadata together with the cause, so callers can keep
// building the catalog.
func (e *Extractor) Extract(path string) (Metadata, error) {
	raw, err := ReadMetadata(path)
	if err != nil {
		e.log.Warn().Str("op", "read_metadata").Str("path", path).Err(err).Msg("metadata read failed")
		return Metadata{}, err
	}
	return FromMap(raw), nil
}

// FromMap applies defaults to a raw metadata map.
func FromMap(raw map[string]string) Metadata {
	md := Metadata{
		BaseModelVersion: raw[KeyBaseModelVersion],
		NetworkModule:    raw[KeyNetworkModule],
		NetworkDim:       raw[KeyNetworkDim],
		NetworkAlpha:     raw[KeyNetworkAlpha],
		TrainingComment:  raw[KeyTrainingComment],
		SDModelName:      raw[KeySDModelName],
	}
	if md.BaseModelVersion == "" {
		md.BaseModelVersion = "Unknown"
	}
	return md
}
