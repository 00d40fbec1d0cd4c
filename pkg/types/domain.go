package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// UnknownBaseModel is the label used when no classification signal fires.
const UnknownBaseModel = "Unknown"

// BaseModels is the closed set of labels the classifier may emit, besides Unknown.
var BaseModels = []string{
	"SDXL-Base",
	"SDXL-Turbo",
	"SDXL-Lightning",
	"SDXL-Illustrious",
	"SDXL-AnimalPony",
	"SDXL-Juggernaut",
	"SDXL-Reborn",
	"SD1.5",
	"SD1.5-Anything",
	"SD2.0",
	"SD2.1",
}

// ModelFileEntry is one catalog row. It is rebuilt on every scan.
type ModelFileEntry struct {
	// File name including extension.
	// example: foo.safetensors
	Name string `json:"name" example:"foo.safetensors"`
	// File name with the model extension stripped.
	// example: foo
	BaseName string `json:"base_name" example:"foo"`
	// Whether a sibling preview image was found.
	HasPreview bool `json:"has_preview"`
	// Whether a sibling sidecar JSON file was found.
	HasConfig bool `json:"has_config"`
	// API reference to the first matching preview image, null when absent.
	// example: /preview?path=chars&file=foo.png
	PreviewPath *string `json:"preview_path" example:"/preview?path=chars&file=foo.png"`
	// Derived metadata (embedded block + classification).
	Metadata DerivedMetadata `json:"metadata"`
	// Sidecar configuration; all defaults when no sidecar exists.
	Config SidecarConfig `json:"config"`
	// Directory of the file relative to the base path. Only set by tree scans.
	RelativePath *string `json:"relative_path,omitempty"`
	// Global click count.
	GlobalClicks int `json:"global_clicks"`
	// Click count under the normalized search term of the request.
	SearchClicks int `json:"search_clicks"`
}

// DerivedMetadata is the embedded metadata passthrough plus the classifier output.
type DerivedMetadata struct {
	BaseModelVersion string `json:"ss_base_model_version"`
	NetworkModule    string `json:"ss_network_module"`
	NetworkDim       string `json:"ss_network_dim"`
	NetworkAlpha     string `json:"ss_network_alpha"`
	TrainingComment  string `json:"ss_training_comment"`
	SDModelName      string `json:"ss_sd_model_name"`

	// Classifier best guess; never empty.
	// example: SDXL-Illustrious
	BaseModel string `json:"base_model" example:"SDXL-Illustrious"`
	// Raw version strings found, in discovery order.
	ModelInfo []string `json:"model_info"`
	// Accumulated confidence per candidate label, in insertion order.
	ModelScores Scores `json:"model_scores"`

	CreatedTime  int64 `json:"created_time"`
	ModifiedTime int64 `json:"modified_time"`
}

// Score is one accumulated classifier score.
type Score struct {
	Label string
	Value int
}

// Scores is an insertion-ordered score table. It encodes as a JSON object
// whose keys keep insertion order.
type Scores []Score

// Add adds delta to label, appending the label if it is new.
func (s *Scores) Add(label string, delta int) {
	for i := range *s {
		if (*s)[i].Label == label {
			(*s)[i].Value += delta
			return
		}
	}
	*s = append(*s, Score{Label: label, Value: delta})
}

// Get returns the score of label, 0 when absent.
func (s Scores) Get(label string) int {
	for _, sc := range s {
		if sc.Label == label {
			return sc.Value
		}
	}
	return 0
}

// Best returns the highest positive score. Ties go to the first inserted label.
func (s Scores) Best() (string, bool) {
	best, bestVal := "", 0
	for _, sc := range s {
		if sc.Value > bestVal {
			best, bestVal = sc.Label, sc.Value
		}
	}
	return best, bestVal > 0
}

func (s Scores) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sc := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(sc.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		fmt.Fprintf(&buf, ":%d", sc.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object; key order is not preserved by encoding/json,
// so labels are sorted for a stable result.
func (s *Scores) UnmarshalJSON(b []byte) error {
	var m map[string]int
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(Scores, 0, len(keys))
	for _, k := range keys {
		out = append(out, Score{Label: k, Value: m[k]})
	}
	*s = out
	return nil
}

// SidecarConfig is the API shape of a model's user-editable sidecar.
type SidecarConfig struct {
	// example: Soft watercolor style
	Description string `json:"description" example:"Soft watercolor style"`
	// example: wtrcolor
	ActivationText string `json:"activation_text" example:"wtrcolor"`
	// example: 0.8
	PreferredWeight float64 `json:"preferred_weight" example:"0.8"`
	Notes           string  `json:"notes"`
	// Base model override entered by the user.
	BaseModel string `json:"base_model"`
}

// Combination is a named group of model files. Fields holds the caller-supplied
// attributes verbatim; ID and CreatedAt are owned by the store.
type Combination struct {
	ID        string
	CreatedAt int64
	Fields    map[string]any
	// First preview reference, set by listings.
	PreviewPath *string
	// All preview file names, set by listings.
	Previews []string
}

func (c Combination) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(c.Fields)+4)
	for k, v := range c.Fields {
		m[k] = v
	}
	m["id"] = c.ID
	m["created_at"] = c.CreatedAt
	if c.PreviewPath != nil {
		m["preview_path"] = *c.PreviewPath
	}
	if c.Previews != nil {
		m["previews"] = c.Previews
	}
	return json.Marshal(m)
}

func (c *Combination) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	out := Combination{Fields: make(map[string]any, len(m))}
	for k, v := range m {
		switch k {
		case "id":
			s, _ := v.(string)
			out.ID = s
		case "created_at":
			if f, ok := v.(float64); ok {
				out.CreatedAt = int64(f)
			}
		case "preview_path", "previews":
		default:
			out.Fields[k] = v
		}
	}
	*c = out
	return nil
}
