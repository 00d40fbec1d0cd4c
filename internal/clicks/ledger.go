// Package clicks keeps per-model click counters, globally and per normalized
// search term, in a single JSON document.
package clicks

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"loradex/internal/common/fsutil"
	"loradex/pkg/types"
)

var separatorRun = regexp.MustCompile(`[\s-]+`)

// Normalize maps a search term to its bucket key: lowercased, trimmed, with
// runs of whitespace or hyphens collapsed into one underscore.
func Normalize(term string) string {
	t := strings.TrimSpace(strings.ToLower(term))
	return separatorRun.ReplaceAllString(t, "_")
}

// Document is the on-disk ledger.
type Document struct {
	Global map[string]int            `json:"global"`
	Search map[string]map[string]int `json:"search"`
}

func newDocument() Document {
	return Document{Global: map[string]int{}, Search: map[string]map[string]int{}}
}

// Counts returns the global count of model and its count under term. The
// term is normalized here, so callers pass it as typed.
func (d Document) Counts(model, term string) (global, search int) {
	global = d.Global[model]
	if key := Normalize(term); key != "" {
		search = d.Search[key][model]
	}
	return global, search
}

// Annotate sets the click fields of e without touching the ledger.
func (d Document) Annotate(e *types.ModelFileEntry, term string) {
	e.GlobalClicks, e.SearchClicks = d.Counts(e.Name, term)
}

// Decode parses a ledger document. A legacy flat {name: count} map is
// migrated into the global bucket; missing buckets are created.
func Decode(b []byte) (Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(b, &top); err != nil {
		return Document{}, err
	}
	doc := newDocument()
	_, hasGlobal := top["global"]
	_, hasSearch := top["search"]
	if !hasGlobal && !hasSearch {
		for name, raw := range top {
			var n int
			if err := json.Unmarshal(raw, &n); err != nil {
				return Document{}, fmt.Errorf("legacy entry %q: %w", name, err)
			}
			doc.Global[name] = n
		}
		return doc, nil
	}
	if hasGlobal {
		if err := json.Unmarshal(top["global"], &doc.Global); err != nil {
			return Document{}, fmt.Errorf("global: %w", err)
		}
	}
	if hasSearch {
		if err := json.Unmarshal(top["search"], &doc.Search); err != nil {
			return Document{}, fmt.Errorf("search: %w", err)
		}
	}
	if doc.Global == nil {
		doc.Global = map[string]int{}
	}
	if doc.Search == nil {
		doc.Search = map[string]map[string]int{}
	}
	return doc, nil
}

// Ledger persists a Document at a fixed path. Every mutation rewrites the
// whole document. The mutex serializes read-modify-write cycles within one
// process; other writers of the same file are last-writer-wins.
type Ledger struct {
	mu   sync.Mutex
	path string
	log  zerolog.Logger
}

// New returns a Ledger stored at path.
func New(path string, l zerolog.Logger) *Ledger {
	return &Ledger{path: path, log: l}
}

// Path returns the ledger file location.
func (l *Ledger) Path() string { return l.path }

// Snapshot reads the current document. A missing file is an empty ledger; an
// unparsable one is logged and treated as empty.
func (l *Ledger) Snapshot() Document {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadLocked()
}

// Record adds one click for model, and one under term when term normalizes to
// a non-empty key. It returns the updated global and search counts.
func (l *Ledger) Record(model, term string) (global, search int, err error) {
	if model == "" {
		return 0, 0, errors.New("clicks: empty model name")
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	doc := l.loadLocked()
	doc.Global[model]++
	global = doc.Global[model]
	if key := Normalize(term); key != "" {
		bucket := doc.Search[key]
		if bucket == nil {
			bucket = map[string]int{}
			doc.Search[key] = bucket
		}
		bucket[model]++
		search = bucket[model]
	}
	if err := l.saveLocked(doc); err != nil {
		return 0, 0, err
	}
	return global, search, nil
}

func (l *Ledger) loadLocked() Document {
	b, err := os.ReadFile(l.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			l.log.Warn().Str("op", "read_ledger").Str("path", l.path).Err(err).Msg("click ledger read failed, starting from zero")
		}
		return newDocument()
	}
	doc, err := Decode(b)
	if err != nil {
		l.log.Warn().Str("op", "parse_ledger").Str("path", l.path).Err(err).Msg("click ledger parse failed, starting from zero")
		return newDocument()
	}
	return doc
}

func (l *Ledger) saveLocked(doc Document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	if err := fsutil.WriteFileAtomic(l.path, b, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}
