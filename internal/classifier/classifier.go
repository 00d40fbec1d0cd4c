// Package classifier guesses the base-model family a model file was trained
// against from several weak signals, accumulating weighted evidence per
// family.
package classifier

import (
	"path/filepath"
	"strings"

	"loradex/internal/safetensors"
	"loradex/pkg/types"
)

// Result is the classifier output.
type Result struct {
	BaseModel string
	ModelInfo []string
	Scores    types.Scores
}

// Classifier applies a Vocabulary. It holds no mutable state and is safe for
// concurrent use.
type Classifier struct {
	vocab Vocabulary
}

// New returns a Classifier over vocab.
func New(vocab Vocabulary) *Classifier { return &Classifier{vocab: vocab} }

// Default returns a Classifier over DefaultVocabulary.
func Default() *Classifier { return New(DefaultVocabulary()) }

// Classify runs the tiers in order: training comment, embedded model name,
// directory segments, file name, then version-tag resolution.
func (c *Classifier) Classify(md safetensors.Metadata, fileName, fullPath string) Result {
	v := c.vocab
	res := Result{ModelInfo: []string{}, Scores: types.Scores{}}

	if fam, ok := c.matchKeywords(md.TrainingComment); ok {
		res.Scores.Add(fam, WeightComment)
	}
	if fam, ok := c.matchKeywords(md.SDModelName); ok {
		res.Scores.Add(fam, WeightModelName)
	}

	for _, seg := range dirSegments(fullPath) {
		for _, fam := range v.Families {
			for _, re := range fam.PathPatterns {
				if re.MatchString(seg) {
					res.Scores.Add(fam.Label, WeightPath)
					break
				}
			}
		}
	}

	if v.FilenameFamily != "" && res.Scores.Get(v.FilenameGate) == 0 && c.matchFilename(fileName) {
		res.Scores.Add(v.FilenameFamily, WeightFilename)
	}

	version := md.BaseModelVersion
	if version != "" && version != types.UnknownBaseModel {
		res.ModelInfo = append(res.ModelInfo, version)
	}

	switch {
	case v.GenericVersionTag != "" && strings.Contains(strings.ToLower(version), v.GenericVersionTag):
		if best, ok := res.Scores.Best(); ok {
			res.BaseModel = best
		} else {
			res.BaseModel = v.GenericLabel
		}
	case len(res.Scores) > 0:
		if best, ok := res.Scores.Best(); ok {
			res.BaseModel = best
		}
	}
	if res.BaseModel == "" {
		res.BaseModel = types.UnknownBaseModel
	}
	return res
}

// matchKeywords returns the first family, in precedence order, with a keyword
// contained in text.
func (c *Classifier) matchKeywords(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	lower := strings.ToLower(text)
	for _, fam := range c.vocab.Families {
		for _, kw := range fam.Keywords {
			if strings.Contains(lower, kw) {
				return fam.Label, true
			}
		}
	}
	return "", false
}

func (c *Classifier) matchFilename(fileName string) bool {
	lower := strings.ToLower(fileName)
	for _, s := range c.vocab.FilenameSubstrings {
		if strings.Contains(lower, s) {
			return true
		}
	}
	stem := strings.TrimSuffix(lower, strings.ToLower(filepath.Ext(lower)))
	tokens := strings.FieldsFunc(stem, func(r rune) bool { return r == '-' || r == '_' || r == ' ' || r == '.' })
	if len(tokens) == 0 {
		return false
	}
	for _, edge := range c.vocab.FilenameEdgeTokens {
		if tokens[0] == edge || tokens[len(tokens)-1] == edge {
			return true
		}
	}
	return false
}

// dirSegments splits the directory part of p into its non-empty components.
func dirSegments(p string) []string {
	if p == "" {
		return nil
	}
	dir := filepath.Dir(filepath.Clean(p))
	return strings.FieldsFunc(filepath.ToSlash(dir), func(r rune) bool { return r == '/' })
}
