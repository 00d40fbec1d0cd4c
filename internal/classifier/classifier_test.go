package classifier

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loradex/internal/safetensors"
)

func md(version, comment, modelName string) safetensors.Metadata {
	return safetensors.Metadata{BaseModelVersion: version, TrainingComment: comment, SDModelName: modelName}
}

func plainPath(name string) string { return filepath.Join("/data", "loras", name) }

func TestClassify_NoSignal(t *testing.T) {
	res := Default().Classify(md("Unknown", "", ""), "watercolor.safetensors", plainPath("watercolor.safetensors"))
	assert.Equal(t, "Unknown", res.BaseModel)
	assert.Empty(t, res.Scores)
	assert.Empty(t, res.ModelInfo)
}

func TestClassify_CommentDominatesFilename(t *testing.T) {
	name := "illustrious_style.safetensors"
	res := Default().Classify(md("", "trained on pony v6", ""), name, plainPath(name))
	assert.Equal(t, LabelAnimalPony, res.BaseModel)
	// filename tier is gated off once AnimalPony has evidence
	assert.Equal(t, 0, res.Scores.Get(LabelIllustrious))
	assert.Equal(t, WeightComment, res.Scores.Get(LabelAnimalPony))
}

func TestClassify_FilenameOnly(t *testing.T) {
	for _, name := range []string{
		"illust_girl.safetensors",
		"my_ill_style.safetensors",
		"il-lineart.safetensors",
		"il_flat.safetensors",
		"flat-color-ill.safetensors",
		"Flat Color IL.safetensors",
	} {
		res := Default().Classify(md("", "", ""), name, plainPath(name))
		assert.Equal(t, LabelIllustrious, res.BaseModel, name)
		assert.Equal(t, WeightFilename, res.Scores.Get(LabelIllustrious), name)
	}
}

func TestClassify_CommentElifPrefersPony(t *testing.T) {
	res := Default().Classify(md("", "pony and illustrious mix", ""), "x.safetensors", plainPath("x.safetensors"))
	assert.Equal(t, WeightComment, res.Scores.Get(LabelAnimalPony))
	assert.Equal(t, 0, res.Scores.Get(LabelIllustrious))
}

func TestClassify_AdditiveTiers(t *testing.T) {
	p := filepath.Join("/data", "Illustrious", "il_chars", "style.safetensors")
	res := Default().Classify(md("", "illustrious xl 0.1", "illustriousXL_v01.safetensors"), "style.safetensors", p)
	require.Equal(t, LabelIllustrious, res.BaseModel)
	assert.Equal(t, WeightComment+WeightModelName+2*WeightPath, res.Scores.Get(LabelIllustrious))
}

func TestClassify_PathVotesAcrossFamilies(t *testing.T) {
	p := filepath.Join("/data", "pony", "ponyxl", "illustrious", "style.safetensors")
	res := Default().Classify(md("", "", ""), "style.safetensors", p)
	assert.Equal(t, 2*WeightPath, res.Scores.Get(LabelAnimalPony))
	assert.Equal(t, WeightPath, res.Scores.Get(LabelIllustrious))
	assert.Equal(t, LabelAnimalPony, res.BaseModel)
}

func TestClassify_FilenameGatedByPonyPath(t *testing.T) {
	p := filepath.Join("/data", "pony", "illust_style.safetensors")
	res := Default().Classify(md("", "", ""), "illust_style.safetensors", p)
	assert.Equal(t, LabelAnimalPony, res.BaseModel)
	assert.Equal(t, 0, res.Scores.Get(LabelIllustrious))
}

func TestClassify_GenericSDXLBase(t *testing.T) {
	res := Default().Classify(md("sdxl_base_v1-0", "", ""), "x.safetensors", plainPath("x.safetensors"))
	assert.Equal(t, LabelSDXLBase, res.BaseModel)
	assert.Equal(t, []string{"sdxl_base_v1-0"}, res.ModelInfo)
	assert.Empty(t, res.Scores)

	res = Default().Classify(md("sdxl_base_v1-0", "", "ponyDiffusionV6XL.safetensors"), "x.safetensors", plainPath("x.safetensors"))
	assert.Equal(t, LabelAnimalPony, res.BaseModel)
}

func TestClassify_TieGoesToFirstInserted(t *testing.T) {
	// equal path votes; the family seen first wins
	p := filepath.Join("/data", "pony", "illustrious", "x.safetensors")
	res := Default().Classify(md("", "", ""), "x.safetensors", p)
	require.Equal(t, res.Scores.Get(LabelAnimalPony), res.Scores.Get(LabelIllustrious))
	assert.Equal(t, LabelAnimalPony, res.BaseModel)

	p = filepath.Join("/data", "illustrious", "pony", "x.safetensors")
	res = Default().Classify(md("", "", ""), "x.safetensors", p)
	assert.Equal(t, LabelIllustrious, res.BaseModel)
}

func TestClassify_CustomVocabulary(t *testing.T) {
	v := DefaultVocabulary()
	v.FilenameFamily = ""
	name := "illust_girl.safetensors"
	res := New(v).Classify(md("", "", ""), name, plainPath(name))
	assert.Equal(t, "Unknown", res.BaseModel)
}
