package manager

import (
	"path/filepath"
	"strings"

	"loradex/internal/common/fsutil"
	"loradex/internal/registry"
	"loradex/pkg/types"
)

var servableImage = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true}

// PreviewFile resolves a model preview image for serving.
func (m *Manager) PreviewFile(rel, file string) (string, error) {
	base, err := m.basePath()
	if err != nil {
		return "", err
	}
	if err := plainName("file", file); err != nil {
		return "", err
	}
	if !servableImage[strings.ToLower(filepath.Ext(file))] {
		return "", ErrInvalidParameters("file is not an image")
	}
	rel = joinRel(cleanRel(rel), file)
	p, err := fsutil.ResolveWithin(base, rel)
	if err != nil {
		return "", translate(err, rel)
	}
	if fsutil.IsDir(p) {
		return "", ErrPathNotFound(rel)
	}
	return p, nil
}

// Previews lists every preview of model name in rel.
func (m *Manager) Previews(rel, name string) (types.PreviewsResponse, error) {
	base, err := m.basePath()
	if err != nil {
		return types.PreviewsResponse{}, err
	}
	if err := plainName("name", name); err != nil {
		return types.PreviewsResponse{}, err
	}
	rel = cleanRel(rel)
	refs, err := registry.ListPreviews(base, rel, name)
	if err != nil {
		return types.PreviewsResponse{}, translate(err, rel)
	}
	return types.PreviewsResponse{Previews: refs}, nil
}

// UploadPreview stores data as a new numbered preview of name.
func (m *Manager) UploadPreview(rel, name string, data []byte) (types.UploadPreviewResponse, error) {
	base, err := m.basePath()
	if err != nil {
		return types.UploadPreviewResponse{}, err
	}
	if err := plainName("lora_name", name); err != nil {
		return types.UploadPreviewResponse{}, err
	}
	if len(data) == 0 {
		return types.UploadPreviewResponse{}, ErrInvalidParameters("file is required")
	}
	rel = cleanRel(rel)
	file, err := registry.SavePreview(base, rel, name, data)
	if err != nil {
		m.log.Error().Str("op", "upload_preview").Str("path", rel).Str("name", name).Err(err).Msg("preview upload failed")
		return types.UploadPreviewResponse{}, translate(err, rel)
	}
	m.log.Info().Str("op", "upload_preview").Str("path", rel).Str("file", file).Msg("preview stored")
	m.publisher.Publish(Event{Name: EventPreviewUploaded, Subject: joinRel(rel, file)})
	return types.UploadPreviewResponse{Status: "success", Filename: file}, nil
}

// SwapPreview makes req.File the primary preview of req.Name.
func (m *Manager) SwapPreview(req types.SwapPreviewRequest) error {
	base, err := m.basePath()
	if err != nil {
		return err
	}
	if err := plainName("name", req.Name); err != nil {
		return err
	}
	if err := plainName("file", req.File); err != nil {
		return err
	}
	rel := cleanRel(req.Path)
	if err := registry.SwapPreview(base, rel, req.Name, req.File); err != nil {
		m.log.Error().Str("op", "swap_preview").Str("path", rel).Str("file", req.File).Err(err).Msg("preview swap failed")
		return translate(err, joinRel(rel, req.File))
	}
	m.publisher.Publish(Event{Name: EventPreviewSwapped, Subject: joinRel(rel, req.Name)})
	return nil
}
