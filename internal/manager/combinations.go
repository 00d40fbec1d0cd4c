package manager

import (
	"loradex/pkg/types"
)

// Combinations lists every stored combination with its previews.
func (m *Manager) Combinations() (types.CombinationsResponse, error) {
	st, err := m.combos()
	if err != nil {
		return types.CombinationsResponse{}, err
	}
	list, err := st.List()
	if err != nil {
		return types.CombinationsResponse{}, err
	}
	return types.CombinationsResponse{Combinations: list}, nil
}

// CreateCombination stores fields as a new combination.
func (m *Manager) CreateCombination(fields map[string]any) (types.Combination, error) {
	if len(fields) == 0 {
		return types.Combination{}, ErrInvalidParameters("combination fields are required")
	}
	st, err := m.combos()
	if err != nil {
		return types.Combination{}, err
	}
	c, err := st.Create(fields)
	if err != nil {
		return types.Combination{}, translate(err, "")
	}
	m.publisher.Publish(Event{Name: EventComboCreated, Subject: c.ID})
	return c, nil
}

// DeleteCombination removes a combination and its previews.
func (m *Manager) DeleteCombination(id string) error {
	st, err := m.combos()
	if err != nil {
		return err
	}
	if err := st.Delete(id); err != nil {
		return translate(err, id)
	}
	m.publisher.Publish(Event{Name: EventComboDeleted, Subject: id})
	return nil
}

// AddCombinationPreview stores data as the next preview of id.
func (m *Manager) AddCombinationPreview(id string, data []byte) (types.UploadPreviewResponse, error) {
	if len(data) == 0 {
		return types.UploadPreviewResponse{}, ErrInvalidParameters("file is required")
	}
	st, err := m.combos()
	if err != nil {
		return types.UploadPreviewResponse{}, err
	}
	file, err := st.AddPreview(id, data)
	if err != nil {
		return types.UploadPreviewResponse{}, translate(err, id)
	}
	m.publisher.Publish(Event{Name: EventComboPreviewAdded, Subject: id, Fields: map[string]any{"file": file}})
	return types.UploadPreviewResponse{Status: "success", Filename: file}, nil
}

// CombinationPreviewFile resolves a combination preview for serving.
func (m *Manager) CombinationPreviewFile(id, file string) (string, error) {
	st, err := m.combos()
	if err != nil {
		return "", err
	}
	p, err := st.PreviewPath(id, file)
	if err != nil {
		return "", translate(err, id)
	}
	return p, nil
}

// RemoveCombinationPreview deletes one preview; the last one is kept.
func (m *Manager) RemoveCombinationPreview(id, file string) error {
	st, err := m.combos()
	if err != nil {
		return err
	}
	if err := st.RemovePreview(id, file); err != nil {
		if !IsCombinationNotFound(translate(err, id)) {
			m.log.Warn().Str("op", "remove_combination_preview").Str("id", id).Str("file", file).Err(err).Msg("preview not removed")
		}
		return translate(err, id)
	}
	m.publisher.Publish(Event{Name: EventComboPreviewRemove, Subject: id, Fields: map[string]any{"file": file}})
	return nil
}
