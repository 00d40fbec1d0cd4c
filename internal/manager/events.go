package manager

// Event names published after successful mutations.
const (
	EventBasePathChanged    = "base_path_changed"
	EventClickRecorded      = "click_recorded"
	EventSidecarSaved       = "sidecar_saved"
	EventPreviewUploaded    = "preview_uploaded"
	EventPreviewSwapped     = "preview_swapped"
	EventComboCreated       = "combination_created"
	EventComboDeleted       = "combination_deleted"
	EventComboPreviewAdded  = "combination_preview_added"
	EventComboPreviewRemove = "combination_preview_removed"
)

// Event represents a catalog mutation.
// Minimal and stable: name + subject (model name, path or combination id) and
// optional fields via key/values.
type Event struct {
	Name    string
	Subject string
	Fields  map[string]any
}

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
