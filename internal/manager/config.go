package manager

import (
	"github.com/rs/zerolog"

	"loradex/internal/classifier"
	"loradex/internal/config"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultScanWorkers = 4
	defaultClicksFile  = "lora_clicks.json"
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// Config provides the base path; required.
	Config *config.Store
	// ClicksFile is the click ledger document. Relative paths are resolved
	// by the caller; empty means defaultClicksFile in the working directory.
	ClicksFile  string
	ScanWorkers int
	Classifier  *classifier.Classifier
	Logger      zerolog.Logger
	Publisher   EventPublisher
}
