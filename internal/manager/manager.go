package manager

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"loradex/internal/classifier"
	"loradex/internal/clicks"
	"loradex/internal/combos"
	"loradex/internal/common/fsutil"
	"loradex/internal/config"
	"loradex/internal/registry"
	"loradex/internal/sidecar"
	"loradex/pkg/types"
)

type Manager struct {
	cfg       *config.Store
	scanner   *registry.Scanner
	sidecars  *sidecar.Store
	ledger    *clicks.Ledger
	publisher EventPublisher
	log       zerolog.Logger
	startTime time.Time

	// Change tracking; see watch.go.
	mu         sync.RWMutex
	watcher    *registry.Watcher
	genOffset  uint64
	lastChange int64
	rewatch    chan struct{}
}

func New(store *config.Store, clicksFile string) *Manager {
	return NewWithConfig(ManagerConfig{Config: store, ClicksFile: clicksFile})
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	if cfg.Config == nil {
		cfg.Config = config.NewStore("", config.Config{})
	}
	if cfg.ScanWorkers <= 0 {
		cfg.ScanWorkers = defaultScanWorkers
	}
	if cfg.ClicksFile == "" {
		cfg.ClicksFile = defaultClicksFile
	}
	if cfg.Classifier == nil {
		cfg.Classifier = classifier.Default()
	}
	if cfg.Publisher == nil {
		cfg.Publisher = noopPublisher{}
	}
	sidecars := sidecar.NewStore(cfg.Logger)
	scanner := registry.NewScanner(registry.Options{
		Classifier: cfg.Classifier,
		Sidecars:   sidecars,
		Workers:    cfg.ScanWorkers,
		Logger:     cfg.Logger,
	})
	return &Manager{
		cfg:       cfg.Config,
		scanner:   scanner,
		sidecars:  sidecars,
		ledger:    clicks.New(cfg.ClicksFile, cfg.Logger),
		publisher: cfg.Publisher,
		log:       cfg.Logger,
		startTime: time.Now(),
		rewatch:   make(chan struct{}, 1),
	}
}

// Ready reports whether the configured base path is a usable directory.
func (m *Manager) Ready() bool {
	_, err := m.basePath()
	return err == nil
}

// Config returns the user-facing configuration.
func (m *Manager) Config() types.ServiceConfig {
	return types.ServiceConfig{LoraPath: m.cfg.Get().LoraPath}
}

// SetConfig changes the base directory. The new path must be an existing
// directory; the change is persisted and the watcher is moved over.
func (m *Manager) SetConfig(c types.ServiceConfig) error {
	if c.LoraPath == "" {
		return ErrInvalidParameters("lora_path is required")
	}
	exp, err := fsutil.ExpandHome(c.LoraPath)
	if err != nil || !fsutil.IsDir(exp) {
		return ErrInvalidBasePath(c.LoraPath)
	}
	if err := m.cfg.SetBasePath(c.LoraPath); err != nil {
		return err
	}
	m.log.Info().Str("op", "set_config").Str("path", c.LoraPath).Msg("base path changed")
	m.publisher.Publish(Event{Name: EventBasePathChanged, Subject: c.LoraPath})
	select {
	case m.rewatch <- struct{}{}:
	default:
	}
	return nil
}

// BaseModels returns the closed label set the classifier may emit.
func (m *Manager) BaseModels() []string {
	return append([]string(nil), types.BaseModels...)
}

// basePath returns the configured base directory or InvalidBasePath.
func (m *Manager) basePath() (string, error) {
	p := m.cfg.BasePath()
	if p == "" || !fsutil.IsDir(p) {
		return "", ErrInvalidBasePath(p)
	}
	return p, nil
}

// combos returns the combination store under the current base path.
func (m *Manager) combos() (*combos.Store, error) {
	base, err := m.basePath()
	if err != nil {
		return nil, err
	}
	return combos.NewStore(filepath.Join(base, combos.DirName), m.log), nil
}
