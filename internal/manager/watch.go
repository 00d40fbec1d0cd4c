package manager

import (
	"context"

	"loradex/internal/registry"
)

// Watch tracks filesystem changes under the base path until ctx is done,
// moving to the new directory whenever SetConfig changes it. It blocks.
func (m *Manager) Watch(ctx context.Context) {
	for {
		cancel := func() {}
		if base, err := m.basePath(); err == nil {
			w, err := registry.NewWatcher(base, m.log)
			if err != nil {
				m.log.Warn().Str("op", "watch").Str("path", base).Err(err).Msg("change tracking disabled")
			} else {
				wctx, c := context.WithCancel(ctx)
				cancel = c
				m.setWatcher(w)
				go w.Run(wctx)
				m.log.Debug().Str("op", "watch").Str("path", base).Msg("watching base path")
			}
		}
		select {
		case <-ctx.Done():
			cancel()
			m.setWatcher(nil)
			return
		case <-m.rewatch:
			cancel()
			m.setWatcher(nil)
		}
	}
}

// setWatcher swaps the active watcher. The retired watcher's count is folded
// into the offset, plus one for the switch itself, so the reported
// generation never goes backwards.
func (m *Manager) setWatcher(w *registry.Watcher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watcher != nil {
		m.genOffset += m.watcher.Generation() + 1
		if lc := m.watcher.LastChange(); lc > m.lastChange {
			m.lastChange = lc
		}
	}
	m.watcher = w
}

// generation returns the catalog change counter and the last change time.
func (m *Manager) generation() (uint64, int64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.watcher == nil {
		return m.genOffset, m.lastChange
	}
	last := m.watcher.LastChange()
	if last < m.lastChange {
		last = m.lastChange
	}
	return m.genOffset + m.watcher.Generation(), last
}
