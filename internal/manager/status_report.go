package manager

import (
	"time"

	"loradex/pkg/types"
)

// Status builds the response for /status.
func (m *Manager) Status() types.StatusResponse {
	gen, last := m.generation()
	now := time.Now()
	_, err := m.basePath()
	return types.StatusResponse{
		BasePath:          m.cfg.BasePath(),
		BasePathValid:     err == nil,
		CatalogGeneration: gen,
		LastChangeUnix:    last,
		UptimeSeconds:     int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix:    now.Unix(),
	}
}
