package manager

import (
	"strings"

	"loradex/pkg/types"
)

// RecordClick counts one selection of req.ModelName, globally and under the
// normalized search term when one is given.
func (m *Manager) RecordClick(req types.ClickRequest) (types.ClickResponse, error) {
	if strings.TrimSpace(req.ModelName) == "" {
		return types.ClickResponse{}, ErrInvalidParameters("model_name is required")
	}
	global, search, err := m.ledger.Record(req.ModelName, req.SearchTerm)
	if err != nil {
		m.log.Error().Str("op", "record_click").Str("path", m.ledger.Path()).Err(err).Msg("click ledger write failed")
		return types.ClickResponse{}, err
	}
	clicksTotal.WithLabelValues("global").Inc()
	if req.SearchTerm != "" {
		clicksTotal.WithLabelValues("search").Inc()
	}
	m.publisher.Publish(Event{Name: EventClickRecorded, Subject: req.ModelName, Fields: map[string]any{"search_term": req.SearchTerm}})
	return types.ClickResponse{GlobalClicks: global, SearchClicks: search}, nil
}
