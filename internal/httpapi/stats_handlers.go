package httpapi

import (
	"net/http"
	"sync/atomic"

	"apptrack-engine/internal/metrics"
)

// StatsHandler serves the latest derived metrics. The value is pushed
// here by the gateway subscription on every record change, so a GET is
// just an atomic load, never a recompute.
type StatsHandler struct {
	MetricsVal *atomic.Value // stores metrics.Summary
}

func (h StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if v := h.MetricsVal.Load(); v != nil {
		writeJSON(w, v.(metrics.Summary))
		return
	}
	// nothing pushed yet: an empty snapshot is still a valid summary
	writeJSON(w, metrics.Compute(nil))
}
