package httpapi

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"apptrack-engine/internal/config"
)

type EmailHandler struct {
	CfgVal       *atomic.Value // config.Config
	EmailVal     *atomic.Value // httpapi.EmailPollStatus
	EmailMu      *sync.Mutex   // shared with the ticker lane
	RunEmailPoll func(cfg config.Config) (added int, err error)
}

func (h EmailHandler) Status(w http.ResponseWriter, r *http.Request) {
	st, _ := h.EmailVal.Load().(EmailPollStatus)
	writeJSON(w, st)
}

func (h EmailHandler) Run(w http.ResponseWriter, r *http.Request) {
	h.EmailMu.Lock()
	st, _ := h.EmailVal.Load().(EmailPollStatus)
	if st.Running {
		h.EmailMu.Unlock()
		writeJSON(w, map[string]any{"ok": false, "msg": "already running"})
		return
	}
	h.EmailVal.Store(EmailPollStatus{
		LastRunAt: time.Now().Format(time.RFC3339),
		Running:   true,
		LastOkAt:  st.LastOkAt,
	})
	h.EmailMu.Unlock()

	go func() {
		cfg := h.CfgVal.Load().(config.Config)
		added, err := h.RunEmailPoll(cfg)

		now := time.Now().Format(time.RFC3339)
		h.EmailMu.Lock()
		next, _ := h.EmailVal.Load().(EmailPollStatus)
		next.Running = false
		next.LastRunAt = now
		next.LastAdded = added
		if err != nil {
			next.LastError = err.Error()
		} else {
			next.LastError = ""
			next.LastOkAt = now
		}
		h.EmailVal.Store(next)
		h.EmailMu.Unlock()
	}()

	writeJSON(w, map[string]any{"ok": true})
}
