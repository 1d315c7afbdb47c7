package httpapi

import "net/http"

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Applications
	ah := ApplicationsHandler{Gateway: d.Gateway}
	mux.HandleFunc("/applications", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  ah.List,
		http.MethodPost: ah.Create,
	}))
	mux.HandleFunc("/applications/", methodMux(map[string]http.HandlerFunc{
		http.MethodPatch:  ah.UpdateStatusByPath, // expects /applications/{id}/status
		http.MethodDelete: ah.DeleteByPath,       // expects /applications/{id}
	}))

	// Dashboard stats
	sh := StatsHandler{MetricsVal: d.MetricsVal}
	mux.HandleFunc("/stats", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sh.Get,
	}))

	// Posting autofill
	fh := AutofillHandler{CfgVal: d.CfgVal, FetchPosting: d.FetchPosting}
	mux.HandleFunc("/autofill", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: fh.Fetch,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sec := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/imap", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sec.SetIMAPPassword,
	}))

	// Email poll
	eh := EmailHandler{CfgVal: d.CfgVal, EmailVal: d.EmailVal, EmailMu: d.EmailMu, RunEmailPoll: d.RunEmailPoll}
	mux.HandleFunc("/email/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.Status,
	}))
	mux.HandleFunc("/email/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: eh.Run,
	}))

	// SSE events
	ev := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ev.ServeSSE,
	}))

	// DB maintenance
	dbh := DBHandler{DB: d.DB}
	mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dbh.Checkpoint,
	}))

	// Health
	hh := HealthHandler{}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	return mux
}
