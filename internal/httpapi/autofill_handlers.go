package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"apptrack-engine/internal/config"
	"apptrack-engine/internal/scrape"
)

// AutofillHandler fetches a posting page and answers with the company
// and role it could extract, so the UI can prefill the add form.
type AutofillHandler struct {
	CfgVal       *atomic.Value // config.Config
	FetchPosting func(ctx context.Context, url string) (scrape.Posting, error)
}

type autofillReq struct {
	URL string `json:"url"`
}

func (h AutofillHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	cfg := h.CfgVal.Load().(config.Config)
	if !cfg.Autofill.Enabled {
		WriteError(w, r, http.StatusConflict, "autofill_disabled", "autofill is disabled in config")
		return
	}

	var req autofillReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}

	raw := strings.TrimSpace(req.URL)
	parsed, err := url.Parse(raw)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_url", "url must be absolute http(s)")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	posting, err := h.FetchPosting(ctx, raw)
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, "fetch_failed", err.Error())
		return
	}
	writeJSON(w, posting)
}
