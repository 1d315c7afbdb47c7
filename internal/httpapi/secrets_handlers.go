package httpapi

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"apptrack-engine/internal/config"
	"apptrack-engine/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

type setIMAPPasswordReq struct {
	Password string `json:"password"`
}

func (h SecretsHandler) SetIMAPPassword(w http.ResponseWriter, r *http.Request) {
	var req setIMAPPasswordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	if err := secrets.SetIMAPPassword(secrets.IMAPKeyringAccount(cfg), req.Password); err != nil {
		WriteError(w, r, http.StatusBadRequest, "keyring_failed", "failed to store password: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
