package httpapi

import (
	"database/sql"
	"net"
	"net/http"

	"apptrack-engine/internal/store"
)

type DBHandler struct {
	DB *sql.DB
}

func (h DBHandler) Checkpoint(w http.ResponseWriter, r *http.Request) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host != "127.0.0.1" && host != "::1" && host != "localhost" {
		WriteError(w, r, http.StatusForbidden, "forbidden", "loopback only")
		return
	}

	if err := store.Checkpoint(h.DB); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "checkpoint_failed", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
