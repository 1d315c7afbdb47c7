package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"apptrack-engine/internal/domain"
	"apptrack-engine/internal/gateway"
	"apptrack-engine/internal/store"
)

type ApplicationsHandler struct {
	Gateway *gateway.Gateway
}

type createApplicationReq struct {
	Company     string `json:"company"`
	Role        string `json:"role"`
	DateApplied string `json:"dateApplied"`
	Status      string `json:"status"`
	Notes       string `json:"notes"`
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h ApplicationsHandler) List(w http.ResponseWriter, r *http.Request) {
	sort := r.URL.Query().Get("sort")

	apps, err := h.Gateway.List(r.Context(), store.ListOpts{Sort: sort})
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	writeJSON(w, apps)
}

func (h ApplicationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createApplicationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}

	status := domain.StatusApplied
	if strings.TrimSpace(req.Status) != "" {
		st, err := domain.ParseStatus(req.Status)
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, "invalid_status", err.Error())
			return
		}
		status = st
	}

	rec := domain.Application{
		Company:     strings.TrimSpace(req.Company),
		Role:        strings.TrimSpace(req.Role),
		DateApplied: strings.TrimSpace(req.DateApplied),
		Status:      status,
		Notes:       req.Notes,
	}
	if err := rec.ValidateNew(); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_application", err.Error())
		return
	}

	created, err := h.Gateway.Add(r.Context(), RequestIDFrom(r.Context()), rec)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "create_failed", err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// UpdateStatusByPath handles PATCH /applications/{id}/status.
func (h ApplicationsHandler) UpdateStatusByPath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/applications/")
	id, ok := strings.CutSuffix(rest, "/status")
	if !ok || id == "" || strings.Contains(id, "/") {
		WriteError(w, r, http.StatusBadRequest, "invalid_path", "expected /applications/{id}/status")
		return
	}

	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_status", err.Error())
		return
	}

	err = h.Gateway.UpdateStatus(r.Context(), RequestIDFrom(r.Context()), id, status)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "no application with id "+id)
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "update_failed", err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true, "id": id, "status": status})
}

// DeleteByPath handles DELETE /applications/{id}.
func (h ApplicationsHandler) DeleteByPath(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/applications/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, r, http.StatusBadRequest, "invalid_path", "expected /applications/{id}")
		return
	}

	err := h.Gateway.Remove(r.Context(), RequestIDFrom(r.Context()), id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "no application with id "+id)
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "delete_failed", err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true, "id": id})
}
