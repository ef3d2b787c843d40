package httpadapter

import (
	"net/http"
)

func (h *Handler) handleAccess(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Access.Read(r.Context(), actorFrom(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleSetMembership(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsMember *bool `json:"isMember"`
	}
	if err := readJSON(r, &req); err != nil || req.IsMember == nil {
		badRequest(w, "body must be {\"isMember\": bool}")
		return
	}
	rec, err := h.svc.Access.SetMembership(r.Context(), actorFrom(r), *req.IsMember)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleQuota(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Access.QuotaStatus(r.Context(), actorFrom(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
