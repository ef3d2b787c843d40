package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"landmarket/internal/core/domain"
)

func slotKey(r *http.Request) domain.SlotKey {
	return domain.SlotKey{
		Date:    chi.URLParam(r, "date"),
		Channel: domain.Channel(chi.URLParam(r, "channel")),
		Mode:    chi.URLParam(r, "mode"),
	}
}

func (h *Handler) handleSlotInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.Slots.Info(r.Context(), slotKey(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) handleSlotReserve(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.Slots.Reserve(r.Context(), slotKey(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) handleSlotRelease(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.Slots.Release(r.Context(), slotKey(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
