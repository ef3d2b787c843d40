package httpadapter

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"landmarket/internal/core/domain"
	"landmarket/internal/core/port"
)

const maxScheduleDates = 60

// handleScheduleDates lists the next broadcast dates. `n` defaults to 6 and
// `from` (YYYY-MM-DD) to today.
func (h *Handler) handleScheduleDates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n := 6
	if s := q.Get("n"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 || v > maxScheduleDates {
			badRequest(w, "n must be between 0 and "+strconv.Itoa(maxScheduleDates))
			return
		}
		n = v
	}
	from := h.clock.Now()
	if s := q.Get("from"); s != "" {
		t, err := time.ParseInLocation(domain.DateLayout, s, from.Location())
		if err != nil {
			badRequest(w, "from must be YYYY-MM-DD")
			return
		}
		from = t
	}
	writeJSON(w, http.StatusOK, map[string][]string{"dates": h.svc.Scheduler.NextEligibleDates(n, from)})
}

type createCampaignReq struct {
	Parcel       *domain.ParcelSnapshot `json:"parcel"`
	Mode         string                 `json:"mode"`
	Channels     []domain.Channel       `json:"channels"`
	Highlight    bool                   `json:"highlight"`
	PriceTHB     int64                  `json:"priceTHB"`
	ScheduleDate string                 `json:"scheduleDate"`
}

func (h *Handler) handleCampaignCreate(w http.ResponseWriter, r *http.Request) {
	var req createCampaignReq
	if err := readJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	c, err := h.svc.Scheduler.CreateCampaign(r.Context(), port.CreateCampaignReq{
		Parcel:        req.Parcel,
		Mode:          req.Mode,
		Channels:      req.Channels,
		Highlight:     req.Highlight,
		PriceTHB:      req.PriceTHB,
		ScheduleDate:  req.ScheduleDate,
		CreatedByRole: roleFrom(r),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleCampaignList(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Scheduler.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleCampaignGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Scheduler.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) handleCampaignDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Scheduler.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCampaignDisable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := readJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	h.respondCampaign(w, r)(h.svc.Scheduler.Disable(r.Context(), chi.URLParam(r, "id"), req.Reason))
}

func (h *Handler) handleCampaignEnable(w http.ResponseWriter, r *http.Request) {
	h.respondCampaign(w, r)(h.svc.Scheduler.Enable(r.Context(), chi.URLParam(r, "id")))
}

func (h *Handler) handleCampaignSent(w http.ResponseWriter, r *http.Request) {
	h.respondCampaign(w, r)(h.svc.Scheduler.MarkSent(r.Context(), chi.URLParam(r, "id")))
}

func (h *Handler) respondCampaign(w http.ResponseWriter, r *http.Request) func(*domain.Campaign, error) {
	return func(c *domain.Campaign, err error) {
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// handlePublishDue runs one publication pass immediately, as the
// background worker would.
func (h *Handler) handlePublishDue(w http.ResponseWriter, r *http.Request) {
	published, err := h.svc.Scheduler.PublishDueCampaigns(r.Context(), h.clock.Now())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]domain.Campaign{"published": published})
}
