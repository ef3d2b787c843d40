package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"landmarket/internal/core/port"
)

// Services are the use cases exposed over HTTP.
type Services struct {
	Access     port.AccessUseCase
	Cart       port.CartUseCase
	Negotiator port.NegotiatorUseCase
	Slots      port.SlotUseCase
	Scheduler  port.SchedulerUseCase
}

// EventSource streams ledger change events.
type EventSource interface {
	Watch(actor string, buffer int, topics ...port.Topic) (<-chan port.ChangeEvent, func())
}

// Handler is the inbound HTTP adapter. The acting user comes from the
// X-Actor-ID header and the role from X-Actor-Role.
type Handler struct {
	svc         Services
	events      EventSource
	clock       port.Clock
	logger      *slog.Logger
	eventBuffer int
	router      chi.Router
}

// NewHandler creates a handler with all routes configured.
func NewHandler(svc Services, events EventSource, clock port.Clock, logger *slog.Logger, eventBuffer int) *Handler {
	if eventBuffer <= 0 {
		eventBuffer = 32
	}
	h := &Handler{svc: svc, events: events, clock: clock, logger: logger, eventBuffer: eventBuffer}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/schedule/dates", h.handleScheduleDates)

		r.Group(func(r chi.Router) {
			r.Use(requireActor)

			r.Get("/access", h.handleAccess)
			r.Put("/access/membership", h.handleSetMembership)
			r.Get("/access/quota", h.handleQuota)

			r.Route("/parcels/{parcelID}", func(r chi.Router) {
				r.Get("/offer", h.handleOffer)
				r.Post("/cart", h.handleStage)
				r.Post("/pay", h.handlePayNow)
				r.Post("/redeem", h.handleRedeem)
			})

			r.Get("/cart", h.handleCartList)
			r.Delete("/cart", h.handleCartClear)
			r.Post("/cart/checkout", h.handleCheckout)
			r.Delete("/cart/{parcelID}", h.handleCartRemove)

			r.Get("/events", h.handleEvents)
		})

		r.Route("/slots/{date}/{channel}/{mode}", func(r chi.Router) {
			r.Get("/", h.handleSlotInfo)
			r.With(requireRole(roleAdmin)).Post("/reserve", h.handleSlotReserve)
			r.With(requireRole(roleAdmin)).Post("/release", h.handleSlotRelease)
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", h.handleCampaignList)
			r.Post("/", h.handleCampaignCreate)
			r.With(requireRole(roleAdmin)).Post("/publish-due", h.handlePublishDue)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.handleCampaignGet)
				r.Group(func(r chi.Router) {
					r.Use(requireRole(roleAdmin))
					r.Delete("/", h.handleCampaignDelete)
					r.Post("/disable", h.handleCampaignDisable)
					r.Post("/enable", h.handleCampaignEnable)
					r.Post("/sent", h.handleCampaignSent)
				})
			})
		})
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}
