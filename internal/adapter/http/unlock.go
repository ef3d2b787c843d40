package httpadapter

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"landmarket/internal/core/domain"
	"landmarket/internal/core/port"
)

type selectionReq struct {
	Fields  []string `json:"fields"`
	OrderID string   `json:"orderId,omitempty"`
}

func (s selectionReq) fields() ([]domain.FieldKey, error) {
	f, err := domain.ParseFields(s.Fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", port.ErrInvalidField, err)
	}
	return f, nil
}

func (h *Handler) handleOffer(w http.ResponseWriter, r *http.Request) {
	offer, err := h.svc.Negotiator.Offer(r.Context(), actorFrom(r), chi.URLParam(r, "parcelID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, offer)
}

func (h *Handler) handleStage(w http.ResponseWriter, r *http.Request) {
	var req selectionReq
	if err := readJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	fields, err := req.fields()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cart, err := h.svc.Negotiator.StageToCart(r.Context(), actorFrom(r), chi.URLParam(r, "parcelID"), fields)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cartView(cart))
}

func (h *Handler) handlePayNow(w http.ResponseWriter, r *http.Request) {
	var req selectionReq
	if err := readJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	fields, err := req.fields()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rcpt, err := h.svc.Negotiator.PayNow(r.Context(), actorFrom(r), chi.URLParam(r, "parcelID"), fields, req.OrderID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rcpt)
}

func (h *Handler) handleRedeem(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Negotiator.Redeem(r.Context(), actorFrom(r), chi.URLParam(r, "parcelID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type cartResp struct {
	Items domain.Cart `json:"items"`
	Total int64       `json:"total"`
}

func cartView(c domain.Cart) cartResp {
	if c == nil {
		c = domain.Cart{}
	}
	return cartResp{Items: c, Total: c.Total()}
}

func (h *Handler) handleCartList(w http.ResponseWriter, r *http.Request) {
	cart, err := h.svc.Cart.List(r.Context(), actorFrom(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cartView(cart))
}

func (h *Handler) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	cart, err := h.svc.Cart.Remove(r.Context(), actorFrom(r), chi.URLParam(r, "parcelID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cartView(cart))
}

func (h *Handler) handleCartClear(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Cart.Clear(r.Context(), actorFrom(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCheckout pays for the whole cart. A partially applied checkout
// answers 207 with the per-parcel outcome; the failed parcels stay in the
// cart.
func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string `json:"orderId"`
	}
	if err := readJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON")
		return
	}
	res, err := h.svc.Negotiator.CheckoutCart(r.Context(), actorFrom(r), req.OrderID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case res != nil && len(res.Failed) > 0 && !errors.Is(err, port.ErrPaymentDeclined):
		h.logger.Warn("partial checkout", slog.String("actor", actorFrom(r)), slog.Any("error", err))
		writeJSON(w, http.StatusMultiStatus, res)
	default:
		h.fail(w, r, err)
	}
}
