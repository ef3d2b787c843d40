package httpadapter_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landmarket/internal/adapter/clock"
	httpadapter "landmarket/internal/adapter/http"
	"landmarket/internal/adapter/memory"
	"landmarket/internal/adapter/notify"
	"landmarket/internal/adapter/payment"
	"landmarket/internal/adapter/usecase"
	"landmarket/internal/core/domain"
	"landmarket/internal/core/port"
)

var monday = time.Date(2026, time.October, 12, 9, 0, 0, 0, time.FixedZone("ICT", 7*60*60))

type server struct {
	t       *testing.T
	handler http.Handler
}

func newServer(t *testing.T, declineAll bool) *server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewLedgerStore()
	clk := clock.NewFixed(monday)
	opts := usecase.Options{RetryDelay: time.Millisecond}

	access := usecase.NewAccessLedger(store, clk, logger, opts)
	cart := usecase.NewCartAggregator(store, clk, logger, opts)
	payments := usecase.NewPaymentConfirmation(access, cart, store, logger, opts)
	slots := usecase.NewSlotLedger(store, logger, opts)
	hub := notify.NewHub(store, logger)
	t.Cleanup(hub.Close)

	h := httpadapter.NewHandler(httpadapter.Services{
		Access:     access,
		Cart:       cart,
		Negotiator: usecase.NewUnlockNegotiator(access, cart, payments, payment.NewMockGateway(declineAll, logger), logger),
		Slots:      slots,
		Scheduler:  usecase.NewCampaignScheduler(slots, store, clk, logger, opts),
	}, hub, clk, logger, 8)
	return &server{t: t, handler: h.Router()}
}

type call struct {
	method, path string
	actor, role  string
	body         any
}

func (s *server) do(c call) *httptest.ResponseRecorder {
	s.t.Helper()
	var body io.Reader
	if c.body != nil {
		data, err := json.Marshal(c.body)
		require.NoError(s.t, err)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	if c.actor != "" {
		req.Header.Set("X-Actor-ID", c.actor)
	}
	if c.role != "" {
		req.Header.Set("X-Actor-Role", c.role)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errResp struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func TestHealthAndActorRequired(t *testing.T) {
	s := newServer(t, false)

	assert.Equal(t, http.StatusOK, s.do(call{method: http.MethodGet, path: "/healthz"}).Code)

	rec := s.do(call{method: http.MethodGet, path: "/api/v1/access"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "NoActor", decode[errResp](t, rec).Code)
}

func TestMembershipAndRedeem(t *testing.T) {
	s := newServer(t, false)

	rec := s.do(call{method: http.MethodPost, path: "/api/v1/parcels/L1/redeem", actor: "u1"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "NotMember", decode[errResp](t, rec).Code)

	rec = s.do(call{method: http.MethodPut, path: "/api/v1/access/membership", actor: "u1", body: map[string]bool{"isMember": true}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(call{method: http.MethodPost, path: "/api/v1/parcels/L1/redeem", actor: "u1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.AllFieldKeys, decode[domain.AccessRecord](t, rec).UnlockedFields["L1"])

	rec = s.do(call{method: http.MethodPost, path: "/api/v1/parcels/L1/redeem", actor: "u1"})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "AlreadyUnlocked", decode[errResp](t, rec).Code)

	rec = s.do(call{method: http.MethodGet, path: "/api/v1/access/quota", actor: "u1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, port.QuotaStatus{DateKey: "2026-10-12", IsMember: true, Used: 1, Limit: 10, Left: 9}, decode[port.QuotaStatus](t, rec))

	rec = s.do(call{method: http.MethodPut, path: "/api/v1/access/membership", actor: "u1", body: map[string]string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStageAndCheckout(t *testing.T) {
	s := newServer(t, false)

	rec := s.do(call{method: http.MethodPost, path: "/api/v1/parcels/L1/cart", actor: "u1", body: map[string][]string{"fields": {"phone"}}})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(call{method: http.MethodPost, path: "/api/v1/parcels/L1/cart", actor: "u1", body: map[string][]string{"fields": {"phone", "line"}}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(call{method: http.MethodGet, path: "/api/v1/cart", actor: "u1"})
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decode[struct {
		Items domain.Cart `json:"items"`
		Total int64       `json:"total"`
	}](t, rec)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(350), cart.Total)

	rec = s.do(call{method: http.MethodPost, path: "/api/v1/cart/checkout", actor: "u1", body: map[string]string{"orderId": "o1"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[port.CheckoutResult](t, rec)
	assert.Equal(t, []string{"L1"}, res.Applied)
	assert.Equal(t, int64(350), res.Amount)

	rec = s.do(call{method: http.MethodGet, path: "/api/v1/parcels/L1/offer", actor: "u1"})
	require.Equal(t, http.StatusOK, rec.Code)
	offer := decode[port.Offer](t, rec)
	assert.Equal(t, []domain.FieldKey{domain.FieldPhone, domain.FieldLine}, offer.Unlocked)
	assert.Empty(t, offer.InCart)

	rec = s.do(call{method: http.MethodPost, path: "/api/v1/cart/checkout", actor: "u1"})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CartEmpty", decode[errResp](t, rec).Code)
}

func TestPayNow(t *testing.T) {
	s := newServer(t, false)

	rec := s.do(call{method: http.MethodPost, path: "/api/v1/parcels/L1/pay", actor: "u1", body: map[string]any{"fields": []string{"email"}}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "InvalidField", decode[errResp](t, rec).Code)

	rec = s.do(call{method: http.MethodPost, path: "/api/v1/parcels/L1/pay", actor: "u1", body: map[string]any{"fields": []string{"chanote"}, "orderId": "o9"}})
	require.Equal(t, http.StatusOK, rec.Code)
	rcpt := decode[port.Receipt](t, rec)
	assert.Equal(t, "o9", rcpt.OrderID)
	assert.Equal(t, int64(200), rcpt.Amount)
}

func TestPayNowDeclined(t *testing.T) {
	s := newServer(t, true)

	rec := s.do(call{method: http.MethodPost, path: "/api/v1/parcels/L1/pay", actor: "u1", body: map[string]any{"fields": []string{"phone"}}})
	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "PaymentDeclined", decode[errResp](t, rec).Code)

	rec = s.do(call{method: http.MethodGet, path: "/api/v1/access", actor: "u1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[domain.AccessRecord](t, rec).UnlockedFields)
}

func TestSlotsAndCampaigns(t *testing.T) {
	s := newServer(t, false)
	slot := "/api/v1/slots/2026-10-14/web/standard"

	rec := s.do(call{method: http.MethodPost, path: slot + "/reserve", role: "agent"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	for range 10 {
		rec = s.do(call{method: http.MethodPost, path: slot + "/reserve", role: "admin"})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec = s.do(call{method: http.MethodGet, path: slot})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[domain.SlotInfo](t, rec).Left)

	create := map[string]any{
		"parcel":       map[string]any{"id": "L1", "title": "Orchard"},
		"mode":         "standard",
		"channels":     []string{"web"},
		"priceTHB":     500,
		"scheduleDate": "2026-10-14",
	}
	rec = s.do(call{method: http.MethodPost, path: "/api/v1/campaigns", role: "agent", body: create})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "SlotFull_web", decode[errResp](t, rec).Code)

	create["scheduleDate"] = "2026-10-12"
	rec = s.do(call{method: http.MethodPost, path: "/api/v1/campaigns", role: "agent", body: create})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c := decode[domain.Campaign](t, rec)
	assert.Equal(t, domain.StatusPaid, c.Status)
	assert.Equal(t, domain.RoleAgent, c.CreatedByRole)

	rec = s.do(call{method: http.MethodPost, path: "/api/v1/campaigns/publish-due", role: "admin"})
	require.Equal(t, http.StatusOK, rec.Code)
	published := decode[map[string][]domain.Campaign](t, rec)["published"]
	require.Len(t, published, 1)

	rec = s.do(call{method: http.MethodPost, path: "/api/v1/campaigns/" + c.ID + "/sent", role: "agent"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(call{method: http.MethodPost, path: "/api/v1/campaigns/" + c.ID + "/sent", role: "admin"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StatusSent, decode[domain.Campaign](t, rec).Status)

	rec = s.do(call{method: http.MethodPost, path: "/api/v1/campaigns/" + c.ID + "/disable", role: "admin", body: map[string]string{"reason": "late"}})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "InvalidTransition", decode[errResp](t, rec).Code)

	rec = s.do(call{method: http.MethodGet, path: "/api/v1/campaigns/missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(call{method: http.MethodDelete, path: "/api/v1/campaigns/" + c.ID, role: "admin"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(call{method: http.MethodGet, path: "/api/v1/campaigns"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]domain.Campaign](t, rec))
}

func TestScheduleDates(t *testing.T) {
	s := newServer(t, false)

	rec := s.do(call{method: http.MethodGet, path: "/api/v1/schedule/dates?n=3"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"2026-10-12", "2026-10-14", "2026-10-16"}, decode[map[string][]string](t, rec)["dates"])

	rec = s.do(call{method: http.MethodGet, path: "/api/v1/schedule/dates?n=2&from=2026-10-17"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"2026-10-19", "2026-10-21"}, decode[map[string][]string](t, rec)["dates"])

	rec = s.do(call{method: http.MethodGet, path: "/api/v1/schedule/dates?from=tomorrow"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventStream(t *testing.T) {
	s := newServer(t, false)
	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/events?topic=cart", nil)
	require.NoError(t, err)
	req.Header.Set("X-Actor-ID", "u1")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewReader(resp.Body)
	line, err := lines.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": connected\n", line)

	// another actor's cart and a different topic are filtered out
	s.do(call{method: http.MethodPost, path: "/api/v1/parcels/L1/cart", actor: "u2", body: map[string][]string{"fields": {"phone"}}})
	s.do(call{method: http.MethodPut, path: "/api/v1/access/membership", actor: "u1", body: map[string]bool{"isMember": true}})
	s.do(call{method: http.MethodPost, path: "/api/v1/parcels/L1/cart", actor: "u1", body: map[string][]string{"fields": {"phone"}}})

	var event, data string
	for event == "" || data == "" {
		line, err = lines.ReadString('\n')
		require.NoError(t, err)
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event: "))
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		}
	}
	assert.Equal(t, "cart", event)
	var ev port.ChangeEvent
	require.NoError(t, json.Unmarshal([]byte(data), &ev))
	assert.Equal(t, port.ChangeEvent{Topic: port.TopicCart, Actor: "u1", Version: 1}, ev)
}

func TestEventStreamRejectsUnknownTopic(t *testing.T) {
	s := newServer(t, false)
	rec := s.do(call{method: http.MethodGet, path: "/api/v1/events?topic=weather", actor: "u1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
