package notify

import (
	"log/slog"
	"sync"

	"landmarket/internal/core/port"
)

// Hub turns raw store changes into typed per-ledger events. Local writes and
// writes from other processes reach it the same way: through the store's
// Subscribe.
type Hub struct {
	logger *slog.Logger
	cancel func()

	access    subject[port.AccessLedgerChanged]
	cart      subject[port.CartChanged]
	slots     subject[port.SlotsChanged]
	campaigns subject[port.CampaignsChanged]
	all       subject[port.ChangeEvent]
}

// NewHub subscribes to store. Call Close to detach.
func NewHub(store port.LedgerStore, logger *slog.Logger) *Hub {
	h := &Hub{logger: logger}
	h.cancel = store.Subscribe(h.dispatch)
	return h
}

func (h *Hub) dispatch(c port.Change) {
	topic, actor, ok := port.TopicOf(c.Key)
	if !ok {
		return
	}
	switch topic {
	case port.TopicAccess:
		h.access.emit(port.AccessLedgerChanged{Actor: actor, Version: c.Version})
	case port.TopicCart:
		h.cart.emit(port.CartChanged{Actor: actor, Version: c.Version})
	case port.TopicSlots:
		h.slots.emit(port.SlotsChanged{Version: c.Version})
	case port.TopicCampaigns:
		h.campaigns.emit(port.CampaignsChanged{Version: c.Version})
	}
	h.all.emit(port.ChangeEvent{Topic: topic, Actor: actor, Version: c.Version})
}

func (h *Hub) OnAccessChanged(fn func(port.AccessLedgerChanged)) func() {
	return h.access.subscribe(fn)
}

func (h *Hub) OnCartChanged(fn func(port.CartChanged)) func() {
	return h.cart.subscribe(fn)
}

func (h *Hub) OnSlotsChanged(fn func(port.SlotsChanged)) func() {
	return h.slots.subscribe(fn)
}

func (h *Hub) OnCampaignsChanged(fn func(port.CampaignsChanged)) func() {
	return h.campaigns.subscribe(fn)
}

// Watch streams events for the given topics (all topics when none are
// given) and, when actor is non-empty, only per-actor events of that actor
// plus the shared slot and campaign ledgers. Events are dropped when the
// consumer falls behind by more than buffer.
func (h *Hub) Watch(actor string, buffer int, topics ...port.Topic) (<-chan port.ChangeEvent, func()) {
	want := make(map[port.Topic]bool, len(topics))
	for _, t := range topics {
		want[t] = true
	}
	ch := make(chan port.ChangeEvent, buffer)
	var once sync.Once
	var mu sync.Mutex
	closed := false
	cancel := h.all.subscribe(func(ev port.ChangeEvent) {
		if len(want) > 0 && !want[ev.Topic] {
			return
		}
		if actor != "" && ev.Actor != "" && ev.Actor != actor {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- ev:
		default:
			h.logger.Warn("dropping change event for slow watcher", slog.String("topic", string(ev.Topic)), slog.String("actor", ev.Actor))
		}
	})
	return ch, func() {
		once.Do(func() {
			cancel()
			mu.Lock()
			closed = true
			close(ch)
			mu.Unlock()
		})
	}
}

// Close detaches the hub from the store.
func (h *Hub) Close() {
	if h.cancel != nil {
		h.cancel()
	}
}
