package httpadapter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"landmarket/internal/core/port"
)

var knownTopics = map[port.Topic]bool{
	port.TopicAccess:    true,
	port.TopicCart:      true,
	port.TopicSlots:     true,
	port.TopicCampaigns: true,
}

// handleEvents streams change events as server-sent events until the
// client disconnects. `topic` is a comma separated filter.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	var topics []port.Topic
	if s := r.URL.Query().Get("topic"); s != "" {
		for _, t := range strings.Split(s, ",") {
			topic := port.Topic(strings.TrimSpace(t))
			if !knownTopics[topic] {
				badRequest(w, fmt.Sprintf("unknown topic %q", t))
				return
			}
			topics = append(topics, topic)
		}
	}

	rc := http.NewResponseController(w)
	events, cancel := h.events.Watch(actorFrom(r), h.eventBuffer, topics...)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		h.logger.Error("streaming not supported", slog.Any("error", err))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			payload, _ := json.Marshal(ev)
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Topic, payload)
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
