// Package events fans out monitor events to any number of subscribers.
package events

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// subscriberBuffer is the number of events a subscriber may lag behind.
const subscriberBuffer = 16

// EventHub delivers published events to every interested subscriber.
// Slow subscribers miss events rather than block the publisher.
type EventHub struct {
	mu sync.RWMutex
	// Event names each subscriber wants; nil means all of them.
	subs map[chan Event]map[string]struct{}
}

func NewEventHub() *EventHub {
	return &EventHub{subs: make(map[chan Event]map[string]struct{})}
}

// Subscribe returns a channel receiving the named events, or every event
// if no name is given.
func (h *EventHub) Subscribe(names ...string) chan Event {
	var filter map[string]struct{}
	if len(names) > 0 {
		filter = make(map[string]struct{}, len(names))
		for _, n := range names {
			filter[n] = struct{}{}
		}
	}

	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = filter
	h.mu.Unlock()
	return ch
}

// Unsubscribe closes ch. Unknown channels are ignored.
func (h *EventHub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

// Subscribers returns the number of current subscribers.
func (h *EventHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish marshals payload once and offers it to every matching
// subscriber. A nil hub discards everything.
func (h *EventHub) Publish(name string, payload any) {
	if h == nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.subs) == 0 {
		return
	}

	b, err := json.Marshal(payload)
	if err != nil {
		logrus.Warnf("failed to marshal %s event: %v", name, err)
		return
	}
	ev := Event{Name: name, Data: b}

	for ch, filter := range h.subs {
		if filter != nil {
			if _, ok := filter[name]; !ok {
				continue
			}
		}
		select {
		case ch <- ev:
		default:
			logrus.Tracef("dropping %s event for a slow subscriber", name)
		}
	}
}
