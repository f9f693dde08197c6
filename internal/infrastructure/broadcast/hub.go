package broadcast

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fire-alert-service/internal/infrastructure/metrics"
	"fire-alert-service/pkg/logger"
)

// Event names pushed to subscribers
const (
	EventFireAlert    = "fire-alert"
	EventFireLocation = "fire-location"
)

const (
	defaultQueueSize      = 100
	defaultSubscriberSize = 50
)

// Message is one published event. It is shared by every subscriber and must
// not be mutated after Publish.
type Message struct {
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
	Published time.Time   `json:"-"`
}

// Subscription is a live membership in the hub. Messages arrive on C in
// publish order until the subscription is removed, at which point C is closed.
type Subscription struct {
	ID string
	C  <-chan *Message

	ch chan *Message
}

// Publisher is the sink the domain publishes into
type Publisher interface {
	Publish(event string, data interface{})
}

// Hub fans published messages out to every current subscriber. A single
// dispatcher goroutine keeps per-subscriber ordering. Publish never blocks:
// when the queue or a subscriber buffer is full the message is dropped.
type Hub struct {
	subscribers map[string]*Subscription
	mu          sync.RWMutex
	queue       chan *Message
	stopCh      chan struct{}
	doneCh      chan struct{}
	startOnce   sync.Once
	stopOnce    sync.Once
	bufferSize  int
	log         zerolog.Logger
}

// NewHub creates a hub. Call Start before publishing.
func NewHub() *Hub {
	return newHub(defaultQueueSize, defaultSubscriberSize)
}

func newHub(queueSize, bufferSize int) *Hub {
	return &Hub{
		subscribers: make(map[string]*Subscription),
		queue:       make(chan *Message, queueSize),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		bufferSize:  bufferSize,
		log:         logger.WithComponent("broadcast"),
	}
}

// Start begins the dispatch loop
func (h *Hub) Start() {
	h.startOnce.Do(func() {
		go h.run()
	})
}

// Stop ends the dispatch loop and closes every subscription
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
	})
	h.startOnce.Do(func() { close(h.doneCh) })
	<-h.doneCh

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sub := range h.subscribers {
		delete(h.subscribers, id)
		close(sub.ch)
	}
	metrics.Subscribers.Set(0)
}

// Subscribe registers a new subscriber. Late subscribers receive no history.
func (h *Hub) Subscribe() *Subscription {
	ch := make(chan *Message, h.bufferSize)
	sub := &Subscription{ID: uuid.NewString(), C: ch, ch: ch}

	h.mu.Lock()
	h.subscribers[sub.ID] = sub
	count := len(h.subscribers)
	h.mu.Unlock()

	metrics.Subscribers.Set(float64(count))
	h.log.Debug().Str("subscriber", sub.ID).Int("subscribers", count).Msg("subscriber joined")
	return sub
}

// Unsubscribe removes a subscriber and closes its channel. Safe to call twice.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	if _, ok := h.subscribers[sub.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.subscribers, sub.ID)
	close(sub.ch)
	count := len(h.subscribers)
	h.mu.Unlock()

	metrics.Subscribers.Set(float64(count))
	h.log.Debug().Str("subscriber", sub.ID).Int("subscribers", count).Msg("subscriber left")
}

// Publish queues a message for every subscriber
func (h *Hub) Publish(event string, data interface{}) {
	msg := &Message{Event: event, Data: data, Published: time.Now()}

	select {
	case <-h.stopCh:
		return
	default:
	}

	select {
	case h.queue <- msg:
		metrics.BroadcastMessagesTotal.WithLabelValues(event).Inc()
	default:
		metrics.BroadcastDroppedTotal.Inc()
		h.log.Warn().Str("event", event).Msg("broadcast queue full, message dropped")
	}
}

// SubscriberCount returns the number of active subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

func (h *Hub) run() {
	defer close(h.doneCh)
	for {
		select {
		case msg := <-h.queue:
			h.dispatch(msg)
		case <-h.stopCh:
			return
		}
	}
}

func (h *Hub) dispatch(msg *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subscribers {
		select {
		case sub.ch <- msg:
		default:
			metrics.BroadcastDroppedTotal.Inc()
			h.log.Warn().Str("subscriber", sub.ID).Str("event", msg.Event).Msg("subscriber buffer full, message dropped")
		}
	}
}
