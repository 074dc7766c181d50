// Package broadcast implements a Hub that fans "dataset updated" notifications out
// to live subscribers. The site's pages keep a Server-Sent Events stream open on
// /api/updates and refetch a dataset as soon as the data job uploads a new version,
// instead of polling every endpoint on a timer.
package broadcast

import (
	"context"
	"sync"
)

// AllTopics is the topic of subscribers that want every update.
const AllTopics = "*"

// Client is one live subscriber.
type Client struct {
	Topic string      // Dataset name to follow, or AllTopics
	Send  chan []byte // Buffered outgoing messages; closed by the Hub when the client is dropped
}

// NewClient returns a client following topic with a small send buffer.
func NewClient(topic string) *Client {
	if topic == "" {
		topic = AllTopics
	}
	return &Client{Topic: topic, Send: make(chan []byte, 16)}
}

// Message is a payload for every client following Topic (and every AllTopics client).
type Message struct {
	Topic string
	Data  []byte
}

// Hub tracks subscribers by topic. All map mutations happen on the Run goroutine;
// register, unregister and broadcast requests arrive over channels.
type Hub struct {
	clients map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client

	// mu lets Count read the map from other goroutines.
	mu sync.RWMutex

	done chan struct{}
}

// NewHub creates a Hub. Call Run in its own goroutine before using it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes hub events until ctx is cancelled, then closes every client's
// Send channel so their writers finish.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for topic, clients := range h.clients {
				for c := range clients {
					close(c.Send)
				}
				delete(h.clients, topic)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			if h.clients[c.Topic] == nil {
				h.clients[c.Topic] = make(map[*Client]bool)
			}
			h.clients[c.Topic][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.remove(c)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// deliver sends msg to the topic's followers and to AllTopics followers.
// A client whose buffer is full is dropped rather than stalling everyone else.
func (h *Hub) deliver(msg *Message) {
	var slow []*Client

	h.mu.RLock()
	for _, topic := range []string{msg.Topic, AllTopics} {
		for c := range h.clients[topic] {
			select {
			case c.Send <- msg.Data:
			default:
				slow = append(slow, c)
			}
		}
		if msg.Topic == AllTopics {
			break
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.remove(c)
	}
}

// remove drops c and closes its Send channel; removing an unknown client is a no-op.
func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[c.Topic]
	if !ok || !clients[c] {
		return
	}
	delete(clients, c)
	close(c.Send)
	if len(clients) == 0 {
		delete(h.clients, c.Topic)
	}
}

// Publish queues data for the followers of topic. It returns false when the
// hub has stopped or its queue is full.
func (h *Hub) Publish(topic string, data []byte) bool {
	select {
	case <-h.done:
		return false
	case h.broadcast <- &Message{Topic: topic, Data: data}:
		return true
	default:
		return false
	}
}

// Register adds c to the hub. It returns false if the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes c from the hub. Safe to call after the hub stopped.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Count returns the number of connected clients across all topics.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, clients := range h.clients {
		n += len(clients)
	}
	return n
}
