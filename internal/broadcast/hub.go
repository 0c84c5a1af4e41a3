package broadcast

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/sol1corejz/pledgetracker/internal/logger"
	"github.com/sol1corejz/pledgetracker/internal/metrics"
)

const (
	defaultQueueSize    = 16
	defaultWriteTimeout = 10 * time.Second
)

// Publisher delivers an event to every live client. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, event string, payload any) error
}

// Envelope is the wire format of every pushed message.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func Encode(event string, payload any) ([]byte, error) {
	msg, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode %s event", event)
	}
	return msg, nil
}

// Conn is the part of a websocket connection the hub uses.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type client struct {
	id   string
	conn Conn
	send chan []byte
}

// Hub fans messages out to the websocket clients connected to this process.
type Hub struct {
	mu           sync.Mutex
	clients      map[string]*client
	queueSize    int
	writeTimeout time.Duration
}

func NewHub() *Hub {
	return &Hub{
		clients:      make(map[string]*client),
		queueSize:    defaultQueueSize,
		writeTimeout: defaultWriteTimeout,
	}
}

// Serve registers conn and blocks until the client goes away.
// Inbound messages are read and discarded.
func (h *Hub) Serve(conn Conn) {
	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, h.queueSize),
	}
	h.add(c)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writeLoop(c)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(c.id)
	<-done
	conn.Close()
}

func (h *Hub) writeLoop(c *client) {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			logger.Log.Debug("Websocket write failed", zap.String("client", c.id), zap.Error(err))
			// unblocks the read loop in Serve
			c.conn.Close()
			for range c.send {
			}
			return
		}
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	n := len(h.clients)
	h.mu.Unlock()

	metrics.WSClients.Set(float64(n))
	logger.Log.Info("Websocket client connected", zap.String("client", c.id), zap.Int("clients", n))
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		metrics.WSClients.Set(float64(n))
		logger.Log.Info("Websocket client disconnected", zap.String("client", id), zap.Int("clients", n))
	}
}

// Publish encodes the event once and queues it for every client.
func (h *Hub) Publish(_ context.Context, event string, payload any) error {
	msg, err := Encode(event, payload)
	if err != nil {
		return err
	}
	h.Broadcast(msg)
	return nil
}

// Broadcast queues an already encoded message. A client whose queue is full
// misses this message.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			logger.Log.Warn("Websocket client queue full, dropping message", zap.String("client", id))
		}
	}
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
