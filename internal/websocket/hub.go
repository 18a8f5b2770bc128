// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/tomtom215/ghostmap/internal/logging"
	"github.com/tomtom215/ghostmap/internal/metrics"
	"github.com/tomtom215/ghostmap/internal/models"
	"github.com/tomtom215/ghostmap/internal/protocol"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful path (SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline may indicate a hung operation during shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// DefaultSendBuffer is the per-connection outbound queue length.
const DefaultSendBuffer = 256

// Dispatcher decides what each connection lifecycle step, command and sweep
// produces. Satisfied by *router.Router.
type Dispatcher interface {
	Join(conn models.ConnectionID) []protocol.Delivery
	Leave(conn models.ConnectionID) []protocol.Delivery
	Handle(origin models.ConnectionID, in protocol.Inbound) ([]protocol.Delivery, error)
	Sweep() []protocol.Delivery
}

// Mirror receives every event delivered to all connections.
// Satisfied by *eventfeed.Feed. Mirror must not block.
type Mirror interface {
	Mirror(msg protocol.Message)
}

// HubConfig configures a Hub.
type HubConfig struct {
	// SendBuffer is the outbound queue length per connection.
	SendBuffer int

	// Mirror is optional.
	Mirror Mirror
}

type command struct {
	client *Client
	in     protocol.Inbound
}

// Hub owns the set of live connections and is the only goroutine that
// drives the Dispatcher. Joins, leaves, commands and sweeps are applied one
// at a time, so every connection observes events in the order they were
// produced.
type Hub struct {
	dispatcher Dispatcher
	mirror     Mirror
	sendBuffer int

	clients    map[models.ConnectionID]*Client
	Register   chan *Client
	Unregister chan *Client
	commands   chan command
	sweeps     chan chan struct{}

	// mu guards clients for readers outside the hub goroutine.
	mu sync.RWMutex
}

// NewHub creates a Hub around dispatcher.
func NewHub(dispatcher Dispatcher, cfg HubConfig) *Hub {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = DefaultSendBuffer
	}
	return &Hub{
		dispatcher: dispatcher,
		mirror:     cfg.Mirror,
		sendBuffer: cfg.SendBuffer,
		clients:    make(map[models.ConnectionID]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		commands:   make(chan command),
		sweeps:     make(chan chan struct{}),
	}
}

// RunWithContext runs the hub until ctx is canceled, then closes every
// connection and returns ctx.Err().
//
// DETERMINISM: priority-based selection. Shutdown first, then lifecycle
// (Register/Unregister), then commands and sweeps. A connection is therefore
// registered before any command it sends is applied.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		// Priority 1: shutdown
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		// Priority 2: lifecycle
		select {
		case client := <-h.Register:
			h.join(client)
			continue
		case client := <-h.Unregister:
			h.leave(client)
			continue
		default:
		}

		// Priority 3: wait for anything
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()

		case client := <-h.Register:
			h.join(client)

		case client := <-h.Unregister:
			h.leave(client)

		case cmd := <-h.commands:
			h.handle(cmd)

		case done := <-h.sweeps:
			h.deliver(h.dispatcher.Sweep())
			close(done)
		}
	}
}

// Sweep asks the hub goroutine to run one expiry pass and waits for it to
// finish.
func (h *Hub) Sweep(ctx context.Context) error {
	done := make(chan struct{})
	select {
	case h.sweeps <- done:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Connect hands a new client to the hub. It fails only if ctx ends first.
func (h *Hub) Connect(ctx context.Context, client *Client) error {
	select {
	case h.Register <- client:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// join registers client and sends it the snapshot in the same step.
func (h *Hub) join(client *Client) {
	h.mu.Lock()
	h.clients[client.id] = client
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().Str("conn_id", client.id).Int("total_clients", total).Msg("websocket client connected")

	h.deliver(h.dispatcher.Join(client.id))
}

// leave is the Unregister path. A client already removed (for example
// dropped as slow) is ignored, so the leave event is produced once.
func (h *Hub) leave(client *Client) {
	if !h.remove(client) {
		return
	}
	h.deliver(h.dispatcher.Leave(client.id))
}

func (h *Hub) remove(client *Client) bool {
	h.mu.Lock()
	current, ok := h.clients[client.id]
	if !ok || current != client {
		h.mu.Unlock()
		return false
	}
	delete(h.clients, client.id)
	total := len(h.clients)
	h.mu.Unlock()

	client.close()
	metrics.WSConnections.Set(float64(total))
	logging.Info().Str("conn_id", client.id).Int("total_clients", total).Msg("websocket client disconnected")
	return true
}

func (h *Hub) handle(cmd command) {
	h.mu.RLock()
	_, live := h.clients[cmd.client.id]
	h.mu.RUnlock()
	if !live {
		return
	}

	out, err := h.dispatcher.Handle(cmd.client.id, cmd.in)
	if err != nil {
		logging.Warn().Err(err).Str("conn_id", cmd.client.id).Str("command", cmd.in.Type).Msg("dropping command")
		return
	}
	h.deliver(out)
}

// deliver fans each message out to the connections its scope selects.
// A connection whose queue is full is removed after the message has been
// offered to everyone else, and its leave events are delivered next.
func (h *Hub) deliver(out []protocol.Delivery) {
	for _, d := range out {
		frame, err := protocol.Encode(d.Message)
		if err != nil {
			logging.Error().Err(err).Str("event", d.Message.Type).Msg("failed to encode event")
			metrics.WSErrors.WithLabelValues("encode").Inc()
			continue
		}

		recipients := 0
		var slow []*Client
		for _, client := range h.sortedClients() {
			if !d.Scope.Includes(client.id, d.Origin) {
				continue
			}
			select {
			case client.send <- frame:
				recipients++
			default:
				slow = append(slow, client)
			}
		}
		metrics.RecordEvent(d.Message.Type, d.Scope.String(), recipients)

		if d.Scope == protocol.ScopeAll && h.mirror != nil {
			h.mirror.Mirror(d.Message)
		}

		for _, client := range slow {
			logging.Warn().Str("conn_id", client.id).Msg("send queue full, dropping websocket client")
			metrics.WSDroppedClients.Inc()
			h.leave(client)
		}
	}
}

// sortedClients returns the live clients ordered by connection id.
func (h *Hub) sortedClients() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// logGracefulShutdown closes all clients and logs the shutdown. The context
// error is not logged as an error: cancellation is the expected path.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// closeAllClients closes every connection in id order. Leave still runs for
// each so no user outlives its connection; the resulting events are
// discarded because no connection remains to receive them.
func (h *Hub) closeAllClients() {
	for _, client := range h.sortedClients() {
		if h.remove(client) {
			h.dispatcher.Leave(client.id)
		}
	}
	metrics.WSConnections.Set(0)
}
