// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package router

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/ghostmap/internal/mapstate"
	"github.com/tomtom215/ghostmap/internal/metrics"
	"github.com/tomtom215/ghostmap/internal/models"
	"github.com/tomtom215/ghostmap/internal/protocol"
	"github.com/tomtom215/ghostmap/internal/validation"
)

var (
	// ErrUnknownCommand is returned for a frame whose type is not a command.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrMalformedPayload is returned when a command body cannot be decoded
	// or fails validation.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrRateLimited is returned for a dangerAlert raised within the
	// connection's cooldown.
	ErrRateLimited = errors.New("alert cooldown active")
)

// DefaultAlertCooldown matches the web client's own alert button lockout.
const DefaultAlertCooldown = 10 * time.Second

// anonymous replaces an empty display name.
const anonymous = "Anonymous"

// Config controls Router behavior.
type Config struct {
	// AlertCooldown is the minimum gap between two alerts from one
	// connection. Zero disables the check.
	AlertCooldown time.Duration

	// Clock drives the cooldown. Defaults to the real clock.
	Clock clockwork.Clock
}

// Router applies commands to the store and decides fan-out.
type Router struct {
	store    *mapstate.Store
	cooldown *cooldown
}

// New creates a Router over store.
func New(store *mapstate.Store, cfg Config) *Router {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Router{
		store:    store,
		cooldown: newCooldown(cfg.AlertCooldown, cfg.Clock),
	}
}

// Store returns the store the router mutates.
func (r *Router) Store() *mapstate.Store {
	return r.store
}

// Join returns the snapshot deliveries for a newly connected client.
func (r *Router) Join(conn models.ConnectionID) []protocol.Delivery {
	snap := r.store.Snapshot()

	return []protocol.Delivery{
		{Scope: joinScope, Origin: conn, Message: protocol.Message{Type: protocol.EventExistingUsers, Data: snap.Users}},
		{Scope: joinScope, Origin: conn, Message: protocol.Message{Type: protocol.EventExistingMarkers, Data: snap.Markers}},
		{Scope: joinScope, Origin: conn, Message: protocol.Message{Type: protocol.EventExistingDangerMarkers, Data: snap.Alerts}},
		{Scope: joinScope, Origin: conn, Message: protocol.Message{Type: protocol.EventExistingChatMessages, Data: snap.Chat}},
	}
}

// Leave removes the connection's user and releases its cooldown. A
// connection that never reported a position produces no event.
func (r *Router) Leave(conn models.ConnectionID) []protocol.Delivery {
	r.cooldown.release(conn)

	if _, ok := r.store.RemoveUser(conn); !ok {
		return nil
	}
	return []protocol.Delivery{{
		Scope:   leaveScope,
		Origin:  conn,
		Message: protocol.Message{Type: protocol.EventUserDisconnected, Data: conn},
	}}
}

// Handle applies one inbound command from origin.
func (r *Router) Handle(origin models.ConnectionID, in protocol.Inbound) ([]protocol.Delivery, error) {
	rt, ok := policy[in.Type]
	if !ok {
		metrics.RecordCommand("unknown", "unknown")
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, in.Type)
	}

	payload, emit, err := rt.apply(r, origin, in.Data)
	if err != nil {
		metrics.RecordCommand(in.Type, resultLabel(err))
		return nil, fmt.Errorf("%s: %w", in.Type, err)
	}
	if !emit {
		metrics.RecordCommand(in.Type, "noop")
		return nil, nil
	}

	metrics.RecordCommand(in.Type, "ok")
	return []protocol.Delivery{{
		Scope:   rt.scope,
		Origin:  origin,
		Message: protocol.Message{Type: rt.event, Data: payload},
	}}, nil
}

// Sweep expires alerts that have reached their TTL and returns one removal
// per expired id, in ascending id order.
func (r *Router) Sweep() []protocol.Delivery {
	start := time.Now()
	expired := r.store.ExpireAlerts()
	metrics.RecordSweep(time.Since(start), len(expired))

	if len(expired) == 0 {
		return nil
	}
	out := make([]protocol.Delivery, 0, len(expired))
	for _, id := range expired {
		out = append(out, protocol.Delivery{
			Scope:   expiryScope,
			Message: protocol.Message{Type: protocol.EventRemoveDangerMarker, Data: protocol.IDPayload{ID: id}},
		})
	}
	return out
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrMalformedPayload):
		return "malformed"
	default:
		return "error"
	}
}

// decode unmarshals data into dst and validates it.
func decode(data json.RawMessage, dst interface{}) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: missing data", ErrMalformedPayload)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}

func check(v interface{}) error {
	if verr := validation.ValidateStruct(v); verr != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, verr)
	}
	return nil
}

func displayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return anonymous
	}
	return name
}

func (r *Router) sendLocation(origin models.ConnectionID, data json.RawMessage) (interface{}, bool, error) {
	var p protocol.LocationPayload
	if err := decode(data, &p); err != nil {
		return nil, false, err
	}
	if err := check(&p); err != nil {
		return nil, false, err
	}
	return r.store.UpsertUser(origin, *p.Lat, *p.Lng, displayName(p.Name)), true, nil
}

func (r *Router) placeMarker(origin models.ConnectionID, data json.RawMessage) (interface{}, bool, error) {
	var p protocol.PlaceMarkerPayload
	if err := decode(data, &p); err != nil {
		return nil, false, err
	}
	if err := check(&p); err != nil {
		return nil, false, err
	}
	return r.store.AddMarker(*p.Lat, *p.Lng, origin), true, nil
}

func (r *Router) deleteMarker(_ models.ConnectionID, data json.RawMessage) (interface{}, bool, error) {
	var p protocol.DeletePayload
	if err := decode(data, &p); err != nil {
		return nil, false, err
	}
	if err := check(&p); err != nil {
		return nil, false, err
	}
	if !r.store.RemoveMarker(p.ID) {
		return nil, false, nil
	}
	return protocol.IDPayload{ID: p.ID}, true, nil
}

func (r *Router) dangerAlert(origin models.ConnectionID, data json.RawMessage) (interface{}, bool, error) {
	var p protocol.AlertPayload
	if err := decode(data, &p); err != nil {
		return nil, false, err
	}
	p.Message = strings.TrimSpace(p.Message)
	if err := check(&p); err != nil {
		return nil, false, err
	}
	if !r.cooldown.allow(origin) {
		return nil, false, ErrRateLimited
	}
	return r.store.AddAlert(p.Message, *p.Lat, *p.Lng, origin), true, nil
}

func (r *Router) deleteDangerMarker(_ models.ConnectionID, data json.RawMessage) (interface{}, bool, error) {
	var p protocol.DeletePayload
	if err := decode(data, &p); err != nil {
		return nil, false, err
	}
	if err := check(&p); err != nil {
		return nil, false, err
	}
	if !r.store.RemoveAlert(p.ID) {
		return nil, false, nil
	}
	return protocol.IDPayload{ID: p.ID}, true, nil
}

func (r *Router) chatMessage(_ models.ConnectionID, data json.RawMessage) (interface{}, bool, error) {
	var p protocol.ChatPayload
	if err := decode(data, &p); err != nil {
		return nil, false, err
	}
	p.Message = strings.TrimSpace(p.Message)
	if err := check(&p); err != nil {
		return nil, false, err
	}
	return r.store.AppendChat(displayName(p.Name), p.Message), true, nil
}

func (r *Router) ping(_ models.ConnectionID, _ json.RawMessage) (interface{}, bool, error) {
	return nil, true, nil
}
