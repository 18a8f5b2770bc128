// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package mapstate

import (
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/ghostmap/internal/metrics"
	"github.com/tomtom215/ghostmap/internal/models"
)

const (
	// DefaultAlertTTL is how long an alert stays on the map.
	DefaultAlertTTL = 5 * time.Minute

	// DefaultChatHistory is the number of chat messages kept for new joiners.
	DefaultChatHistory = 100
)

// Config controls Store behavior. Zero values select the defaults.
type Config struct {
	// AlertTTL is the maximum age of an alert before ExpireAlerts removes it.
	AlertTTL time.Duration

	// ChatHistory bounds the chat log. Negative means keep nothing.
	ChatHistory int

	// Clock supplies alert timestamps. Defaults to the real clock.
	Clock clockwork.Clock
}

// Counts is the size of each collection at one instant.
type Counts struct {
	Users   int
	Markers int
	Alerts  int
	Chat    int
}

// Store is the single owner of users, markers, alerts and chat history.
type Store struct {
	mu sync.RWMutex

	users   map[models.ConnectionID]models.User
	markers map[int64]models.Marker
	alerts  map[int64]models.Alert
	chat    []models.ChatMessage

	nextMarkerID int64
	nextAlertID  int64

	ttl       time.Duration
	chatLimit int
	clock     clockwork.Clock
}

// New creates an empty Store.
func New(cfg Config) *Store {
	if cfg.AlertTTL <= 0 {
		cfg.AlertTTL = DefaultAlertTTL
	}
	if cfg.ChatHistory == 0 {
		cfg.ChatHistory = DefaultChatHistory
	}
	if cfg.ChatHistory < 0 {
		cfg.ChatHistory = 0
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	return &Store{
		users:     make(map[models.ConnectionID]models.User),
		markers:   make(map[int64]models.Marker),
		alerts:    make(map[int64]models.Alert),
		ttl:       cfg.AlertTTL,
		chatLimit: cfg.ChatHistory,
		clock:     cfg.Clock,
	}
}

// AlertTTL returns the configured alert lifetime.
func (s *Store) AlertTTL() time.Duration {
	return s.ttl
}

// UpsertUser inserts or replaces the position of a connection and returns
// the stored record.
func (s *Store) UpsertUser(id models.ConnectionID, lat, lng float64, name string) models.User {
	user := models.User{ID: id, Lat: lat, Lng: lng, Name: name}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = user
	s.observe()
	return user
}

// RemoveUser deletes the user for a connection. It reports false when the
// connection never sent a location, in which case nothing should be emitted.
func (s *Store) RemoveUser(id models.ConnectionID) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, false
	}
	delete(s.users, id)
	s.observe()
	return user, true
}

// AddMarker stores a new marker under the next marker id.
// Coordinates are stored as given; no range check is applied.
func (s *Store) AddMarker(lat, lng float64, placedBy models.ConnectionID) models.Marker {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextMarkerID++
	marker := models.Marker{ID: s.nextMarkerID, Lat: lat, Lng: lng, PlacedBy: placedBy}
	s.markers[marker.ID] = marker
	s.observe()
	return marker
}

// RemoveMarker deletes a marker. It reports false if the id is unknown.
func (s *Store) RemoveMarker(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.markers[id]; !ok {
		return false
	}
	delete(s.markers, id)
	s.observe()
	return true
}

// AddAlert stores a new alert under the next alert id, stamped with the
// current server time in Unix milliseconds.
func (s *Store) AddAlert(message string, lat, lng float64, senderID models.ConnectionID) models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextAlertID++
	alert := models.Alert{
		ID:        s.nextAlertID,
		Message:   message,
		Lat:       lat,
		Lng:       lng,
		SenderID:  senderID,
		Timestamp: s.clock.Now().UnixMilli(),
	}
	s.alerts[alert.ID] = alert
	s.observe()
	return alert
}

// RemoveAlert deletes an alert. It reports false if the id is unknown, which
// is how a dismiss racing with expiry yields a single removal event.
func (s *Store) RemoveAlert(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.alerts[id]; !ok {
		return false
	}
	delete(s.alerts, id)
	s.observe()
	return true
}

// ExpireAlerts removes every alert whose age has reached the TTL and returns
// the removed ids in ascending order. An empty store yields nil.
func (s *Store) ExpireAlerts() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now().UnixMilli()
	ttl := s.ttl.Milliseconds()

	var expired []int64
	for id, alert := range s.alerts {
		if now-alert.Timestamp >= ttl {
			expired = append(expired, id)
		}
	}
	if len(expired) == 0 {
		return nil
	}

	sort.Slice(expired, func(i, j int) bool { return expired[i] < expired[j] })
	for _, id := range expired {
		delete(s.alerts, id)
	}
	s.observe()
	return expired
}

// AppendChat adds a message to the chat log, evicting the oldest entries
// beyond the history bound.
func (s *Store) AppendChat(name, message string) models.ChatMessage {
	msg := models.ChatMessage{Name: name, Message: message}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.chatLimit == 0 {
		return msg
	}
	s.chat = append(s.chat, msg)
	if over := len(s.chat) - s.chatLimit; over > 0 {
		s.chat = append(s.chat[:0:0], s.chat[over:]...)
	}
	s.observe()
	return msg
}

// Snapshot returns a deep copy of all collections.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := models.Snapshot{
		Users:   make(map[models.ConnectionID]models.User, len(s.users)),
		Markers: make([]models.Marker, 0, len(s.markers)),
		Alerts:  make([]models.Alert, 0, len(s.alerts)),
		Chat:    make([]models.ChatMessage, len(s.chat)),
		TakenAt: s.clock.Now().UnixMilli(),
	}

	for id, user := range s.users {
		snap.Users[id] = user
	}
	for _, marker := range s.markers {
		snap.Markers = append(snap.Markers, marker)
	}
	for _, alert := range s.alerts {
		snap.Alerts = append(snap.Alerts, alert)
	}
	copy(snap.Chat, s.chat)

	sort.Slice(snap.Markers, func(i, j int) bool { return snap.Markers[i].ID < snap.Markers[j].ID })
	sort.Slice(snap.Alerts, func(i, j int) bool { return snap.Alerts[i].ID < snap.Alerts[j].ID })

	return snap
}

// Counts returns the current collection sizes.
func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts()
}

func (s *Store) counts() Counts {
	return Counts{
		Users:   len(s.users),
		Markers: len(s.markers),
		Alerts:  len(s.alerts),
		Chat:    len(s.chat),
	}
}

// observe publishes collection sizes. Must be called with mu held.
func (s *Store) observe() {
	c := s.counts()
	metrics.StateEntries.WithLabelValues("users").Set(float64(c.Users))
	metrics.StateEntries.WithLabelValues("markers").Set(float64(c.Markers))
	metrics.StateEntries.WithLabelValues("alerts").Set(float64(c.Alerts))
	metrics.StateEntries.WithLabelValues("chat").Set(float64(c.Chat))
}
