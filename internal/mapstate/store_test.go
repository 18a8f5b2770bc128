// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package mapstate

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func newTestStore(t *testing.T) (*Store, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC))
	return New(Config{AlertTTL: 5 * time.Minute, ChatHistory: 3, Clock: clock}), clock
}

func TestNew_Defaults(t *testing.T) {
	s := New(Config{})

	if s.AlertTTL() != DefaultAlertTTL {
		t.Errorf("AlertTTL = %v, want %v", s.AlertTTL(), DefaultAlertTTL)
	}
	if s.chatLimit != DefaultChatHistory {
		t.Errorf("chatLimit = %d, want %d", s.chatLimit, DefaultChatHistory)
	}
	if s.clock == nil {
		t.Error("clock should default to the real clock")
	}

	none := New(Config{ChatHistory: -1})
	if none.chatLimit != 0 {
		t.Errorf("negative ChatHistory should disable history, got limit %d", none.chatLimit)
	}
}

func TestUpsertUser_LatestWins(t *testing.T) {
	s, _ := newTestStore(t)

	reports := []struct {
		id   string
		lat  float64
		lng  float64
		name string
	}{
		{"a", 1, 1, "A"},
		{"b", 2, 2, "B"},
		{"a", 44.43, 26.10, "A2"},
		{"b", 3, 3, "B"},
		{"a", 44.44, 26.11, "A3"},
	}
	for _, r := range reports {
		s.UpsertUser(r.id, r.lat, r.lng, r.name)
	}

	snap := s.Snapshot()
	if len(snap.Users) != 2 {
		t.Fatalf("Expected 2 users, got %d", len(snap.Users))
	}
	a := snap.Users["a"]
	if a.Lat != 44.44 || a.Lng != 26.11 || a.Name != "A3" {
		t.Errorf("user a = %+v, want latest report", a)
	}
	if snap.Users["b"].Lat != 3 {
		t.Errorf("user b lat = %v, want 3", snap.Users["b"].Lat)
	}
}

func TestUpsertUser_OutOfRangeStoredAsIs(t *testing.T) {
	s, _ := newTestStore(t)

	u := s.UpsertUser("a", 123.5, -400, "A")
	if u.Lat != 123.5 || u.Lng != -400 {
		t.Errorf("coordinates should not be corrected, got %+v", u)
	}
}

func TestRemoveUser(t *testing.T) {
	s, _ := newTestStore(t)

	if _, ok := s.RemoveUser("ghost"); ok {
		t.Error("removing a user that never reported should report false")
	}

	s.UpsertUser("a", 1, 2, "A")
	u, ok := s.RemoveUser("a")
	if !ok {
		t.Fatal("expected removal of existing user")
	}
	if u.ID != "a" {
		t.Errorf("removed user id = %q, want a", u.ID)
	}
	if _, ok := s.RemoveUser("a"); ok {
		t.Error("second removal should report false")
	}
}

func TestRemoveUser_DoesNotCascade(t *testing.T) {
	s, _ := newTestStore(t)

	s.UpsertUser("a", 1, 2, "A")
	s.AddMarker(1, 2, "a")
	s.AddAlert("Danger reported!", 1, 2, "a")
	s.RemoveUser("a")

	c := s.Counts()
	if c.Users != 0 || c.Markers != 1 || c.Alerts != 1 {
		t.Errorf("counts after user removal = %+v, want 0 users, 1 marker, 1 alert", c)
	}
}

func TestRemoveMarker_Idempotent(t *testing.T) {
	s, _ := newTestStore(t)

	m := s.AddMarker(1, 2, "a")
	if !s.RemoveMarker(m.ID) {
		t.Error("first removal should report true")
	}
	if s.RemoveMarker(m.ID) {
		t.Error("second removal should report false")
	}
	if s.RemoveMarker(999) {
		t.Error("removal of unknown id should report false")
	}
}

func TestIDs_MonotonicAndIndependent(t *testing.T) {
	s, _ := newTestStore(t)

	m1 := s.AddMarker(0, 0, "")
	a1 := s.AddAlert("x", 0, 0, "a")
	m2 := s.AddMarker(0, 0, "")

	if m1.ID != 1 || m2.ID != 2 {
		t.Errorf("marker ids = %d, %d, want 1, 2", m1.ID, m2.ID)
	}
	if a1.ID != 1 {
		t.Errorf("alert id = %d, want 1", a1.ID)
	}

	s.RemoveMarker(m2.ID)
	m3 := s.AddMarker(0, 0, "")
	if m3.ID != 3 {
		t.Errorf("marker id after delete = %d, want 3 (ids are never reused)", m3.ID)
	}

	s.RemoveAlert(a1.ID)
	a2 := s.AddAlert("y", 0, 0, "a")
	if a2.ID != 2 {
		t.Errorf("alert id after delete = %d, want 2", a2.ID)
	}
}

func TestIDs_ConcurrentAddsAreUnique(t *testing.T) {
	s, _ := newTestStore(t)

	const workers, perWorker = 8, 50
	ids := make(chan int64, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ids <- s.AddMarker(0, 0, "").ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate marker id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != workers*perWorker {
		t.Errorf("Expected %d unique ids, got %d", workers*perWorker, len(seen))
	}
}

func TestAddAlert_ServerTimestamp(t *testing.T) {
	s, clock := newTestStore(t)

	a := s.AddAlert("Danger reported!", 1, 2, "a")
	if a.Timestamp != clock.Now().UnixMilli() {
		t.Errorf("Timestamp = %d, want %d", a.Timestamp, clock.Now().UnixMilli())
	}
	if a.SenderID != "a" || a.Message != "Danger reported!" || a.Lat != 1 || a.Lng != 2 {
		t.Errorf("alert = %+v", a)
	}
}

func TestExpireAlerts(t *testing.T) {
	s, clock := newTestStore(t)

	if ids := s.ExpireAlerts(); ids != nil {
		t.Errorf("empty store should expire nothing, got %v", ids)
	}

	first := s.AddAlert("first", 0, 0, "a")
	clock.Advance(2 * time.Minute)
	second := s.AddAlert("second", 0, 0, "b")

	clock.Advance(3*time.Minute - time.Millisecond)
	if ids := s.ExpireAlerts(); ids != nil {
		t.Errorf("nothing has reached the TTL yet, expired %v", ids)
	}

	clock.Advance(time.Millisecond)
	ids := s.ExpireAlerts()
	if len(ids) != 1 || ids[0] != first.ID {
		t.Fatalf("expired %v, want [%d]", ids, first.ID)
	}

	snap := s.Snapshot()
	if len(snap.Alerts) != 1 || snap.Alerts[0].ID != second.ID {
		t.Errorf("remaining alerts = %+v, want only %d", snap.Alerts, second.ID)
	}

	clock.Advance(2 * time.Minute)
	ids = s.ExpireAlerts()
	if len(ids) != 1 || ids[0] != second.ID {
		t.Errorf("expired %v, want [%d]", ids, second.ID)
	}
}

func TestExpireAlerts_AfterDismissYieldsNothing(t *testing.T) {
	s, clock := newTestStore(t)

	a := s.AddAlert("x", 0, 0, "a")
	clock.Advance(10 * time.Minute)

	if !s.RemoveAlert(a.ID) {
		t.Fatal("dismiss should remove the alert")
	}
	if ids := s.ExpireAlerts(); ids != nil {
		t.Errorf("already dismissed alert expired again: %v", ids)
	}
	if s.RemoveAlert(a.ID) {
		t.Error("dismiss after expiry window should report false")
	}
}

func TestAppendChat_Bounded(t *testing.T) {
	s, _ := newTestStore(t)

	for i := 1; i <= 5; i++ {
		s.AppendChat("A", fmt.Sprintf("msg %d", i))
	}

	chat := s.Snapshot().Chat
	if len(chat) != 3 {
		t.Fatalf("Expected 3 retained messages, got %d", len(chat))
	}
	for i, want := range []string{"msg 3", "msg 4", "msg 5"} {
		if chat[i].Message != want {
			t.Errorf("chat[%d] = %q, want %q", i, chat[i].Message, want)
		}
	}
}

func TestAppendChat_NoHistory(t *testing.T) {
	s := New(Config{ChatHistory: -1})

	msg := s.AppendChat("A", "hello")
	if msg.Message != "hello" {
		t.Errorf("AppendChat should still return the message, got %+v", msg)
	}
	if n := len(s.Snapshot().Chat); n != 0 {
		t.Errorf("Expected no history, got %d entries", n)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	s, _ := newTestStore(t)

	s.UpsertUser("a", 1, 1, "A")
	s.AddMarker(2, 2, "a")
	s.AddMarker(3, 3, "a")
	s.AppendChat("A", "hi")

	snap := s.Snapshot()
	snap.Users["b"] = snap.Users["a"]
	snap.Markers[0].Lat = 99
	snap.Chat[0].Message = "changed"

	again := s.Snapshot()
	if len(again.Users) != 1 {
		t.Errorf("mutating a snapshot leaked into the store: %d users", len(again.Users))
	}
	if again.Markers[0].Lat != 2 {
		t.Errorf("marker lat = %v, want 2", again.Markers[0].Lat)
	}
	if again.Chat[0].Message != "hi" {
		t.Errorf("chat = %q, want hi", again.Chat[0].Message)
	}
	if again.Markers[0].ID > again.Markers[1].ID {
		t.Error("markers should be ordered by id")
	}
}
