// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package services

import (
	"context"
	"fmt"
	"time"
)

// EventFeedRunner matches the *eventfeed.Feed lifecycle.
type EventFeedRunner interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context)
	IsRunning() bool
}

// EventFeedService adapts the event feed's Start/Shutdown lifecycle to
// suture's Serve pattern:
//  1. Start(ctx) connects the publisher (and the embedded server if configured)
//  2. Serve blocks until ctx is canceled
//  3. Shutdown drains the queue under its own timeout
//
// A failed Start is returned so suture retries with backoff. Events mirrored
// while the feed is down stay queued up to the queue limit.
type EventFeedService struct {
	feed            EventFeedRunner
	shutdownTimeout time.Duration
	name            string
}

// NewEventFeedService creates the event feed service with a 10s shutdown timeout.
func NewEventFeedService(feed EventFeedRunner) *EventFeedService {
	return NewEventFeedServiceWithTimeout(feed, 10*time.Second)
}

// NewEventFeedServiceWithTimeout creates the event feed service with a custom
// shutdown timeout.
func NewEventFeedServiceWithTimeout(feed EventFeedRunner, shutdownTimeout time.Duration) *EventFeedService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &EventFeedService{
		feed:            feed,
		shutdownTimeout: shutdownTimeout,
		name:            "event-feed",
	}
}

// Serve implements suture.Service.
func (s *EventFeedService) Serve(ctx context.Context) error {
	if err := s.feed.Start(ctx); err != nil {
		return fmt.Errorf("event feed start failed: %w", err)
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	s.feed.Shutdown(shutdownCtx)

	return ctx.Err()
}

// String implements fmt.Stringer.
func (s *EventFeedService) String() string {
	return s.name
}
