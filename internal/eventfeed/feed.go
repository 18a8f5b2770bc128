// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package eventfeed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/ghostmap/internal/logging"
	"github.com/tomtom215/ghostmap/internal/metrics"
	"github.com/tomtom215/ghostmap/internal/protocol"
)

// Subject returns the NATS subject for an event.
func Subject(prefix, event string) string {
	return prefix + "." + event
}

// Feed queues broadcast events and publishes them to NATS.
type Feed struct {
	cfg   Config
	queue chan protocol.Message

	mu        sync.Mutex
	server    *EmbeddedServer
	publisher *Publisher
	clientURL string
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	running   atomic.Bool
}

// New creates a Feed. It publishes nothing until Start.
func New(cfg Config) *Feed {
	cfg = cfg.withDefaults()
	return &Feed{
		cfg:   cfg,
		queue: make(chan protocol.Message, cfg.QueueSize),
	}
}

// Mirror queues msg for publishing. It never blocks: when the queue is full
// the event is dropped.
func (f *Feed) Mirror(msg protocol.Message) {
	select {
	case f.queue <- msg:
	default:
		metrics.RecordFeedPublish("dropped")
		logging.Debug().Str("event", msg.Type).Msg("event feed queue full, dropping event")
	}
}

// Start launches the embedded server when configured, connects the
// publisher and starts draining the queue.
func (f *Feed) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.running.Load() {
		return nil
	}

	url := f.cfg.URL
	if f.cfg.Embedded {
		srv, err := NewEmbeddedServer(f.cfg.EmbeddedHost, f.cfg.EmbeddedPort)
		if err != nil {
			return fmt.Errorf("start embedded NATS: %w", err)
		}
		f.server = srv
		url = srv.ClientURL()
		logging.Info().Str("url", url).Msg("embedded NATS server started")
	}

	pub, err := NewPublisher(url, f.cfg, logging.NewWatermillAdapter("eventfeed"))
	if err != nil {
		f.stopServer(context.Background())
		return err
	}
	f.publisher = pub
	f.clientURL = url

	runCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.wg.Add(1)
	go f.drain(runCtx)

	f.running.Store(true)
	logging.Info().Str("url", url).Str("prefix", f.cfg.SubjectPrefix).Msg("event feed started")
	return nil
}

// Shutdown stops draining, closes the publisher and the embedded server.
// Events still queued are kept for the next Start.
func (f *Feed) Shutdown(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.running.Load() {
		return
	}
	f.cancel()
	f.wg.Wait()

	if err := f.publisher.Close(); err != nil {
		logging.Warn().Err(err).Msg("failed to close event feed publisher")
	}
	f.publisher = nil
	f.stopServer(ctx)

	f.running.Store(false)
	logging.Info().Msg("event feed stopped")
}

// IsRunning reports whether the feed is publishing.
func (f *Feed) IsRunning() bool {
	return f.running.Load()
}

// ClientURL returns the NATS URL the feed publishes to, once started.
func (f *Feed) ClientURL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clientURL
}

// Pending returns the number of queued events.
func (f *Feed) Pending() int {
	return len(f.queue)
}

func (f *Feed) stopServer(ctx context.Context) {
	if f.server == nil {
		return
	}
	if err := f.server.Shutdown(ctx); err != nil {
		logging.Warn().Err(err).Msg("embedded NATS shutdown incomplete")
	}
	f.server = nil
}

func (f *Feed) drain(ctx context.Context) {
	defer f.wg.Done()
	pub := f.publisher

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-f.queue:
			f.publish(pub, msg)
		}
	}
}

func (f *Feed) publish(pub *Publisher, msg protocol.Message) {
	payload, err := json.Marshal(msg.Data)
	if err != nil {
		metrics.RecordFeedPublish("error")
		logging.Error().Err(err).Str("event", msg.Type).Msg("failed to encode feed event")
		return
	}

	wm := message.NewMessage(uuid.NewString(), payload)
	wm.Metadata.Set("event", msg.Type)

	subject := Subject(f.cfg.SubjectPrefix, msg.Type)
	err = pub.Publish(subject, wm)
	switch {
	case err == nil:
		metrics.RecordFeedPublish("ok")
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordFeedPublish("breaker_open")
	default:
		metrics.RecordFeedPublish("error")
		logging.Warn().Err(err).Str("subject", subject).Msg("event feed publish failed")
	}
}
