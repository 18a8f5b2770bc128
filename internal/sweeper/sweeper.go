// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

// Package sweeper runs the periodic alert expiry pass.
//
// The sweeper owns only the schedule. The pass itself runs wherever the
// Target runs it; the websocket hub executes it on its own goroutine so that
// expiry removals are ordered with every other state change.
package sweeper

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/ghostmap/internal/logging"
)

// DefaultInterval is the time between expiry passes.
const DefaultInterval = 60 * time.Second

// Target runs one expiry pass. Satisfied by *websocket.Hub.
type Target interface {
	Sweep(ctx context.Context) error
}

// Config controls the sweep schedule.
type Config struct {
	Interval time.Duration
	Clock    clockwork.Clock
}

// Sweeper triggers Target.Sweep on a fixed interval.
type Sweeper struct {
	target   Target
	interval time.Duration
	clock    clockwork.Clock
}

// New creates a Sweeper. Zero config values select the defaults.
func New(target Target, cfg Config) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Sweeper{target: target, interval: cfg.Interval, clock: cfg.Clock}
}

// Interval returns the configured pass interval.
func (s *Sweeper) Interval() time.Duration {
	return s.interval
}

// RunWithContext sweeps once per interval until ctx is canceled. A failed
// pass is logged and the schedule continues.
func (s *Sweeper) RunWithContext(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	logging.Debug().Dur("interval", s.interval).Msg("alert sweeper started")

	for {
		select {
		case <-ctx.Done():
			logging.Debug().Msg("alert sweeper stopped")
			return ctx.Err()
		case <-ticker.Chan():
			if err := s.target.Sweep(ctx); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					continue
				}
				logging.Warn().Err(err).Msg("alert sweep failed")
			}
		}
	}
}
