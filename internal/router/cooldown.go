// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package router

import (
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/tomtom215/ghostmap/internal/models"
)

// cooldown allows one alert per connection per interval.
// A zero interval disables it.
type cooldown struct {
	every    time.Duration
	clock    clockwork.Clock
	limiters map[models.ConnectionID]*rate.Limiter
}

func newCooldown(every time.Duration, clock clockwork.Clock) *cooldown {
	return &cooldown{
		every:    every,
		clock:    clock,
		limiters: make(map[models.ConnectionID]*rate.Limiter),
	}
}

// allow consumes the connection's token if one is available.
func (c *cooldown) allow(conn models.ConnectionID) bool {
	if c.every <= 0 {
		return true
	}
	limiter, ok := c.limiters[conn]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(c.every), 1)
		c.limiters[conn] = limiter
	}
	return limiter.AllowN(c.clock.Now(), 1)
}

func (c *cooldown) release(conn models.ConnectionID) {
	delete(c.limiters, conn)
}

func (c *cooldown) tracked() int {
	return len(c.limiters)
}
