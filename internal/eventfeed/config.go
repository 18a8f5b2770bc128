// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package eventfeed

import "time"

// Config controls the event feed.
type Config struct {
	// URL of the NATS server. Ignored when Embedded is set.
	URL string

	// SubjectPrefix is prepended to every event name.
	SubjectPrefix string

	// QueueSize bounds the events waiting to be published.
	QueueSize int

	// Embedded starts an in-process NATS server.
	Embedded     bool
	EmbeddedHost string
	// EmbeddedPort of -1 picks a random free port.
	EmbeddedPort int

	MaxReconnects int
	ReconnectWait time.Duration

	Breaker BreakerConfig
}

// BreakerConfig configures the circuit breaker around publishes.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultConfig returns the feed defaults.
func DefaultConfig() Config {
	return Config{
		URL:           "nats://127.0.0.1:4222",
		SubjectPrefix: "ghostmap",
		QueueSize:     1024,
		EmbeddedHost:  "127.0.0.1",
		EmbeddedPort:  4222,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		Breaker: BreakerConfig{
			Name:             "event-feed",
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		},
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.URL == "" {
		c.URL = d.URL
	}
	if c.SubjectPrefix == "" {
		c.SubjectPrefix = d.SubjectPrefix
	}
	if c.QueueSize <= 0 {
		c.QueueSize = d.QueueSize
	}
	if c.EmbeddedHost == "" {
		c.EmbeddedHost = d.EmbeddedHost
	}
	if c.EmbeddedPort == 0 {
		c.EmbeddedPort = d.EmbeddedPort
	}
	if c.MaxReconnects == 0 {
		c.MaxReconnects = d.MaxReconnects
	}
	if c.ReconnectWait <= 0 {
		c.ReconnectWait = d.ReconnectWait
	}
	if c.Breaker.Name == "" {
		c.Breaker.Name = d.Breaker.Name
	}
	if c.Breaker.MaxRequests == 0 {
		c.Breaker.MaxRequests = d.Breaker.MaxRequests
	}
	if c.Breaker.Interval <= 0 {
		c.Breaker.Interval = d.Breaker.Interval
	}
	if c.Breaker.Timeout <= 0 {
		c.Breaker.Timeout = d.Breaker.Timeout
	}
	if c.Breaker.FailureThreshold == 0 {
		c.Breaker.FailureThreshold = d.Breaker.FailureThreshold
	}
	return c
}
