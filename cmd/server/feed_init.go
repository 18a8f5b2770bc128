// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package main

import (
	"github.com/tomtom215/ghostmap/internal/config"
	"github.com/tomtom215/ghostmap/internal/eventfeed"
	"github.com/tomtom215/ghostmap/internal/logging"
	"github.com/tomtom215/ghostmap/internal/supervisor"
	"github.com/tomtom215/ghostmap/internal/supervisor/services"
)

// initEventFeed builds the NATS event feed, or returns nil when
// NATS_ENABLED=false. Nothing connects until the supervisor starts it.
func initEventFeed(cfg *config.Config) *eventfeed.Feed {
	if !cfg.NATS.Enabled {
		logging.Info().Msg("Event feed disabled (NATS_ENABLED=false)")
		return nil
	}

	feedCfg := feedConfig(cfg)
	logging.Info().
		Str("url", feedCfg.URL).
		Bool("embedded", feedCfg.Embedded).
		Str("subject_prefix", feedCfg.SubjectPrefix).
		Int("queue_size", feedCfg.QueueSize).
		Msg("Event feed enabled")

	return eventfeed.New(feedCfg)
}

func feedConfig(cfg *config.Config) eventfeed.Config {
	feedCfg := eventfeed.DefaultConfig()
	feedCfg.URL = cfg.NATS.URL
	feedCfg.SubjectPrefix = cfg.NATS.SubjectPrefix
	feedCfg.Embedded = cfg.NATS.Embedded
	feedCfg.EmbeddedHost = cfg.NATS.EmbeddedHost
	feedCfg.EmbeddedPort = cfg.NATS.EmbeddedPort
	if cfg.NATS.QueueSize > 0 {
		feedCfg.QueueSize = cfg.NATS.QueueSize
	}
	return feedCfg
}

// addEventFeedToSupervisor is a no-op when feed is nil.
func addEventFeedToSupervisor(tree *supervisor.SupervisorTree, feed *eventfeed.Feed) {
	if feed == nil {
		return
	}
	tree.AddMessagingService(services.NewEventFeedService(feed))
	logging.Info().Msg("Event feed added to supervisor tree (messaging layer)")
}
