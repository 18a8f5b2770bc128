// Ghostmap - Real-time Shared Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ghostmap

package services

import (
	"context"
)

// ContextRunner is a component that runs until its context is canceled.
//
// Satisfied by *websocket.Hub and *sweeper.Sweeper.
type ContextRunner interface {
	RunWithContext(ctx context.Context) error
}

// RunnerService wraps a ContextRunner as a supervised service.
//
// Example usage:
//
//	hub := websocket.NewHub(rt, websocket.HubConfig{})
//	tree.AddMessagingService(services.NewWebSocketHubService(hub))
type RunnerService struct {
	runner ContextRunner
	name   string
}

// NewRunnerService wraps runner under the given service name.
func NewRunnerService(name string, runner ContextRunner) *RunnerService {
	return &RunnerService{
		runner: runner,
		name:   name,
	}
}

// NewWebSocketHubService wraps the websocket hub.
func NewWebSocketHubService(hub ContextRunner) *RunnerService {
	return NewRunnerService("websocket-hub", hub)
}

// NewSweeperService wraps the alert expiry sweeper.
func NewSweeperService(sweeper ContextRunner) *RunnerService {
	return NewRunnerService("alert-sweeper", sweeper)
}

// Serve implements suture.Service. It returns ctx.Err() on normal shutdown.
func (r *RunnerService) Serve(ctx context.Context) error {
	return r.runner.RunWithContext(ctx)
}

// String implements fmt.Stringer; suture uses it in log messages.
func (r *RunnerService) String() string {
	return r.name
}
