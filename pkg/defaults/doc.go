// Package defaults provides centralized configuration constants for ephemctl.
//
// This package defines polling parameters, debug pod settings, timeouts and
// other defaults used across the codebase. Centralizing these values keeps
// the CLI help text, the poller and the collectors consistent.
//
// # Categories
//
//   - Poller defaults: interval, number of iterations, output naming
//   - Collector defaults: kubectl binary, debug image and namespace
//   - Kubernetes timeouts: debug pod completion and polling cadence
//   - Server timeouts: HTTP server configuration for poll --listen
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/NVIDIA/k8s-ephem/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.DebugPodTimeout)
//	defer cancel()
//
// # Guidelines
//
//   - Poll interval: 10m by default, never below 1s
//   - Poll loops: 30 days worth of 10m iterations
//   - Debug pod: 5m to schedule, pull the image and list images
//   - Server shutdown: 30s for graceful shutdown
package defaults
