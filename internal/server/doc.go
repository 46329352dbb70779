// Package server implements the SharkChat core: room registry, per-connection
// session state machine, event routing, and best-effort room broadcast over
// WebSockets.
//
// The implementation is organized into specialized files for configuration,
// hub and registry management, clients, routing, and HTTP handlers to keep
// the codebase maintainable and testable as the project grows.
package server
