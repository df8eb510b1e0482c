// Package server implements the core broadcast functionality for linecast.
//
// The implementation is organized into specialized files for configuration,
// the connection registry, the acceptor, per-connection receivers, the
// broadcaster, and the HTTP sidecar to keep the codebase maintainable and
// testable as the project grows.
package server
