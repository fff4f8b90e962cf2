// Package application provides application initialization and dependency wiring.
// It builds the env loader, resolves the endpoint once at startup, and creates
// the store, handlers, router, metrics registry and HTTP server, keeping the
// main package focused on CLI parsing and orchestration.
package application
