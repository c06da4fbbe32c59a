// Package cli constructs the repomirror command-line interface, wiring the
// Cobra root command, environment-driven configuration, platform API clients,
// and structured logging into a single migration entrypoint.
package cli
