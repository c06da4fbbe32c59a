// Package config resolves repomirror's runtime settings from environment
// variables, optionally seeded from a .env file that never overrides values
// already present in the process environment, and builds the application's
// structured logger from the configured level and format.
package config
