// Package ui renders human-readable progress for mirror transfer commands.
//
// Structured telemetry always flows through zap; this package adds concise
// console lines describing each git invocation when console logging is
// selected, so interactive runs stay legible during long transfers.
package ui
