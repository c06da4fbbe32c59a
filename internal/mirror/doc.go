// Package mirror manages local bare mirror repositories: initial mirror
// clones, incremental pruning fetches, full mirror pushes, and optional
// large-file-object transfer between source and destination remotes.
package mirror
