// Package namespace resolves destination-side GitLab namespaces for migrated
// repositories, creating per-owner subgroups on demand and memoizing results
// so each (parent, owner) pair triggers at most one creation per run.
package namespace
