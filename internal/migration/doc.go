// Package migration contains the batch orchestration engine that mirrors
// repositories between GitLab and GitHub: it resolves destination names and
// namespaces, provisions destination repositories, drives local mirror state,
// and aggregates per-repository outcomes into a run summary.
package migration
