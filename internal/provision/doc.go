// Package provision idempotently ensures destination repositories exist,
// creating private repositories with collaboration features disabled and
// reconciling duplicate-creation races by re-querying for the existing
// resource.
package provision
