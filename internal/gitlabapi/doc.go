// Package gitlabapi wraps the GitLab REST client with the typed operations
// repomirror needs: project listing, project lookup and creation, and
// subgroup enumeration and creation.
package gitlabapi
