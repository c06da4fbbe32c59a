// Package githubapi wraps the GitHub REST client with the typed operations
// repomirror needs: repository listing scoped to an owner, repository lookup
// distinguishing absence from failure, and private repository creation.
package githubapi
