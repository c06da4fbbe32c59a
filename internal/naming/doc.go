// Package naming derives valid destination repository names from source
// repository descriptors, applying platform-specific sanitization rules.
package naming
