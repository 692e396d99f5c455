// Package mirror holds the repository configuration model and the sync
// pipeline: each configured repository is cloned when missing, reconciled
// against its remote, and optionally archived, strictly one after another.
package mirror
