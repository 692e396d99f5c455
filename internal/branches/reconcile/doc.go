// Package reconcile makes the local branches of a mirrored repository match
// the branches of its remote: new remote branches are tracked, every branch is
// pulled to its remote tip, the default branch is checked out, branches gone
// from the remote are deleted, and tags are fetched.
package reconcile
