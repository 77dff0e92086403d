package services

import "errors"

var (
	// ErrNotFound is returned when a project, session or diff does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPipelineBusy is returned when a run is already in flight for the
	// same scope key. Concurrent runs against one scope are forbidden.
	ErrPipelineBusy = errors.New("pipeline busy for this session")

	// ErrStaleBase is returned by commit when the tree's head no longer
	// matches the diff's base revision. The caller must recompute a fresh
	// diff rather than retry.
	ErrStaleBase = errors.New("stale base revision, rebase needed")

	// ErrDiffTerminal is returned for status-changing operations on a diff
	// already committed or rejected.
	ErrDiffTerminal = errors.New("diff is in a terminal state")

	// ErrDiffNotApproved is returned when committing a diff that is not in
	// approved_by_reviewer status.
	ErrDiffNotApproved = errors.New("diff is not approved by reviewer")
)
