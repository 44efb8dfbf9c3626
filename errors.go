package deltac

import "golang.org/x/xerrors"

// Error kinds per the container format's error-handling policy: each is
// fatal to the operation that raised it and never leaves a half-applied
// delta or a partially flushed buffer behind.
var (
	// ErrBadFormat is raised when a container's magic does not match or
	// the byte stream ends mid-record.
	ErrBadFormat = xerrors.New("deltac: bad container format")

	// ErrHashMismatch is raised when a recomputed integrity hash does not
	// match the one recorded in the container header.
	ErrHashMismatch = xerrors.New("deltac: integrity hash mismatch")

	// ErrBadParameter is raised at entry, before any work begins, when an
	// option is out of range (seed length < 1, unknown policy, ...).
	ErrBadParameter = xerrors.New("deltac: bad parameter")

	// ErrInternalConsistency is raised when the applier is handed a
	// command that references an out-of-range offset. It indicates a bug
	// in an upstream component, never a malformed input by itself.
	ErrInternalConsistency = xerrors.New("deltac: internal consistency violation")
)
