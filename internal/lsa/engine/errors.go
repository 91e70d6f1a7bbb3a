package engine

import "errors"

// Precondition errors returned by the engine operations. Resource failures
// (mmap, mprotect) are returned wrapped and can be distinguished with
// errors.Is against the unix errno values.
var (
	// ErrAreaExists is returned by Create and Clone when the calling
	// goroutine already has a storage area.
	ErrAreaExists = errors.New("lsa: goroutine already has a storage area")

	// ErrNoArea is returned by Destroy, Read and Write when the calling
	// goroutine has no storage area.
	ErrNoArea = errors.New("lsa: goroutine has no storage area")

	// ErrNoTargetArea is returned by Clone when the target goroutine has
	// no storage area.
	ErrNoTargetArea = errors.New("lsa: target goroutine has no storage area")

	// ErrInvalidSize is returned by Create for a non-positive size.
	ErrInvalidSize = errors.New("lsa: size must be positive")

	// ErrOutOfRange is returned by Read and Write when the requested
	// range does not fit inside the storage area.
	ErrOutOfRange = errors.New("lsa: range exceeds storage area size")
)
