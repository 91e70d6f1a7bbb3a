package lsa

import (
	internal "github.com/kolkov/lsa/internal/lsa/api"
	"github.com/kolkov/lsa/internal/lsa/engine"
)

// Sentinel errors returned by the operations, re-exported for errors.Is
// checks. Resource failures (a failed mapping or protection change) are
// returned wrapped around the underlying errno instead.
var (
	// ErrAreaExists reports that the calling goroutine already has an
	// area (Create, Clone).
	ErrAreaExists = engine.ErrAreaExists

	// ErrNoArea reports that the calling goroutine has no area
	// (Destroy, Read, Write).
	ErrNoArea = engine.ErrNoArea

	// ErrNoTargetArea reports that the Clone target has no area.
	ErrNoTargetArea = engine.ErrNoTargetArea

	// ErrInvalidSize reports a non-positive Create size.
	ErrInvalidSize = engine.ErrInvalidSize

	// ErrOutOfRange reports a Read or Write range that does not fit
	// inside the area.
	ErrOutOfRange = engine.ErrOutOfRange
)

// Create allocates a local storage area of size bytes for the calling
// goroutine.
//
// The area's pages are fully protected on return; the bytes are reachable
// only through Read and Write. Create fails if the caller already has an
// area, if size is not positive, or if a mapping fails (in which case
// everything allocated so far is rolled back).
func Create(size int) error {
	return internal.Create(size)
}

// Destroy releases the calling goroutine's area.
//
// Pages shared with clones survive for the other holders; exclusively
// owned pages are unmapped. Fails if the caller has no area.
func Destroy() error {
	return internal.Destroy()
}

// Read copies len(dst) bytes starting at byte off of the caller's area
// into dst.
//
// Fails if the caller has no area or [off, off+len(dst)) does not fit
// inside it. Shared pages are read in place; a read never copies a page.
func Read(off int, dst []byte) error {
	return internal.Read(off, dst)
}

// Write copies src into the caller's area starting at byte off.
//
// Fails if the caller has no area or the range does not fit. Writing to a
// page shared with a clone first splits it, so the bytes other holders
// see never change.
func Write(off int, src []byte) error {
	return internal.Write(off, src)
}

// Clone gives the calling goroutine an area sharing every page of the
// target goroutine's area. Obtain the target's ID with [Self] in the
// target goroutine.
//
// Fails if the caller already has an area or the target has none. After a
// clone both sides read identical bytes; diverging writes split only the
// pages they touch.
func Clone(target int64) error {
	return internal.Clone(target)
}

// Guard runs fn with the memory-access trap interceptor armed for the
// calling goroutine.
//
// If fn faults on a live LSA page, the calling goroutine is terminated
// via runtime.Goexit — its deferred calls run, the process survives. Any
// other panic propagates unchanged.
func Guard(fn func()) {
	internal.Guard(fn)
}

// Self returns the calling goroutine's identity, the value Clone takes
// as its target.
func Self() int64 {
	return internal.Self()
}

// PageSize returns the system page size the engine allocates in.
func PageSize() int {
	return internal.PageSize()
}
