// Package engine implements the local storage area operations.
//
// An Engine owns the process-wide state: the goroutine-to-area registry,
// the discovered page size, and the share mutex. The five operations
// (Create, Destroy, Read, Write, Clone) coordinate the page, area and
// registry packages; Guard is the fault interceptor that keeps illegal
// direct accesses from taking the process down.
//
// Locking discipline: the share mutex serializes every sequence that reads
// a page reference count and acts on the result — the clone that bumps
// counts, the destroy that frees-or-decrements, and the copy-on-write
// branch inside a write. Reads never take it, and a write holds it only
// while it checks (and, if shared, splits) each page it enters, so
// distinct goroutines operate on their own areas largely in parallel.
package engine

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/kolkov/lsa/internal/lsa/area"
	"github.com/kolkov/lsa/internal/lsa/page"
	"github.com/kolkov/lsa/internal/lsa/registry"
)

// Options configures an Engine.
type Options struct {
	// Verbose turns on diagnostic lines for failed preconditions and
	// fault-interceptor kills. Diagnostics are advisory; the error
	// returns are the contract.
	Verbose bool

	// Output receives diagnostics. Defaults to os.Stderr.
	Output io.Writer
}

// Engine holds the process-wide LSA state.
type Engine struct {
	pageSize int
	reg      *registry.Registry

	// shareMu serializes reference-count read-check-act sequences
	// across Clone, Destroy and the CoW branch of Write.
	shareMu sync.Mutex

	verbose bool
	out     io.Writer
}

// New returns an engine with default options.
func New() *Engine {
	return NewWithOptions(Options{})
}

// NewWithOptions returns an engine with the page size discovered and an
// empty registry. The engine is ready for use immediately.
func NewWithOptions(opts Options) *Engine {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	return &Engine{
		pageSize: os.Getpagesize(),
		reg:      registry.New(),
		verbose:  opts.Verbose,
		out:      out,
	}
}

// PageSize returns the OS page size the engine was initialized with.
func (e *Engine) PageSize() int { return e.pageSize }

// Create allocates a storage area of size bytes for gid.
//
// All pages are mapped with no access permissions; the caller reaches the
// bytes only through Read and Write. A partial page-allocation failure
// rolls everything back.
func (e *Engine) Create(gid int64, size int) error {
	e.shareMu.Lock()
	defer e.shareMu.Unlock()

	if _, ok := e.reg.Lookup(gid); ok {
		e.debugf("create: goroutine %d already has an area", gid)
		return ErrAreaExists
	}
	if size <= 0 {
		e.debugf("create: invalid size %d", size)
		return ErrInvalidSize
	}

	a, err := area.New(gid, size, e.pageSize)
	if err != nil {
		return fmt.Errorf("lsa: create: %w", err)
	}
	e.reg.Insert(gid, a)
	return nil
}

// Destroy releases gid's storage area.
//
// Pages still shared with clones survive with their reference count
// decremented; exclusively owned pages are unmapped.
func (e *Engine) Destroy(gid int64) error {
	e.shareMu.Lock()
	defer e.shareMu.Unlock()

	a, ok := e.reg.Remove(gid)
	if !ok {
		e.debugf("destroy: goroutine %d has no area", gid)
		return ErrNoArea
	}
	if err := a.Release(); err != nil {
		return fmt.Errorf("lsa: destroy: %w", err)
	}
	return nil
}

// Read copies len(dst) bytes starting at byte off of gid's area into dst.
//
// Every page of the area is unprotected for the duration of the copy and
// reprotected afterwards. Shared pages are read in place; a read never
// splits a page.
func (e *Engine) Read(gid int64, off int, dst []byte) error {
	a, ok := e.reg.Lookup(gid)
	if !ok {
		e.debugf("read: goroutine %d has no area", gid)
		return ErrNoArea
	}
	if err := checkRange(off, len(dst), a.Size()); err != nil {
		e.debugf("read: offset %d length %d exceeds area size %d", off, len(dst), a.Size())
		return err
	}

	if err := e.unprotectAll(a); err != nil {
		return err
	}

	for copied, idx := 0, off; copied < len(dst); {
		pn := idx / e.pageSize
		po := idx % e.pageSize
		n := copy(dst[copied:], a.Page(pn).Bytes()[po:])
		copied += n
		idx += n
	}

	return e.protectAll(a)
}

// Write copies src into gid's area starting at byte off.
//
// Every page of the area is unprotected for the duration and reprotected
// afterwards. At each page boundary the write enters, the CoW condition is
// evaluated: a page whose reference count is above 1 is split into a fresh
// exclusive copy before any byte of it is modified, so the bytes seen by
// other holders never change. If a split fails mid-range the write fails;
// pages already split stay split.
func (e *Engine) Write(gid int64, off int, src []byte) error {
	a, ok := e.reg.Lookup(gid)
	if !ok {
		e.debugf("write: goroutine %d has no area", gid)
		return ErrNoArea
	}
	if err := checkRange(off, len(src), a.Size()); err != nil {
		e.debugf("write: offset %d length %d exceeds area size %d", off, len(src), a.Size())
		return err
	}

	if err := e.unprotectAll(a); err != nil {
		return err
	}

	split := false
	for written, idx := 0, off; written < len(src); {
		pn := idx / e.pageSize
		po := idx % e.pageSize

		didSplit, err := e.ensurePrivate(a, pn)
		if err != nil {
			if split || didSplit {
				e.reg.Reindex()
			}
			e.protectAll(a)
			return fmt.Errorf("lsa: write: %w", err)
		}
		split = split || didSplit

		n := copy(a.Page(pn).Bytes()[po:], src[written:])
		written += n
		idx += n
	}

	if split {
		e.reg.Reindex()
	}
	return e.protectAll(a)
}

// Clone gives gid a storage area sharing every page of target's area.
//
// No bytes are copied: the new descriptor references the same page
// objects with their counts bumped. The first write by either side to a
// given page splits that page only.
func (e *Engine) Clone(gid, target int64) error {
	e.shareMu.Lock()
	defer e.shareMu.Unlock()

	if _, ok := e.reg.Lookup(gid); ok {
		e.debugf("clone: goroutine %d already has an area", gid)
		return ErrAreaExists
	}
	src, ok := e.reg.Lookup(target)
	if !ok {
		e.debugf("clone: target goroutine %d has no area", target)
		return ErrNoTargetArea
	}

	e.reg.Insert(gid, area.Share(gid, src))
	return nil
}

// ensurePrivate evaluates the CoW condition on page slot pn of a and
// splits the page if it is shared. Reports whether a split happened.
//
// Called with the write window open: the shared page is readable, and the
// fresh copy is mapped writable so the window's final pass protects it
// with the rest of the area. The old page is re-protected here because the
// swap removes it from this area's final pass while other holders still
// reference it.
func (e *Engine) ensurePrivate(a *area.Area, pn int) (bool, error) {
	e.shareMu.Lock()
	defer e.shareMu.Unlock()

	p := a.Page(pn)
	if p.Refs() == 1 {
		return false, nil
	}

	fresh, err := page.NewWritable(e.pageSize)
	if err != nil {
		return false, err
	}
	copy(fresh.Bytes(), p.Bytes())

	p.Release() // count was >1, never frees here
	a.SetPage(pn, fresh)

	if err := p.Protect(); err != nil {
		return true, err
	}
	return true, nil
}

// PageBase returns the base address of page slot i of gid's area.
// Diagnostics hook for harnesses that probe the protection boundary; the
// public API never exposes backing addresses.
func (e *Engine) PageBase(gid int64, i int) (uintptr, bool) {
	a, ok := e.reg.Lookup(gid)
	if !ok || i < 0 || i >= a.PageCount() {
		return 0, false
	}
	return a.Page(i).Base(), true
}

// unprotectAll grants read+write on every page of a.
func (e *Engine) unprotectAll(a *area.Area) error {
	for i := 0; i < a.PageCount(); i++ {
		if err := a.Page(i).Unprotect(); err != nil {
			for j := 0; j < i; j++ {
				a.Page(j).Protect()
			}
			return fmt.Errorf("lsa: %w", err)
		}
	}
	return nil
}

// protectAll strips all access from every page of a.
func (e *Engine) protectAll(a *area.Area) error {
	var first error
	for i := 0; i < a.PageCount(); i++ {
		if err := a.Page(i).Protect(); err != nil && first == nil {
			first = fmt.Errorf("lsa: %w", err)
		}
	}
	return first
}

// checkRange validates [off, off+n) against an area of size bytes.
// Signed arithmetic with explicit bounds keeps an attacker-controlled
// offset from wrapping past the size check.
func checkRange(off, n, size int) error {
	if off < 0 || off > size || n > size-off {
		return ErrOutOfRange
	}
	return nil
}

// debugf emits a diagnostic line when verbose mode is on.
func (e *Engine) debugf(format string, args ...any) {
	if !e.verbose {
		return
	}
	fmt.Fprintf(e.out, "lsa: "+format+"\n", args...)
}
