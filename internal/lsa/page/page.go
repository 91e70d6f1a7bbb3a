// Package page owns the OS page mappings backing local storage areas.
//
// Each Page is one anonymous, private, page-sized mapping plus a reference
// count. A count of 1 means one area owns the page exclusively; a count
// above 1 means the page is shared between areas by a clone and must be
// split (copy-on-write) before any holder writes to it.
//
// Pages are born with no access permissions at all. The engine grants
// read+write only for the duration of a read or write operation and strips
// it again before returning, so a direct load or store against the backing
// memory always traps.
package page

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Page is one OS-page-sized anonymous private mapping with a reference
// count.
//
// The reference count is read and updated atomically, but any sequence
// that reads the count and then acts on the result (the CoW branch in a
// write, the free-or-decrement branch in a destroy) must hold the engine's
// share mutex so the check and the action are one step.
type Page struct {
	mem  []byte
	refs atomic.Int32
}

// New maps a fresh protected page of the given size.
//
// The mapping is anonymous, private, and carries no access permissions:
// the page is born protected. The reference count starts at 1.
func New(size int) (*Page, error) {
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_NONE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("page: mmap: %w", err)
	}
	p := &Page{mem: mem}
	p.refs.Store(1)
	return p, nil
}

// NewWritable maps a fresh page that is immediately readable and writable.
//
// This is the copy-on-write allocation path: the caller copies the shared
// page's bytes into the new page while the write window is open, and the
// window's final pass protects it along with the rest of the area.
func NewWritable(size int) (*Page, error) {
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("page: mmap: %w", err)
	}
	p := &Page{mem: mem}
	p.refs.Store(1)
	return p, nil
}

// Base returns the start address of the mapping, aligned to the system
// page size. The fault interceptor compares page-aligned fault addresses
// against this value.
func (p *Page) Base() uintptr {
	return uintptr(unsafe.Pointer(&p.mem[0]))
}

// Bytes returns the mapped region. Accessing the returned slice while the
// page is protected traps.
func (p *Page) Bytes() []byte {
	return p.mem
}

// Protect strips all access from the page.
func (p *Page) Protect() error {
	if err := unix.Mprotect(p.mem, unix.PROT_NONE); err != nil {
		return fmt.Errorf("page: mprotect none: %w", err)
	}
	return nil
}

// Unprotect grants read+write access to the page.
func (p *Page) Unprotect() error {
	if err := unix.Mprotect(p.mem, unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return fmt.Errorf("page: mprotect rw: %w", err)
	}
	return nil
}

// Refs returns the current reference count.
func (p *Page) Refs() int32 {
	return p.refs.Load()
}

// Retain adds one reference, used when a clone shares this page.
func (p *Page) Retain() {
	p.refs.Add(1)
}

// Release drops one reference. When the last reference is dropped the
// mapping is unmapped and the Page must not be used again. Reports whether
// the page was unmapped.
func (p *Page) Release() (freed bool, err error) {
	if p.refs.Add(-1) > 0 {
		return false, nil
	}
	mem := p.mem
	p.mem = nil
	if err := unix.Munmap(mem); err != nil {
		return true, fmt.Errorf("page: munmap: %w", err)
	}
	return true, nil
}
