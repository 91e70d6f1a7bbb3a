// Package api binds the LSA engine to the calling goroutine.
//
// It owns the single process-wide engine, initialized lazily on the first
// operation of the process, and resolves the caller's goroutine identity
// for every entry point. The public lsa package delegates here.
package api

import (
	"os"
	"sync"

	"github.com/kolkov/lsa/internal/lsa/engine"
	"github.com/kolkov/lsa/internal/lsa/goid"
)

var (
	initOnce sync.Once
	eng      *engine.Engine
)

// get returns the process-wide engine, creating it on first use.
//
// Initialization captures the page size, builds the empty registry, and
// reads environment configuration. Setting LSADEBUG to anything but ""
// or "0" turns on diagnostic lines on standard error.
func get() *engine.Engine {
	initOnce.Do(func() {
		v := os.Getenv("LSADEBUG")
		eng = engine.NewWithOptions(engine.Options{
			Verbose: v != "" && v != "0",
		})
	})
	return eng
}

// Create allocates a storage area of size bytes for the calling goroutine.
func Create(size int) error {
	return get().Create(goid.ID(), size)
}

// Destroy releases the calling goroutine's storage area.
func Destroy() error {
	return get().Destroy(goid.ID())
}

// Read copies len(dst) bytes at offset off of the caller's area into dst.
func Read(off int, dst []byte) error {
	return get().Read(goid.ID(), off, dst)
}

// Write copies src into the caller's area at offset off.
func Write(off int, src []byte) error {
	return get().Write(goid.ID(), off, src)
}

// Clone gives the calling goroutine an area sharing target's pages.
func Clone(target int64) error {
	return get().Clone(goid.ID(), target)
}

// Guard runs fn with the fault interceptor armed for the calling
// goroutine.
func Guard(fn func()) {
	get().Guard(fn)
}

// Self returns the calling goroutine's ID, the identity Clone targets.
func Self() int64 {
	return goid.ID()
}

// PageSize returns the engine's page size.
func PageSize() int {
	return get().PageSize()
}
