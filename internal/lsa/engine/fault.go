package engine

import (
	"runtime"
	"runtime/debug"

	"github.com/kolkov/lsa/internal/lsa/goid"
)

// Guard runs fn with the memory-access trap interceptor armed for the
// calling goroutine.
//
// Go owns SIGSEGV and SIGBUS; debug.SetPanicOnFault is the runtime's hook
// for turning a fault at a real address into a recoverable panic instead
// of a process crash. Guard arms it, runs fn, and inspects any fault
// panic that comes back:
//
//   - If the page-aligned fault address is the base of a live LSA page,
//     the access was an illegal direct touch of protected storage — fn's
//     goroutine alone is terminated with runtime.Goexit and the process
//     continues.
//   - Any other panic, fault or not, is re-raised unchanged, restoring
//     the normal crash semantics for unrelated errors.
//
// The page match reads the registry's lock-free snapshot, so the
// interceptor takes no locks the faulting code could hold. Matching is
// against every live area's pages, not only the calling goroutine's own:
// a goroutine reaching into another goroutine's area is killed the same
// way.
func (e *Engine) Guard(fn func()) {
	old := debug.SetPanicOnFault(true)
	defer debug.SetPanicOnFault(old)

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		base, ok := e.faultBase(r)
		if !ok || !e.reg.Contains(base) {
			panic(r)
		}
		e.debugf("killing goroutine %d: illegal access to storage area page %#x", goid.ID(), base)
		runtime.Goexit()
	}()

	fn()
}

// faultBase extracts the page-aligned base of the faulting address from a
// recovered panic value. The runtime error produced under SetPanicOnFault
// carries the address via an Addr method; anything else is not a memory
// fault.
func (e *Engine) faultBase(r any) (uintptr, bool) {
	err, ok := r.(runtime.Error)
	if !ok {
		return 0, false
	}
	fault, ok := err.(interface{ Addr() uintptr })
	if !ok {
		return 0, false
	}
	return fault.Addr() &^ uintptr(e.pageSize-1), true
}
