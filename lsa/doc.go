// Package lsa provides per-goroutine local storage areas backed by
// OS-protected memory, with copy-on-write cloning between goroutines.
//
// A local storage area (LSA) is a byte region a goroutine allocates for
// itself. Its backing pages are anonymous private mappings with no access
// permissions, so no code in the process — the owner included — can reach
// the bytes through an ordinary load or store. The only doors are [Read]
// and [Write], which transiently grant access to the owner's pages around
// the copy and strip it again before returning.
//
// # Quick start
//
//	package main
//
//	import "github.com/kolkov/lsa/lsa"
//
//	func main() {
//		if err := lsa.Create(8192); err != nil {
//			// ...
//		}
//		defer lsa.Destroy()
//
//		lsa.Write(0, []byte("hello"))
//
//		out := make([]byte, 5)
//		lsa.Read(0, out)
//	}
//
// # Cloning and copy-on-write
//
// [Clone] gives the calling goroutine an area whose pages are the same
// page objects as the source goroutine's, with reference counts bumped.
// Both sides read identical bytes and no memory is copied. The first
// [Write] by either side to a given page splits that page — the writer
// gets a private copy, the other holders keep the original — so writes
// never leak across areas. Pages never written stay shared.
//
//	// source goroutine
//	lsa.Create(4096)
//	lsa.Write(0, []byte("ABCD"))
//	id := lsa.Self()
//
//	// other goroutine
//	lsa.Clone(id)          // shares pages with the source
//	lsa.Write(0, []byte("X")) // splits only the touched page
//
// # Protection enforcement
//
// A goroutine that dereferences LSA backing memory directly triggers a
// memory-access trap. Run code that might do so under [Guard]: a fault on
// a live LSA page terminates the offending goroutine alone (the process
// and every other goroutine continue), and any unrelated fault is
// re-raised with its normal crash semantics. This mirrors a fault handler
// that distinguishes storage-area violations from genuine segfaults and
// kills the thread rather than the process.
//
// # Lifecycle rules
//
// Each goroutine owns at most one area. Create fails if one exists; Clone
// fails if the caller has one or the target does not; Read, Write and
// Destroy fail without one. Areas do not follow goroutine lifetimes: a
// goroutine that exits without calling [Destroy] leaks its area.
//
// The package is Unix-only: it relies on anonymous private mappings with
// mprotect-adjustable permissions.
package lsa
