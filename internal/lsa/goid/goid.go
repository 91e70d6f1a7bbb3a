// Package goid extracts a stable identifier for the calling goroutine.
//
// The LSA engine keys every storage area by the goroutine that owns it, the
// same way a pthread TLS implementation keys areas by pthread_t. Go does not
// expose goroutine IDs, but runtime.Stack prints one on the first line of
// every trace, and that number is unique for the lifetime of the goroutine
// and never reused while it runs.
package goid

import "runtime"

// ID returns the current goroutine's ID.
//
// It parses the header line of a single-goroutine stack trace. This is the
// universal method: it works on every Go version and architecture, at the
// cost of a runtime.Stack call (~1-2µs). LSA operations bracket mmap and
// mprotect syscalls, so the extraction cost is noise by comparison.
//
// Returns a positive ID, or 0 if the trace could not be parsed (which would
// indicate a runtime.Stack format change).
func ID() int64 {
	// Only the header line is needed.
	// Format: "goroutine 123 [running]:\n..."
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parseGID(buf[:n])
}

// parseGID extracts the goroutine ID from stack trace bytes.
//
// Expected format: "goroutine 123 [running]:..."
// Returns the numeric ID (123 in this example) or 0 if the format is invalid.
// Direct byte parsing, no string conversion of the number, no regex.
func parseGID(buf []byte) int64 {
	const prefix = "goroutine "
	const prefixLen = 10 // len("goroutine ")

	if len(buf) < prefixLen {
		return 0
	}
	if string(buf[:prefixLen]) != prefix {
		return 0
	}

	// Parse the numeric ID; a non-digit (the space before "[running]")
	// terminates it.
	var gid int64
	for i := prefixLen; i < len(buf); i++ {
		c := buf[i]
		if c < '0' || c > '9' {
			break
		}
		gid = gid*10 + int64(c-'0')
	}
	return gid
}
