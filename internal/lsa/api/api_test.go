package api

import (
	"errors"
	"testing"

	"github.com/kolkov/lsa/internal/lsa/engine"
)

// run executes fn on a dedicated goroutine and waits for it, giving fn a
// goroutine identity of its own for the duration.
func run(fn func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	<-done
}

// TestLifecycleOnOwnGoroutine verifies the entry points resolve the
// calling goroutine's identity.
func TestLifecycleOnOwnGoroutine(t *testing.T) {
	var (
		createErr, writeErr, readErr, destroyErr error
		out                                      = make([]byte, 5)
	)

	run(func() {
		createErr = Create(4096)
		writeErr = Write(0, []byte("hello"))
		readErr = Read(0, out)
		destroyErr = Destroy()
	})

	if createErr != nil {
		t.Fatalf("Create() error: %v", createErr)
	}
	if writeErr != nil {
		t.Fatalf("Write() error: %v", writeErr)
	}
	if readErr != nil {
		t.Fatalf("Read() error: %v", readErr)
	}
	if string(out) != "hello" {
		t.Errorf("Read() = %q, want %q", out, "hello")
	}
	if destroyErr != nil {
		t.Fatalf("Destroy() error: %v", destroyErr)
	}
}

// TestIdentityIsPerGoroutine verifies one goroutine's area is invisible
// to another goroutine's entry points.
func TestIdentityIsPerGoroutine(t *testing.T) {
	var firstErr, secondErr error

	run(func() {
		firstErr = Create(4096)
		defer Destroy()

		// A different goroutine has no area even while ours exists.
		run(func() {
			secondErr = Write(0, []byte("x"))
		})
	})

	if firstErr != nil {
		t.Fatalf("Create() error: %v", firstErr)
	}
	if !errors.Is(secondErr, engine.ErrNoArea) {
		t.Errorf("foreign Write() = %v, want ErrNoArea", secondErr)
	}
}

// TestCloneAcrossGoroutines walks the clone handshake between two real
// goroutines.
func TestCloneAcrossGoroutines(t *testing.T) {
	var (
		srcReady = make(chan int64)
		cloned   = make(chan error)
		srcDone  = make(chan struct{})
		out      = make([]byte, 4)
		readErr  error
	)

	go func() {
		if err := Create(4096); err != nil {
			t.Error(err)
			close(srcReady)
			return
		}
		defer Destroy()
		if err := Write(0, []byte("ABCD")); err != nil {
			t.Error(err)
		}
		srcReady <- Self()
		<-srcDone
	}()

	go func() {
		target := <-srcReady
		if err := Clone(target); err != nil {
			cloned <- err
			return
		}
		defer Destroy()
		readErr = Read(0, out)
		cloned <- nil
	}()

	if err := <-cloned; err != nil {
		t.Fatalf("Clone() error: %v", err)
	}
	close(srcDone)

	if readErr != nil {
		t.Fatalf("clone Read() error: %v", readErr)
	}
	if string(out) != "ABCD" {
		t.Errorf("clone Read() = %q, want %q", out, "ABCD")
	}
}

// TestSelf verifies Self is positive and stable.
func TestSelf(t *testing.T) {
	if id := Self(); id <= 0 {
		t.Errorf("Self() = %d, want positive", id)
	}
	if Self() != Self() {
		t.Error("Self() not stable within a goroutine")
	}
}
