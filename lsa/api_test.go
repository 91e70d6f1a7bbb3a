package lsa_test

import (
	"errors"
	"testing"

	"github.com/kolkov/lsa/lsa"
)

// TestSentinels verifies precondition failures surface the exported
// sentinels through the public wrappers.
func TestSentinels(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)

		if err := lsa.Destroy(); !errors.Is(err, lsa.ErrNoArea) {
			t.Errorf("Destroy() = %v, want ErrNoArea", err)
		}
		if err := lsa.Create(0); !errors.Is(err, lsa.ErrInvalidSize) {
			t.Errorf("Create(0) = %v, want ErrInvalidSize", err)
		}
		if err := lsa.Clone(1 << 60); !errors.Is(err, lsa.ErrNoTargetArea) {
			t.Errorf("Clone(unknown) = %v, want ErrNoTargetArea", err)
		}

		if err := lsa.Create(16); err != nil {
			t.Errorf("Create(16) error: %v", err)
			return
		}
		defer lsa.Destroy()

		if err := lsa.Read(0, make([]byte, 17)); !errors.Is(err, lsa.ErrOutOfRange) {
			t.Errorf("oversized Read() = %v, want ErrOutOfRange", err)
		}
		if err := lsa.Create(16); !errors.Is(err, lsa.ErrAreaExists) {
			t.Errorf("second Create() = %v, want ErrAreaExists", err)
		}
	}()
	<-done
}

// TestGetInfo verifies the version surface is populated.
func TestGetInfo(t *testing.T) {
	info := lsa.GetInfo()
	if info.Version != lsa.Version {
		t.Errorf("Info.Version = %q, want %q", info.Version, lsa.Version)
	}
	if info.PageSize <= 0 {
		t.Errorf("Info.PageSize = %d, want positive", info.PageSize)
	}
}
