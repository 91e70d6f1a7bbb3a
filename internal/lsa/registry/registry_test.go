package registry

import (
	"os"
	"testing"

	"github.com/kolkov/lsa/internal/lsa/area"
)

func mustArea(t *testing.T, gid int64, pages int) *area.Area {
	t.Helper()
	ps := os.Getpagesize()
	a, err := area.New(gid, pages*ps, ps)
	if err != nil {
		t.Fatalf("area.New() error: %v", err)
	}
	t.Cleanup(func() { a.Release() })
	return a
}

// TestInsertLookupRemove exercises the three registry operations.
func TestInsertLookupRemove(t *testing.T) {
	r := New()
	a := mustArea(t, 1, 1)

	if _, ok := r.Lookup(1); ok {
		t.Fatal("Lookup() on empty registry succeeded")
	}
	if !r.Insert(1, a) {
		t.Fatal("Insert() failed on empty registry")
	}
	if r.Insert(1, a) {
		t.Fatal("duplicate Insert() succeeded")
	}

	got, ok := r.Lookup(1)
	if !ok || got != a {
		t.Fatalf("Lookup() = %v, %v; want the inserted area", got, ok)
	}

	removed, ok := r.Remove(1)
	if !ok || removed != a {
		t.Fatal("Remove() did not return the inserted area")
	}
	if _, ok := r.Remove(1); ok {
		t.Fatal("second Remove() succeeded")
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

// TestContains verifies the page-base snapshot tracks registry mutations.
func TestContains(t *testing.T) {
	r := New()
	a := mustArea(t, 1, 2)

	base0 := a.Page(0).Base()
	base1 := a.Page(1).Base()

	if r.Contains(base0) {
		t.Fatal("Contains() true before Insert")
	}

	r.Insert(1, a)
	if !r.Contains(base0) || !r.Contains(base1) {
		t.Fatal("Contains() false for registered pages")
	}
	if r.Contains(base0 + 1) {
		t.Fatal("Contains() true for a non-base address")
	}

	r.Remove(1)
	if r.Contains(base0) || r.Contains(base1) {
		t.Fatal("Contains() true after Remove")
	}
}
