// Package area implements the LSA descriptor: the per-goroutine view of a
// storage area as an ordered run of page references.
//
// Byte offset i of an area lives at byte i%pagesize of page slot
// i/pagesize. Slots are replaced during copy-on-write splits; the
// descriptor itself never moves.
package area

import "github.com/kolkov/lsa/internal/lsa/page"

// Area describes one goroutine's local storage area.
type Area struct {
	owner    int64 // goroutine ID the registry maps to this area
	size     int   // user-visible byte size
	pageSize int
	pages    []*page.Page
}

// New allocates a descriptor and its pages for a fresh area of the given
// byte size. Every page is born protected.
//
// If any page allocation fails, all pages mapped so far are unmapped and
// the whole construction fails.
func New(owner int64, size, pageSize int) (*Area, error) {
	n := (size + pageSize - 1) / pageSize
	a := &Area{
		owner:    owner,
		size:     size,
		pageSize: pageSize,
		pages:    make([]*page.Page, n),
	}
	for i := range a.pages {
		p, err := page.New(pageSize)
		if err != nil {
			for j := 0; j < i; j++ {
				a.pages[j].Release()
			}
			return nil, err
		}
		a.pages[i] = p
	}
	return a, nil
}

// Share builds a descriptor for owner that references the same page
// objects as src, adding one reference to each.
//
// The caller must hold the engine's share mutex so the reference-count
// increments are serialized against destroys and CoW splits.
func Share(owner int64, src *Area) *Area {
	a := &Area{
		owner:    owner,
		size:     src.size,
		pageSize: src.pageSize,
		pages:    make([]*page.Page, len(src.pages)),
	}
	for i, p := range src.pages {
		p.Retain()
		a.pages[i] = p
	}
	return a
}

// Release drops the descriptor's reference on every page. Pages whose
// count reaches zero are unmapped; pages still shared with other areas
// survive with their count decremented.
//
// The caller must hold the engine's share mutex. The first error is
// returned but the walk always completes.
func (a *Area) Release() error {
	var first error
	for _, p := range a.pages {
		if _, err := p.Release(); err != nil && first == nil {
			first = err
		}
	}
	a.pages = nil
	return first
}

// Owner returns the goroutine ID this area belongs to.
func (a *Area) Owner() int64 { return a.owner }

// Size returns the user-visible byte size.
func (a *Area) Size() int { return a.size }

// PageCount returns the number of page slots.
func (a *Area) PageCount() int { return len(a.pages) }

// Page returns the page in slot i.
func (a *Area) Page(i int) *page.Page { return a.pages[i] }

// SetPage replaces slot i, used when a CoW split installs a fresh
// exclusive copy.
func (a *Area) SetPage(i int, p *page.Page) { a.pages[i] = p }
