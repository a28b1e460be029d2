package page

import "github.com/docview/pagekit/dom"

// Registry owns the ordered collection of page units and the mapping from
// page number to position in document order.
type Registry struct {
	container dom.Container
	markup    Markup
	units     []*Unit
	index     map[int]int
}

// NewRegistry scans the container and builds the initial registry.
func NewRegistry(c dom.Container, m Markup) *Registry {
	r := &Registry{container: c, markup: m}
	r.Rebuild()
	return r
}

// Rebuild rescans the container's page frames wholesale. Every tagged child
// yields exactly one unit; frames whose content is already present come up
// loaded, placeholders stay unloaded.
func (r *Registry) Rebuild() {
	frames := r.container.Frames(r.markup.Frame)
	r.units = make([]*Unit, 0, len(frames))
	r.index = make(map[int]int, len(frames))
	for i, f := range frames {
		u := New(r.container, f, r.markup)
		u.Load() // best effort; placeholders simply stay unloaded
		r.units = append(r.units, u)
		r.index[u.number] = i
	}
}

// Swap replaces the unit at index i after a single-page node swap. The
// number-to-index map is left untouched: page numbers are stable across
// load.
func (r *Registry) Swap(i int, u *Unit) {
	if i < 0 || i >= len(r.units) {
		return
	}
	r.units[i] = u
}

// Lookup resolves a page number to its index. Absence is a normal outcome,
// e.g. a dangling link target.
func (r *Registry) Lookup(number int) (int, bool) {
	i, ok := r.index[number]
	return i, ok
}

func (r *Registry) Len() int { return len(r.units) }

// At returns the unit at index i, or nil when out of range.
func (r *Registry) At(i int) *Unit {
	if i < 0 || i >= len(r.units) {
		return nil
	}
	return r.units[i]
}

// Units returns the units in document order. The slice is the registry's
// own; callers must not mutate it.
func (r *Registry) Units() []*Unit { return r.units }

// Markup returns the markup contract the registry was built with.
func (r *Registry) Markup() Markup { return r.markup }
