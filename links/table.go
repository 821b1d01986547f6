package links

// Table is an append-only list of links. IDs are stable until Clear.
type Table struct {
	links []*Link
}

// Add appends l and returns its ID.
func (t *Table) Add(l *Link) ID {
	t.links = append(t.links, l)
	return ID(len(t.links))
}

// Get returns the link with the given ID, or nil if id is out of range.
func (t *Table) Get(id ID) *Link {
	if id < 1 || int(id) > len(t.links) {
		return nil
	}
	return t.links[id-1]
}

// Len returns the number of links.
func (t *Table) Len() int { return len(t.links) }

// Clear drops every link.
func (t *Table) Clear() { t.links = t.links[:0] }

// All returns the links in ID order. The slice must not be modified.
func (t *Table) All() []*Link { return t.links }
