package physics

// orderedSet keeps insertion order so iteration is deterministic.
type orderedSet[T comparable] struct {
	items []T
	index map[T]int
}

func (s *orderedSet[T]) add(v T) bool {
	if s.index == nil {
		s.index = make(map[T]int)
	}
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = len(s.items)
	s.items = append(s.items, v)
	return true
}

func (s *orderedSet[T]) remove(v T) bool {
	i, ok := s.index[v]
	if !ok {
		return false
	}
	delete(s.index, v)
	copy(s.items[i:], s.items[i+1:])
	var zero T
	s.items[len(s.items)-1] = zero
	s.items = s.items[:len(s.items)-1]
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j]] = j
	}
	return true
}

func (s *orderedSet[T]) has(v T) bool {
	_, ok := s.index[v]
	return ok
}

func (s *orderedSet[T]) len() int { return len(s.items) }

func (s *orderedSet[T]) clear() {
	s.items = nil
	s.index = nil
}

// snapshot copies the items so callers may mutate the set while iterating.
func (s *orderedSet[T]) snapshot() []T {
	return append([]T(nil), s.items...)
}

// drain empties the set and returns its items in insertion order.
func (s *orderedSet[T]) drain() []T {
	items := s.items
	s.items = nil
	clear(s.index)
	return items
}

type constraintEntry struct {
	c    Constraint
	slot int
}

// constraintMap maps a constraint to the slot this body occupies in it.
type constraintMap struct {
	entries []constraintEntry
	index   map[Constraint]int
}

func (m *constraintMap) add(c Constraint, slot int) {
	if m.index == nil {
		m.index = make(map[Constraint]int)
	}
	if i, ok := m.index[c]; ok {
		m.entries[i].slot = slot
		return
	}
	m.index[c] = len(m.entries)
	m.entries = append(m.entries, constraintEntry{c: c, slot: slot})
}

func (m *constraintMap) remove(c Constraint) {
	i, ok := m.index[c]
	if !ok {
		return
	}
	delete(m.index, c)
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	for j := i; j < len(m.entries); j++ {
		m.index[m.entries[j].c] = j
	}
}

func (m *constraintMap) has(c Constraint) bool {
	_, ok := m.index[c]
	return ok
}

func (m *constraintMap) len() int { return len(m.entries) }

func (m *constraintMap) clear() {
	m.entries = nil
	m.index = nil
}

func (m *constraintMap) snapshot() []constraintEntry {
	return append([]constraintEntry(nil), m.entries...)
}
