package datamodel

// Set is an insertion-ordered set of values. JSON and YAML have no set
// literal, so Set-typed fields also accept plain lists; duplicates collapse to
// the first occurrence. Element order is the insertion order, which is what
// validation reports index against.
type Set struct {
	items []any
	index map[any]struct{}
}

// NewSet builds a Set from the given values in order.
func NewSet(values ...any) *Set {
	s := &Set{index: make(map[any]struct{}, len(values))}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts v unless an equal value is already present. Unhashable values
// (slices, maps) are kept without dedup.
func (s *Set) Add(v any) {
	if s.index == nil {
		s.index = map[any]struct{}{}
	}
	if hashable(v) {
		if _, ok := s.index[v]; ok {
			return
		}
		s.index[v] = struct{}{}
	}
	s.items = append(s.items, v)
}

// Contains reports whether an equal hashable value is present.
func (s *Set) Contains(v any) bool {
	if s == nil || !hashable(v) {
		return false
	}
	_, ok := s.index[v]
	return ok
}

// Len returns the number of elements.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Values returns the elements in insertion order. The slice is shared; callers
// must not mutate it.
func (s *Set) Values() []any {
	if s == nil {
		return nil
	}
	return s.items
}

func hashable(v any) bool {
	switch v.(type) {
	case nil, bool, int, int32, int64, float64, float32, string:
		return true
	}
	return false
}
