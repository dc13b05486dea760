package service

// IDMap maps a natural key to the id storage generated for it during one run.
type IDMap[K comparable] struct {
	ids map[K]int64
}

// NewIDMap returns an empty map.
func NewIDMap[K comparable]() *IDMap[K] {
	return &IDMap[K]{ids: make(map[K]int64)}
}

// Put records id for key. It returns false, leaving the map unchanged, when key is already present.
func (m *IDMap[K]) Put(key K, id int64) bool {
	if _, exists := m.ids[key]; exists {
		return false
	}
	m.ids[key] = id
	return true
}

// Get returns the id recorded for key.
func (m *IDMap[K]) Get(key K) (int64, bool) {
	if m == nil {
		return 0, false
	}
	id, ok := m.ids[key]
	return id, ok
}

// Len returns the number of recorded keys.
func (m *IDMap[K]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.ids)
}
