// Package bimap implements a bidirectional map: every key maps to a value
// and every value maps back to its key. Used for translating between the
// controller's vocabulary and Home Assistant's.
package bimap

// BiMap holds the forward and inverse mappings
type BiMap struct {
	forward   map[interface{}]interface{}
	inverse   map[interface{}]interface{}
	immutable bool
}

// NewBiMap returns an empty BiMap
func NewBiMap() *BiMap {
	return &BiMap{
		forward: make(map[interface{}]interface{}),
		inverse: make(map[interface{}]interface{}),
	}
}

// New returns a BiMap initialized with the given forward mapping
func New(forward map[interface{}]interface{}) *BiMap {
	m := NewBiMap()
	for k, v := range forward {
		m.Insert(k, v)
	}
	return m
}

func (m *BiMap) mustBeMutable() {
	if m.immutable {
		panic("BiMap is immutable")
	}
}

// Insert adds a key/value pair. An existing pairing for either side is replaced.
func (m *BiMap) Insert(key interface{}, value interface{}) {
	m.mustBeMutable()
	if oldValue, ok := m.forward[key]; ok {
		delete(m.inverse, oldValue)
	}
	if oldKey, ok := m.inverse[value]; ok {
		delete(m.forward, oldKey)
	}
	m.forward[key] = value
	m.inverse[value] = key
}

// Exists returns whether the given key is present
func (m *BiMap) Exists(key interface{}) bool {
	_, ok := m.forward[key]
	return ok
}

// ExistsInverse returns whether the given value is present
func (m *BiMap) ExistsInverse(value interface{}) bool {
	_, ok := m.inverse[value]
	return ok
}

// Get looks up the value for a key
func (m *BiMap) Get(key interface{}) (interface{}, bool) {
	v, ok := m.forward[key]
	return v, ok
}

// GetInverse looks up the key for a value
func (m *BiMap) GetInverse(value interface{}) (interface{}, bool) {
	k, ok := m.inverse[value]
	return k, ok
}

// Delete removes the pairing for the given key, if present
func (m *BiMap) Delete(key interface{}) {
	m.mustBeMutable()
	if value, ok := m.forward[key]; ok {
		delete(m.forward, key)
		delete(m.inverse, value)
	}
}

// DeleteInverse removes the pairing for the given value, if present
func (m *BiMap) DeleteInverse(value interface{}) {
	m.mustBeMutable()
	if key, ok := m.inverse[value]; ok {
		delete(m.forward, key)
		delete(m.inverse, value)
	}
}

// Size returns the number of pairings
func (m *BiMap) Size() int {
	return len(m.forward)
}

// MakeImmutable freezes the map. Further mutations panic.
func (m *BiMap) MakeImmutable() {
	m.immutable = true
}

// GetForwardMap returns the key→value map
func (m *BiMap) GetForwardMap() map[interface{}]interface{} {
	return m.forward
}

// GetInverseMap returns the value→key map
func (m *BiMap) GetInverseMap() map[interface{}]interface{} {
	return m.inverse
}
