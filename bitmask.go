package parsec

import (
	"math/bits"
)

// Bitmask is a 256-bit bitmask used for tracking component presence on an
// archetype. It supports up to 256 unique component types.
type Bitmask [4]uint64

// Set sets the bit at the given index.
func (m *Bitmask) Set(id ComponentID) {
	m[id/64] |= 1 << (id % 64)
}

// Clear clears the bit at the given index.
func (m *Bitmask) Clear(id ComponentID) {
	m[id/64] &^= 1 << (id % 64)
}

// Has returns true if the bit at the given index is set.
func (m *Bitmask) Has(id ComponentID) bool {
	return m[id/64]&(1<<(id%64)) != 0
}

// ContainsAll returns true if all bits set in other are also set in m.
// This is used to check if all required components are present.
func (m *Bitmask) ContainsAll(other Bitmask) bool {
	return (m[0]&other[0] == other[0]) &&
		(m[1]&other[1] == other[1]) &&
		(m[2]&other[2] == other[2]) &&
		(m[3]&other[3] == other[3])
}

// ContainsAny returns true if any bit set in other is also set in m.
// This is used to check if any excluded components are present.
func (m *Bitmask) ContainsAny(other Bitmask) bool {
	return (m[0]&other[0] != 0) ||
		(m[1]&other[1] != 0) ||
		(m[2]&other[2] != 0) ||
		(m[3]&other[3] != 0)
}

// IsZero returns true if no bits are set.
func (m *Bitmask) IsZero() bool {
	return m[0] == 0 && m[1] == 0 && m[2] == 0 && m[3] == 0
}

// Count returns the number of bits set.
func (m *Bitmask) Count() int {
	return bits.OnesCount64(m[0]) +
		bits.OnesCount64(m[1]) +
		bits.OnesCount64(m[2]) +
		bits.OnesCount64(m[3])
}

// ArchetypeID identifies one archetype within a world. IDs are assigned
// sequentially as archetypes appear and are stable for the world's lifetime.
type ArchetypeID uint32

// ArchetypeSet is a growable set of archetype identifiers with an explicit
// "all" sentinel. The sentinel represents an empty predicate matching every
// archetype without enumerating them, so resource-only systems carry no
// allocation that grows with archetype count.
//
// A set is owned by exactly one query or system and recomputed every
// scheduling pass; its backing storage is retained across passes.
type ArchetypeSet struct {
	all   bool
	words []uint64
}

// SetAll marks the set as matching every archetype.
func (s *ArchetypeSet) SetAll() {
	s.all = true
}

// All reports whether the set is the "all" sentinel.
func (s *ArchetypeSet) All() bool {
	return s.all
}

// Set adds an archetype to the set.
func (s *ArchetypeSet) Set(id ArchetypeID) {
	word := int(id / 64)
	for len(s.words) <= word {
		s.words = append(s.words, 0)
	}
	s.words[word] |= 1 << (id % 64)
}

// Has reports whether the archetype is in the set. The "all" sentinel
// contains every archetype.
func (s *ArchetypeSet) Has(id ArchetypeID) bool {
	if s.all {
		return true
	}
	word := int(id / 64)
	if word >= len(s.words) {
		return false
	}
	return s.words[word]&(1<<(id%64)) != 0
}

// Reset clears the set, retaining backing storage for reuse.
func (s *ArchetypeSet) Reset() {
	s.all = false
	for i := range s.words {
		s.words[i] = 0
	}
}

// Or adds every archetype in other to s.
func (s *ArchetypeSet) Or(other *ArchetypeSet) {
	if s.all {
		return
	}
	if other.all {
		s.SetAll()
		return
	}
	for len(s.words) < len(other.words) {
		s.words = append(s.words, 0)
	}
	for i, w := range other.words {
		s.words[i] |= w
	}
}

// Overlaps reports whether the sets share any archetype. The "all" sentinel
// overlaps any non-empty set.
func (s *ArchetypeSet) Overlaps(other *ArchetypeSet) bool {
	if s.all {
		return other.all || other.Count() > 0
	}
	if other.all {
		return s.Count() > 0
	}
	n := min(len(s.words), len(other.words))
	for i := 0; i < n; i++ {
		if s.words[i]&other.words[i] != 0 {
			return true
		}
	}
	return false
}

// Count returns the number of archetypes in an enumerated set.
// It is 0 for the "all" sentinel, which does not enumerate.
func (s *ArchetypeSet) Count() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Equals reports whether both sets contain exactly the same archetypes.
func (s *ArchetypeSet) Equals(other *ArchetypeSet) bool {
	if s.all || other.all {
		return s.all == other.all
	}
	long, short := s.words, other.words
	if len(long) < len(short) {
		long, short = short, long
	}
	for i, w := range short {
		if long[i] != w {
			return false
		}
	}
	for _, w := range long[len(short):] {
		if w != 0 {
			return false
		}
	}
	return true
}

// IDs returns the enumerated archetype identifiers in ascending order.
// It returns nil for the "all" sentinel.
func (s *ArchetypeSet) IDs() []ArchetypeID {
	if s.all {
		return nil
	}
	ids := make([]ArchetypeID, 0, s.Count())
	for wi, w := range s.words {
		for w != 0 {
			bit := bits.TrailingZeros64(w)
			ids = append(ids, ArchetypeID(wi*64+bit))
			w &= w - 1
		}
	}
	return ids
}
