package parsec

import (
	"slices"
)

// identity constrains the token types permissions range over.
// ComponentID and ResourceID both satisfy it.
type identity interface {
	~uint8
}

// Permissions is a pair of disjoint read and write sets over one identity
// category (component types or resource types). The zero value is the empty
// permission set.
//
// Aggregation keeps the sets hardened: an identity granted write access is
// never also listed as a read, since a write implies practical exclusivity.
type Permissions[ID identity] struct {
	reads  []ID
	writes []ID
}

// AddRead grants shared read access to an identity. It is a no-op if the
// identity already has write access, since the write subsumes it.
func (p *Permissions[ID]) AddRead(id ID) {
	if slices.Contains(p.writes, id) {
		return
	}
	p.reads = insertSorted(p.reads, id)
}

// AddWrite grants exclusive write access to an identity. Any previous read
// grant for the same identity is folded into the write.
func (p *Permissions[ID]) AddWrite(id ID) {
	if i := slices.Index(p.reads, id); i >= 0 {
		p.reads = slices.Delete(p.reads, i, i+1)
	}
	p.writes = insertSorted(p.writes, id)
}

// Reads returns the identities with shared read access, in ascending order.
// Identities with write access are not repeated here.
func (p *Permissions[ID]) Reads() []ID {
	return p.reads
}

// Writes returns the identities with exclusive write access, in ascending order.
func (p *Permissions[ID]) Writes() []ID {
	return p.writes
}

// HasRead reports whether reading the identity is permitted.
// Write access subsumes read access.
func (p *Permissions[ID]) HasRead(id ID) bool {
	return slices.Contains(p.reads, id) || slices.Contains(p.writes, id)
}

// HasWrite reports whether writing the identity is permitted.
func (p *Permissions[ID]) HasWrite(id ID) bool {
	return slices.Contains(p.writes, id)
}

// Kind returns the strongest access kind granted for the identity.
func (p *Permissions[ID]) Kind(id ID) AccessKind {
	switch {
	case slices.Contains(p.writes, id):
		return AccessWrite
	case slices.Contains(p.reads, id):
		return AccessRead
	default:
		return AccessNone
	}
}

// IsEmpty reports whether no access is granted at all.
func (p *Permissions[ID]) IsEmpty() bool {
	return len(p.reads) == 0 && len(p.writes) == 0
}

// Add merges other into p by plain set union. Duplicates are idempotent and
// writes harden reads of the same identity. Union over disjoint sets is
// commutative and associative.
func (p *Permissions[ID]) Add(other Permissions[ID]) {
	for _, id := range other.writes {
		p.AddWrite(id)
	}
	for _, id := range other.reads {
		p.AddRead(id)
	}
}

// AddStrict merges other into p, treating overlap between independent
// declarations as a conflict: a write in other colliding with any existing
// grant, or a read in other colliding with an existing write. Duplicate
// reads remain idempotent.
//
// It returns the first conflicting identity and true, leaving p unchanged;
// otherwise it merges and returns false.
func (p *Permissions[ID]) AddStrict(other Permissions[ID]) (ID, bool) {
	for _, id := range other.writes {
		if p.HasRead(id) || p.HasWrite(id) {
			return id, true
		}
	}
	for _, id := range other.reads {
		if p.HasWrite(id) {
			return id, true
		}
	}
	p.Add(other)
	var zero ID
	return zero, false
}

// ConflictsWith reports whether the two permission sets cannot be exercised
// concurrently: any write in one overlapping a read or write in the other.
// Read-read overlap never conflicts.
func (p *Permissions[ID]) ConflictsWith(other *Permissions[ID]) bool {
	for _, w := range p.writes {
		if other.HasRead(w) || other.HasWrite(w) {
			return true
		}
	}
	for _, w := range other.writes {
		if p.HasRead(w) {
			return true
		}
	}
	return false
}

// insertSorted inserts id into a sorted slice, keeping it sorted and unique.
func insertSorted[ID identity](s []ID, id ID) []ID {
	i, found := slices.BinarySearch(s, id)
	if found {
		return s
	}
	return slices.Insert(s, i, id)
}
