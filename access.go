package parsec

// AccessKind is the kind of access a declaration grants.
type AccessKind uint8

const (
	// AccessNone grants no data access. Used by pass-through markers and
	// filter-only clauses.
	AccessNone AccessKind = iota
	// AccessRead grants shared read access.
	AccessRead
	// AccessWrite grants exclusive write access.
	AccessWrite
)

// String returns the string representation of the access kind.
func (k AccessKind) String() string {
	switch k {
	case AccessNone:
		return "none"
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	default:
		return "unknown"
	}
}

// AccessCategory is the identity category a declaration ranges over.
type AccessCategory uint8

const (
	// CategoryComponent declarations name per-entity component types.
	CategoryComponent AccessCategory = iota
	// CategoryResource declarations name world-global singleton types.
	CategoryResource
)

// String returns the string representation of the access category.
func (c AccessCategory) String() string {
	switch c {
	case CategoryComponent:
		return "component"
	case CategoryResource:
		return "resource"
	default:
		return "unknown"
	}
}

// Access is one declared access: a kind, a category and at most one identity.
// Filter-only clauses (With/Without) carry an identity but no access kind;
// they shape a query's predicate without granting data access.
type Access struct {
	// Kind is the access kind granted.
	Kind AccessKind

	// Category says whether the identity is a component or resource type.
	Category AccessCategory

	// Exclude marks a filter clause requiring the component to be absent.
	Exclude bool

	filter    bool
	component ComponentID
	resource  ResourceID
}

// Read declares shared read access to component type T. In a query it also
// requires matching entities to have T.
func Read[T any]() Access {
	return Access{Kind: AccessRead, Category: CategoryComponent, component: componentID[T]()}
}

// Write declares exclusive write access to component type T. In a query it
// also requires matching entities to have T.
func Write[T any]() Access {
	return Access{Kind: AccessWrite, Category: CategoryComponent, component: componentID[T]()}
}

// With declares a filter-only clause: matching entities must have component
// type T. No data access is granted.
func With[T any]() Access {
	return Access{Kind: AccessNone, Category: CategoryComponent, filter: true, component: componentID[T]()}
}

// Without declares a filter-only clause: matching entities must lack
// component type T. No data access is granted.
func Without[T any]() Access {
	return Access{Kind: AccessNone, Category: CategoryComponent, filter: true, Exclude: true, component: componentID[T]()}
}

// ReadRes declares shared read access to resource type T.
func ReadRes[T any]() Access {
	return Access{Kind: AccessRead, Category: CategoryResource, resource: resourceID[T]()}
}

// WriteRes declares exclusive write access to resource type T.
func WriteRes[T any]() Access {
	return Access{Kind: AccessWrite, Category: CategoryResource, resource: resourceID[T]()}
}

// None declares no access at all. It composes as the identity element.
func None() Access {
	return Access{Kind: AccessNone, Category: CategoryComponent}
}

// Name returns the type name of the declared identity, or "" for None.
func (a Access) Name() string {
	if a.Kind == AccessNone && !a.filter {
		return ""
	}
	if a.Category == CategoryResource {
		return ResourceName(a.resource)
	}
	return ComponentName(a.component)
}

// SystemAccess aggregates a system's resource and component permission sets.
// It is derived once at registration from the system's ordered declarations
// and is invariant across all pass executions.
type SystemAccess struct {
	// Resources are the declared resource-type permissions.
	Resources Permissions[ResourceID]

	// Components are the declared component-type permissions.
	Components Permissions[ComponentID]
}

// Conflicts returns true if two systems with these access patterns cannot
// run concurrently: any write-identity in one overlapping any read or write
// identity in the other, in either category.
func (a *SystemAccess) Conflicts(other *SystemAccess) bool {
	return a.Resources.ConflictsWith(&other.Resources) ||
		a.Components.ConflictsWith(&other.Components)
}

// add folds one declaration into the aggregate. Conflicting sibling
// declarations are a property of the system's shape and reject it at
// registration time, never mid-pass.
func (a *SystemAccess) add(system string, acc Access) error {
	if acc.Kind == AccessNone {
		return nil
	}
	switch acc.Category {
	case CategoryResource:
		var p Permissions[ResourceID]
		if acc.Kind == AccessWrite {
			p.AddWrite(acc.resource)
		} else {
			p.AddRead(acc.resource)
		}
		if id, conflict := a.Resources.AddStrict(p); conflict {
			return &ConflictError{System: system, Category: CategoryResource, Name: ResourceName(id)}
		}
	default:
		var p Permissions[ComponentID]
		if acc.Kind == AccessWrite {
			p.AddWrite(acc.component)
		} else {
			p.AddRead(acc.component)
		}
		if id, conflict := a.Components.AddStrict(p); conflict {
			return &ConflictError{System: system, Category: CategoryComponent, Name: ComponentName(id)}
		}
	}
	return nil
}

// composeAccess folds an ordered list of declarations plus query
// declarations into one aggregated permission set pair.
func composeAccess(system string, accesses []Access, queries []*Query) (SystemAccess, error) {
	var sa SystemAccess
	for _, acc := range accesses {
		if err := sa.add(system, acc); err != nil {
			return SystemAccess{}, err
		}
	}
	for _, q := range queries {
		for _, acc := range q.accesses {
			if err := sa.add(system, acc); err != nil {
				return SystemAccess{}, err
			}
		}
	}
	return sa, nil
}
