package parsec

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// ComponentID is a unique identifier for a component type.
// Valid IDs range from 0 to 255.
type ComponentID uint8

// ResourceID is a unique identifier for a resource type.
// Valid IDs range from 0 to 255.
type ResourceID uint8

// MaxComponents is the maximum number of component types supported.
const MaxComponents = 255

// MaxResources is the maximum number of resource types supported.
const MaxResources = 255

// typeRegistry assigns sequential, process-lifetime IDs to types with
// lock-free reads. IDs are never reused for a different type.
// sync.Map provides lock-free reads for the hot path (looking up registered
// types) while still allowing safe concurrent registration.
type typeRegistry struct {
	// kind names the registry ("component" or "resource") for diagnostics.
	kind string

	// types maps reflect.Type to the assigned uint8 ID
	types sync.Map

	// names and typesArr store metadata indexed by ID.
	// Written once during registration and read-only afterward.
	names    [MaxComponents]string
	typesArr [MaxComponents]reflect.Type

	// nextID is the next available ID (atomic for lock-free allocation)
	nextID atomic.Uint32

	// arrMu protects writes to names and typesArr during registration
	arrMu sync.RWMutex
}

// Process-wide registries. Identities are stable for the process lifetime,
// so there is no teardown.
var (
	componentTypes = &typeRegistry{kind: "component"}
	resourceTypes  = &typeRegistry{kind: "resource"}
)

// register assigns an ID to a type, or returns the existing one.
func (r *typeRegistry) register(t reflect.Type) uint8 {
	// Fast path: lock-free read from sync.Map
	if id, ok := r.types.Load(t); ok {
		return id.(uint8)
	}

	// Slow path: allocate an ID atomically before attempting to register,
	// so each registration attempt gets a unique one.
	newID := uint8(r.nextID.Add(1) - 1)
	if newID >= MaxComponents {
		panic(fmt.Sprintf("parsec: %s type limit exceeded (max %d types)", r.kind, MaxComponents))
	}

	// LoadOrStore ensures only one goroutine wins if multiple race here.
	actual, loaded := r.types.LoadOrStore(t, newID)
	if loaded {
		// Another goroutine registered this type first. Our allocated ID
		// is wasted, but that's rare.
		return actual.(uint8)
	}

	r.arrMu.Lock()
	r.names[newID] = t.Name()
	r.typesArr[newID] = t
	r.arrMu.Unlock()

	return newID
}

// name returns the type name for an assigned ID.
func (r *typeRegistry) name(id uint8) string {
	r.arrMu.RLock()
	defer r.arrMu.RUnlock()
	return r.names[id]
}

// typeOf returns the reflect.Type for an assigned ID.
func (r *typeRegistry) typeOf(id uint8) reflect.Type {
	r.arrMu.RLock()
	defer r.arrMu.RUnlock()
	return r.typesArr[id]
}

// typeOf returns the reflect.Type of T.
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// componentID returns the ComponentID for type T, registering it if needed.
func componentID[T any]() ComponentID {
	return ComponentID(componentTypes.register(typeOf[T]()))
}

// resourceID returns the ResourceID for type T, registering it if needed.
func resourceID[T any]() ResourceID {
	return ResourceID(resourceTypes.register(typeOf[T]()))
}

// ComponentIDOf returns the ComponentID for type T, registering it if needed.
func ComponentIDOf[T any]() ComponentID {
	return componentID[T]()
}

// ResourceIDOf returns the ResourceID for type T, registering it if needed.
func ResourceIDOf[T any]() ResourceID {
	return resourceID[T]()
}

// ComponentName returns the name of the component type with the given ID.
func ComponentName(id ComponentID) string {
	return componentTypes.name(uint8(id))
}

// ResourceName returns the name of the resource type with the given ID.
func ResourceName(id ResourceID) string {
	return resourceTypes.name(uint8(id))
}

// ComponentType returns the reflect.Type of the component with the given ID.
func ComponentType(id ComponentID) reflect.Type {
	return componentTypes.typeOf(uint8(id))
}

// ResourceType returns the reflect.Type of the resource with the given ID.
func ResourceType(id ResourceID) reflect.Type {
	return resourceTypes.typeOf(uint8(id))
}

// RegisteredComponentCount returns the number of registered component types.
func RegisteredComponentCount() int {
	return int(componentTypes.nextID.Load())
}

// RegisteredResourceCount returns the number of registered resource types.
func RegisteredResourceCount() int {
	return int(resourceTypes.nextID.Load())
}
