package parsec

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

// Resources is a collection of singleton, world-global values not tied to
// any entity. It is shared across all systems; read-only versus
// exclusive-write discipline on top of it is enforced by the permission
// sets computed at registration, not by locking around user logic.
type Resources struct {
	mu     sync.RWMutex
	values map[ResourceID]unsafe.Pointer
}

// NewResources creates an empty resource collection.
func NewResources() *Resources {
	return &Resources{values: make(map[ResourceID]unsafe.Pointer)}
}

// Insert registers a resource value, replacing any previous value of the
// same type.
func Insert[T any](r *Resources, value *T) {
	if value == nil {
		panic("parsec: resources must be non-nil pointers")
	}
	r.mu.Lock()
	r.values[resourceID[T]()] = unsafe.Pointer(value)
	r.mu.Unlock()
}

// Fetch returns the registered resource of type T, unrestricted.
// Intended for host code outside a scheduled run; systems go through their
// ResourceView instead.
func Fetch[T any](r *Resources) (*T, bool) {
	r.mu.RLock()
	ptr, ok := r.values[resourceID[T]()]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return (*T)(ptr), true
}

// insertRaw registers a resource from a raw pointer value, used by command
// buffer replay.
func (r *Resources) insertRaw(id ResourceID, value any) {
	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		panic(fmt.Sprintf("parsec: resources must be non-nil pointers, got %T", value))
	}
	r.mu.Lock()
	r.values[id] = v.UnsafePointer()
	r.mu.Unlock()
}

// fetch returns the raw slot for a resource identity.
func (r *Resources) fetch(id ResourceID) (unsafe.Pointer, bool) {
	r.mu.RLock()
	ptr, ok := r.values[id]
	r.mu.RUnlock()
	return ptr, ok
}

// ResourceView is a facade over the shared resource collection, restricted
// to one system's declared resource permissions for the duration of a run.
type ResourceView struct {
	res  *Resources
	perm *Permissions[ResourceID]
}

// Res returns a shared read handle to resource type T. The run aborts with
// an access violation if the system did not declare read or write access to
// T. Returns nil if no value is registered.
func Res[T any](v *ResourceView) *T {
	id := resourceID[T]()
	if !v.perm.HasRead(id) {
		panic(&AccessError{
			Category:  CategoryResource,
			Name:      ResourceName(id),
			Attempted: AccessRead,
			Declared:  v.perm.Kind(id),
		})
	}
	ptr, ok := v.res.fetch(id)
	if !ok {
		return nil
	}
	return (*T)(ptr)
}

// ResMut returns an exclusive write handle to resource type T. The run
// aborts with an access violation if the system did not declare write
// access to T. Returns nil if no value is registered.
func ResMut[T any](v *ResourceView) *T {
	id := resourceID[T]()
	if !v.perm.HasWrite(id) {
		panic(&AccessError{
			Category:  CategoryResource,
			Name:      ResourceName(id),
			Attempted: AccessWrite,
			Declared:  v.perm.Kind(id),
		})
	}
	ptr, ok := v.res.fetch(id)
	if !ok {
		return nil
	}
	return (*T)(ptr)
}
