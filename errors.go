package parsec

import (
	"errors"
	"fmt"
)

// Sentinel errors. Structured errors below unwrap to these, so callers can
// classify failures with errors.Is.
var (
	// ErrDeclarationConflict is returned at registration time when two
	// independent declarations in one system claim conflicting access to
	// the same component or resource type.
	ErrDeclarationConflict = errors.New("conflicting access declaration")

	// ErrResourceMissing is returned from a system run when a declared
	// resource type has no registered value.
	ErrResourceMissing = errors.New("resource not registered")

	// ErrAccessViolation is returned from a system run when its logic
	// touches a component or resource type outside its declared
	// permissions. This is a programming defect, fatal to that run.
	ErrAccessViolation = errors.New("access outside declared permissions")
)

// ConflictError reports a registration-time declaration conflict.
type ConflictError struct {
	// System is the name of the system being registered.
	System string

	// Category says whether the conflict is over a component or resource.
	Category AccessCategory

	// Name is the type name of the conflicting identity.
	Name string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("parsec: system %q declares conflicting access to %s %s", e.System, e.Category, e.Name)
}

// Unwrap returns ErrDeclarationConflict.
func (e *ConflictError) Unwrap() error {
	return ErrDeclarationConflict
}

// AccessError reports an access attempted during a run that the system never
// declared. It names the offending identity and the attempted versus
// declared access kind for diagnosis.
type AccessError struct {
	// System is the name of the offending system, filled in by the
	// adapter when the error surfaces.
	System string

	// Category says whether a component or resource was touched.
	Category AccessCategory

	// Name is the type name of the identity that was touched.
	Name string

	// Attempted is the access kind the logic asked for.
	Attempted AccessKind

	// Declared is the strongest access kind the system declared for this
	// identity. AccessNone if it declared nothing.
	Declared AccessKind
}

// Error implements the error interface.
func (e *AccessError) Error() string {
	return fmt.Sprintf("parsec: system %q attempted %s access to %s %s (declared: %s)",
		e.System, e.Attempted, e.Category, e.Name, e.Declared)
}

// Unwrap returns ErrAccessViolation.
func (e *AccessError) Unwrap() error {
	return ErrAccessViolation
}

// MissingResourceError reports a declared resource with no registered value.
type MissingResourceError struct {
	// System is the name of the system whose run failed.
	System string

	// Name is the type name of the missing resource.
	Name string
}

// Error implements the error interface.
func (e *MissingResourceError) Error() string {
	return fmt.Sprintf("parsec: system %q requires resource %s which is not registered", e.System, e.Name)
}

// Unwrap returns ErrResourceMissing.
func (e *MissingResourceError) Unwrap() error {
	return ErrResourceMissing
}
