// Package resolve validates a collection of core.EntityDef values, wires
// cross-entity and cross-field references, and materializes the auxiliary
// structures (by-name index, children-of index, transform usage) spec.md
// §4.3 calls for. Resolution either succeeds completely or fails with every
// error it found in one pass (see *Errors below) — it never short-circuits
// on the first problem, per spec.md §7's "multi-error report" policy.
package resolve

import (
	"fmt"
	"strings"
)

// DuplicateEntityError: two entities declared the same name.
type DuplicateEntityError struct {
	Name        string
	FirstFile   string
	DuplicateAt string
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("duplicate entity %q: first declared in %s, redeclared in %s", e.Name, e.FirstFile, e.DuplicateAt)
}

// UnknownParentError: parents[i].parent_type names an entity that does not exist.
type UnknownParentError struct {
	Entity string
	Parent string
}

func (e *UnknownParentError) Error() string {
	return fmt.Sprintf("entity %q: unknown parent %q", e.Entity, e.Parent)
}

// UnknownTransformError: computed_from.transform names a transform not in the registry.
type UnknownTransformError struct {
	Entity    string
	Field     string
	Transform string
}

func (e *UnknownTransformError) Error() string {
	return fmt.Sprintf("entity %q, field %q: unknown transform %q", e.Entity, e.Field, e.Transform)
}

// ParentCycleError: the parent_type reference graph contains a cycle.
type ParentCycleError struct {
	Cycle []string // in declaration order, first element repeated at the end
}

func (e *ParentCycleError) Error() string {
	return fmt.Sprintf("parent cycle: %s", strings.Join(e.Cycle, " -> "))
}

// FieldCycleError: an entity's computed-field dependency DAG contains a cycle.
type FieldCycleError struct {
	Entity string
	Cycle  []string
}

func (e *FieldCycleError) Error() string {
	return fmt.Sprintf("entity %q: field cycle: %s", e.Entity, strings.Join(e.Cycle, " -> "))
}

// RepeatedForNonListError: repeated_for.field is not a list-typed field on the parent.
type RepeatedForNonListError struct {
	Entity string
	Parent string
	Field  string
}

func (e *RepeatedForNonListError) Error() string {
	return fmt.Sprintf("entity %q: repeated_for field %q on parent %q is not list-typed", e.Entity, e.Field, e.Parent)
}

// RequiredFieldUnresolvableError: a non-nullable field has no way to be populated (invariant 6).
type RequiredFieldUnresolvableError struct {
	Entity string
	Field  string
}

func (e *RequiredFieldUnresolvableError) Error() string {
	return fmt.Sprintf("entity %q, field %q: non-nullable field has no extraction, computed_from, or root-parser binding", e.Entity, e.Field)
}

// UnknownSourceFieldError: extraction/computed_from references a nonexistent parent or sibling field.
type UnknownSourceFieldError struct {
	Entity  string
	Field   string
	Detail  string
}

func (e *UnknownSourceFieldError) Error() string {
	return fmt.Sprintf("entity %q, field %q: %s", e.Entity, e.Field, e.Detail)
}

// UnicityFieldUnknownError: a unicity or index field is not declared on the entity.
type UnicityFieldUnknownError struct {
	Entity string
	Field  string
	Kind   string // "unicity" or "index"
}

func (e *UnicityFieldUnknownError) Error() string {
	return fmt.Sprintf("entity %q: %s field %q is not a declared field", e.Entity, e.Kind, e.Field)
}

// Errors aggregates every error found in one resolution pass.
// spec.md §7: "The core collects all resolution errors for one pass before
// exiting (multi-error report), rather than short-circuiting."
type Errors struct {
	Errors []error
}

func (e *Errors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	lines := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		lines[i] = fmt.Sprintf("  [%d] %s", i+1, err.Error())
	}
	return fmt.Sprintf("%d resolution error(s):\n%s", len(e.Errors), strings.Join(lines, "\n"))
}

func (e *Errors) Unwrap() []error {
	return e.Errors
}
