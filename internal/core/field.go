package core

// FieldKind names a base type of the declarative field type language
// (spec.md §3). List and Ref carry a type parameter, so the full type is
// the FieldType struct below rather than a bare FieldKind.
type FieldKind string

const (
	KindString   FieldKind = "String"
	KindInt      FieldKind = "Int"
	KindFloat    FieldKind = "Float"
	KindBool     FieldKind = "Bool"
	KindDate     FieldKind = "Date"
	KindDateTime FieldKind = "DateTime"
	KindList     FieldKind = "List"
	KindRef      FieldKind = "Ref"
)

// FieldType describes a field's declarative type, including the element
// type of a List<T> or the target entity of a Ref<Entity>.
type FieldType struct {
	Kind FieldKind
	// Elem is the element type for KindList (e.g. List<String> -> Elem.Kind == KindString).
	Elem *FieldType
	// RefEntity is the target entity name for KindRef.
	RefEntity string
}

// String renders the declarative type the way spec.md writes it, e.g.
// "List<Object>" or "Ref<Order>".
func (t FieldType) String() string {
	switch t.Kind {
	case KindList:
		if t.Elem == nil {
			return "List<Object>"
		}
		return "List<" + t.Elem.String() + ">"
	case KindRef:
		return "Ref<" + t.RefEntity + ">"
	default:
		return string(t.Kind)
	}
}

// CopyFromSource copies a value from a named field on a named parent.
type CopyFromSource struct {
	Parent string
	Field  string
}

// SourceKind distinguishes where a computed_from source pulls its value from.
type SourceKind string

const (
	SourceFromParent  SourceKind = "parent"
	SourceFromContext SourceKind = "context"
	SourceFromRaw     SourceKind = "raw"
	// SourceFromField references another field of the same entity by name.
	// This is how a computed field expresses an intra-entity dependency
	// (spec.md §3 invariant 8 / §4.4's per-entity field DAG); Field holds
	// the sibling field's name.
	SourceFromField SourceKind = "field"
)

// SourceRef is one entry of a computed_from.sources list.
type SourceRef struct {
	Source SourceKind
	// Field is set when Source == SourceFromParent (the parent's field name).
	Field string
	// Parent is set when Source == SourceFromParent (the local parent binding name).
	Parent string
	// Key is set when Source == SourceFromContext (the context lookup key).
	Key string
}

// Reducer is a built-in structural reduction over a same-entity List field,
// distinct from a named external transform (see SPEC_FULL.md §3 supplement).
// The zero value ReducerNone means "not a reducer field".
type Reducer string

const (
	ReducerNone  Reducer = ""
	ReducerCount Reducer = "count"
	ReducerAny   Reducer = "any"
	ReducerFirst Reducer = "first"
)

// ComputedFrom describes a transform invocation, or a built-in reducer, that
// produces a field's value.
type ComputedFrom struct {
	// Transform is the external transform name. Empty when Reducer is set.
	Transform string
	// Reducer is set for built-in structural reductions (count/any/first)
	// over a sibling List field named by ReducerOver. Mutually exclusive
	// with Transform.
	Reducer     Reducer
	ReducerOver string

	Sources []SourceRef
	// Args holds static values passed to the transform alongside resolved sources.
	Args map[string]any
}

// FieldDef is one field of an EntityDef. See spec.md §3.
type FieldDef struct {
	Name      string
	Type      FieldType
	Nullable  bool
	Indexed   bool

	// Extraction and ComputedFrom are mutually exclusive. At most one is
	// non-nil. Neither set means: for root entities, the field must be
	// produced directly by the root parser; for any other entity, the field
	// is unproducible and non-nullable fields fail resolution (Invariant 6).
	Extraction   *CopyFromSource
	ComputedFrom *ComputedFrom

	Provenance Provenance

	// SameEntityDeps is populated by the Resolver: the names of other fields
	// on the same entity that this field's computed_from references, through
	// source=field entries or a reducer's ReducerOver, used for intra-entity
	// dependency ordering. See internal/resolve for how this is derived
	// (spec §4.3 invariant 8, §4.4).
	SameEntityDeps []string
}

// IsComputed reports whether the field is populated via computed_from
// (transform or reducer).
func (f *FieldDef) IsComputed() bool {
	return f.ComputedFrom != nil
}

// IsCopied reports whether the field is populated via extraction.copy_from_source.
func (f *FieldDef) IsCopied() bool {
	return f.Extraction != nil
}

// ColumnName returns the field's snake_case SQL/ORM column name.
func (f *FieldDef) ColumnName() string {
	return toSnakeCase(f.Name)
}
