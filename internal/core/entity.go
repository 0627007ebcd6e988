// Package core defines the canonical in-memory model the compilation
// pipeline operates on: EntityDef, FieldDef, and their supporting types.
// Values in this package are produced by internal/loader, mutated only by
// internal/resolve, and become immutable once internal/plan has run.
package core

// SourceType classifies how an entity's records come into existence.
type SourceType string

const (
	// SourceRoot entities are parsed directly from a raw input string.
	SourceRoot SourceType = "root"
	// SourceDerived entities are produced from one or more parent records.
	SourceDerived SourceType = "derived"
	// SourceReference entities are static lookup tables.
	SourceReference SourceType = "reference"
)

// Repetition describes the cardinality of a derived entity relative to its parent.
type Repetition string

const (
	// RepetitionSingle: one parent produces at most one instance.
	RepetitionSingle Repetition = "single"
	// RepetitionRepeated: one parent produces many instances.
	RepetitionRepeated Repetition = "repeated"
)

// ParentRef names one entity this entity derives from.
type ParentRef struct {
	// Name is the local binding name for the parent within this entity
	// (used by extraction.copy_from_source.parent and sources[].parent).
	Name string
	// ParentType is the referenced entity's name.
	ParentType string
}

// RepeatedFor names the parent entity, the list-valued field on it that is
// iterated, and the local alias bound to each element. Present iff
// Repetition == RepetitionRepeated on a derived entity.
type RepeatedFor struct {
	Entity      string
	Field       string
	EachKnownAs string
}

// IndexDef describes one secondary index on a persistent entity's table.
type IndexDef struct {
	Fields []string
	Unique bool
}

// PersistenceCfg describes how an entity is mapped onto storage.
// Its presence on an EntityDef implies the entity is persisted.
type PersistenceCfg struct {
	// Table is the target table name. Empty means "not yet defaulted" —
	// the Resolver fills it in with the snake_case plural of the entity name.
	Table string
	// UnicityFields is the ordered business-key tuple used for the unique
	// index and for get_or_create matching.
	UnicityFields []string
	Indexes       []IndexDef
}

// EntityDef is the compiled, dialect-independent form of one entity
// specification. See spec.md §3 for the full contract.
type EntityDef struct {
	Name       string
	SourceType SourceType
	IsAbstract bool
	Repetition Repetition

	// RepeatedFor is non-nil iff Repetition == RepetitionRepeated.
	RepeatedFor *RepeatedFor

	Parents []ParentRef
	Fields  []*FieldDef

	// Persistence is nil when the entity is not persisted.
	Persistence *PersistenceCfg

	Labels map[string]string

	// Provenance records where this entity was declared, for error messages
	// and for the loader's dialect-equivalence tests.
	Provenance Provenance

	// --- populated by internal/resolve; nil/zero until resolution runs ---

	// ResolvedParents mirrors Parents but with each entry's EntityDef
	// pointer attached, to avoid repeated by-name lookups during planning
	// and emission.
	ResolvedParents []*ResolvedParent

	// ResolvedTransforms is the set of transform names this entity's
	// computed_from fields reference, deduplicated.
	ResolvedTransforms []string

	// EmissionOrder is this entity's 0-based rank in the plan's global
	// emission order. Left at its zero value until the Planner sets it.
	EmissionOrder int
}

// ResolvedParent pairs a ParentRef with the EntityDef it resolves to.
type ResolvedParent struct {
	Ref    ParentRef
	Entity *EntityDef
}

// Provenance locates the source document an entity (or field) came from.
type Provenance struct {
	File   string
	Line   int // best-effort; 0 means unknown
	Dialect string // "v1" or "legacy"
}

// TableName returns the entity's resolved table name, defaulting to the
// snake_case plural of the entity name when Persistence.Table is unset.
// Resolver calls this once and writes the result back; emitters may call it
// directly since it is a pure function of already-resolved state.
func (e *EntityDef) TableName() string {
	if e.Persistence != nil && e.Persistence.Table != "" {
		return e.Persistence.Table
	}
	return pluralizeSnake(toSnakeCase(e.Name))
}

// IsPersistent reports whether this entity has a persistence mapping and is
// not abstract (abstract entities are never persisted regardless of the
// persistence block, per spec.md §3: "if true, no tables, models, or
// extraction are emitted").
func (e *EntityDef) IsPersistent() bool {
	return !e.IsAbstract && e.Persistence != nil
}

// FieldByName returns the field with the given name, or nil.
func (e *EntityDef) FieldByName(name string) *FieldDef {
	for _, f := range e.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// ParentByName returns the ParentRef with the given local name, or nil.
func (e *EntityDef) ParentByName(name string) *ParentRef {
	for i := range e.Parents {
		if e.Parents[i].Name == name {
			return &e.Parents[i]
		}
	}
	return nil
}
