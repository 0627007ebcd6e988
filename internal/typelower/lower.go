// Package typelower maps the declarative field type language (core.FieldType)
// to each target representation the emitters need: record-struct type, JSON
// wire type, SQL column type (PostgreSQL and MySQL dialects), and ORM column
// type. This is the single source of truth the emitters must all agree
// with — spec.md §4.6: "every emitter must agree on ... field types,
// nullability."
package typelower

import "github.com/nomnomgen/compiler/internal/core"

// SQLDialect selects the target RDBMS for Schema Emitter column types.
type SQLDialect string

const (
	DialectPostgres SQLDialect = "postgres"
	DialectMySQL    SQLDialect = "mysql"
)

// RecordType returns the target-language record field type, e.g. "String",
// "Option<String>", "Vec<String>".
func RecordType(t core.FieldType, nullable bool) string {
	base := recordBase(t)
	if nullable {
		return "Option<" + base + ">"
	}
	return base
}

func recordBase(t core.FieldType) string {
	switch t.Kind {
	case core.KindString:
		return "String"
	case core.KindInt:
		return "i64"
	case core.KindFloat:
		return "f64"
	case core.KindBool:
		return "bool"
	case core.KindDate:
		return "NaiveDate"
	case core.KindDateTime:
		return "DateTime<Utc>"
	case core.KindList:
		elem := "serde_json::Value"
		if t.Elem != nil {
			elem = recordBase(*t.Elem)
		}
		return "Vec<" + elem + ">"
	case core.KindRef:
		return "String"
	default:
		return "String"
	}
}

// JSONType names the wire (JSON) type a field serializes to, for
// documentation in generated comments and for the dashboard's frontend type
// mirror.
func JSONType(t core.FieldType, nullable bool) string {
	base := jsonBase(t)
	if nullable {
		return base + " | null"
	}
	return base
}

func jsonBase(t core.FieldType) string {
	switch t.Kind {
	case core.KindString, core.KindRef:
		return "string"
	case core.KindInt, core.KindFloat:
		return "number"
	case core.KindBool:
		return "boolean"
	case core.KindDate:
		return "string" // ISO-8601
	case core.KindDateTime:
		return "string" // RFC 3339
	case core.KindList:
		elem := "any"
		if t.Elem != nil {
			elem = jsonBase(*t.Elem)
		}
		return elem + "[]"
	default:
		return "any"
	}
}

// SQLColumn returns the full column type clause (type + nullability) for
// the given dialect, matching spec.md §4.5's lowering table exactly.
func SQLColumn(t core.FieldType, nullable bool, dialect SQLDialect) string {
	var base string
	switch t.Kind {
	case core.KindString:
		if dialect == DialectMySQL {
			base = "VARCHAR(255)"
		} else {
			base = "TEXT"
		}
	case core.KindInt:
		base = "BIGINT"
	case core.KindFloat:
		if dialect == DialectMySQL {
			base = "DOUBLE"
		} else {
			base = "NUMERIC"
		}
	case core.KindBool:
		if dialect == DialectMySQL {
			base = "TINYINT(1)"
		} else {
			base = "BOOLEAN"
		}
	case core.KindDate:
		base = "DATE"
	case core.KindDateTime:
		if dialect == DialectMySQL {
			base = "DATETIME"
		} else {
			base = "TIMESTAMPTZ"
		}
	case core.KindList:
		if dialect == DialectMySQL {
			base = "JSON"
		} else {
			base = "JSONB"
		}
	case core.KindRef:
		if dialect == DialectMySQL {
			base = "VARCHAR(255)"
		} else {
			base = "TEXT"
		}
	default:
		base = "TEXT"
	}

	if nullable {
		return base + " NULL"
	}
	return base + " NOT NULL"
}

// ORMColumn describes a column in ORM-model terms: a base kind name plus
// nullability, used by the ORM Model Emitter to pick the right column
// builder (e.g. diesel's `text`, `bigint`, `numeric`, `jsonb`).
type ORMColumn struct {
	Kind     string
	Nullable bool
}

func ORM(t core.FieldType, nullable bool) ORMColumn {
	var kind string
	switch t.Kind {
	case core.KindString, core.KindRef:
		kind = "text"
	case core.KindInt:
		kind = "bigint"
	case core.KindFloat:
		kind = "numeric"
	case core.KindBool:
		kind = "boolean"
	case core.KindDate:
		kind = "date"
	case core.KindDateTime:
		kind = "datetime"
	case core.KindList:
		kind = "json"
	default:
		kind = "text"
	}
	return ORMColumn{Kind: kind, Nullable: nullable}
}

// SurrogateKeyColumn is the auto-incrementing primary key added to every
// persistent entity's table (spec.md §4.5). It is not part of the
// declarative field list and never appears in record-struct definitions.
func SurrogateKeyColumn(dialect SQLDialect) string {
	if dialect == DialectMySQL {
		return "id BIGINT AUTO_INCREMENT PRIMARY KEY"
	}
	return "id BIGSERIAL PRIMARY KEY"
}
