package query

import (
	"fmt"
	"sort"
	"strings"
)

// Entity describes a queryable entity: its logical name, backing table and
// the set of fields that may appear in filter, order and group keys.
// Entities are registered once at startup; lookups are read-only after that.
type Entity struct {
	// Name is the logical entity name used in qualified field keys,
	// e.g. "Employee" in "Employee.department".
	Name string

	// Table is the SQL table backing the entity.
	Table string

	// Alias is the SQL alias used for the entity in assembled queries.
	Alias string

	fields map[string]string // field name -> column name
}

// NewEntity creates an entity descriptor with the given field-to-column
// mapping. The mapping is copied; the caller's map is not retained.
func NewEntity(name, table, alias string, fields map[string]string) *Entity {
	copied := make(map[string]string, len(fields))
	for field, column := range fields {
		copied[field] = column
	}
	return &Entity{
		Name:   name,
		Table:  table,
		Alias:  alias,
		fields: copied,
	}
}

// Field resolves a field name against this entity.
func (e *Entity) Field(name string) (FieldHandle, error) {
	column, ok := e.fields[name]
	if !ok {
		return FieldHandle{}, fmt.Errorf("%w: %s has no field %q", ErrUnknownField, e.Name, name)
	}
	return FieldHandle{Entity: e, Name: name, Column: column}, nil
}

// Has reports whether the entity has the given field.
func (e *Entity) Has(name string) bool {
	_, ok := e.fields[name]
	return ok
}

// FieldNames returns the entity's field names in sorted order.
func (e *Entity) FieldNames() []string {
	names := make([]string, 0, len(e.fields))
	for name := range e.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FieldHandle is a resolved reference to a concrete column on an entity.
type FieldHandle struct {
	Entity *Entity
	Name   string
	Column string
}

// Qualified returns the alias-qualified SQL column reference.
func (f FieldHandle) Qualified() string {
	return f.Entity.Alias + "." + f.Column
}

// Resolve maps a bare or qualified field name to a column on the primary or
// joined entity. A qualified name ("Entity.field") must reference either the
// primary or the joined entity by logical name; an unqualified name resolves
// against the primary entity.
func Resolve(fieldName string, primary, joined *Entity) (FieldHandle, error) {
	if entityName, field, ok := strings.Cut(fieldName, "."); ok {
		switch {
		case entityName == primary.Name:
			return primary.Field(field)
		case joined != nil && entityName == joined.Name:
			return joined.Field(field)
		default:
			return FieldHandle{}, fmt.Errorf("%w: %q in filter key %q", ErrUnknownEntity, entityName, fieldName)
		}
	}
	return primary.Field(fieldName)
}
