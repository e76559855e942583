package query

import (
	"fmt"
	"reflect"
	"strings"
)

// Op identifies a predicate operator.
type Op int

const (
	OpEq Op = iota // field == value (default when no suffix is present)
	OpNe           // field != value (exclusions only)
	OpIn           // field ∈ value, value must be a slice
	OpGte          // field >= value
	OpLte          // field <= value
	OpGt           // field > value
	OpLt           // field < value
	OpILike        // case-insensitive pattern match
)

// operator suffix tokens, checked in order against the end of a filter key.
var opSuffixes = []struct {
	token string
	op    Op
}{
	{"__in", OpIn},
	{"__gte", OpGte},
	{"__lte", OpLte},
	{"__gt", OpGt},
	{"__lt", OpLt},
	{"__ilike", OpILike},
}

// Filter is a single filter key/value pair. The key may carry a qualification
// prefix ("Entity.field") and an operator suffix ("field__gte").
type Filter struct {
	Key   string
	Value interface{}
}

// Filters is an ordered filter set. Order is preserved through compilation so
// that assembled SQL is deterministic for identical input.
type Filters []Filter

// With appends a filter and returns the extended set.
func (f Filters) With(key string, value interface{}) Filters {
	return append(f, Filter{Key: key, Value: value})
}

// Predicate is a compiled single-field condition ready for rendering.
type Predicate struct {
	Field FieldHandle
	Op    Op
	Value interface{}
}

// splitKey strips a recognized operator suffix off a filter key. Absence of a
// recognized suffix means equality.
func splitKey(key string) (fieldPart string, op Op) {
	for _, suffix := range opSuffixes {
		if strings.HasSuffix(key, suffix.token) {
			return strings.TrimSuffix(key, suffix.token), suffix.op
		}
	}
	return key, OpEq
}

// CompileFilters compiles an ordered filter set into a conjunction of
// predicates. Every key must resolve against the primary or joined entity;
// the first failure aborts compilation.
func CompileFilters(filters Filters, primary, joined *Entity) ([]Predicate, error) {
	if len(filters) == 0 {
		return nil, nil
	}

	predicates := make([]Predicate, 0, len(filters))
	for _, filter := range filters {
		fieldPart, op := splitKey(filter.Key)

		handle, err := Resolve(fieldPart, primary, joined)
		if err != nil {
			return nil, err
		}

		if op == OpIn && !isSequence(filter.Value) {
			return nil, fmt.Errorf("%w: %s requires a slice, got %T", ErrBadFilterValue, filter.Key, filter.Value)
		}

		predicates = append(predicates, Predicate{Field: handle, Op: op, Value: filter.Value})
	}
	return predicates, nil
}

// CompileExcludes compiles an exclusion set into equality-negation
// predicates. Keys naming fields absent on both entities are silently
// skipped rather than treated as errors; this mirrors the lenient contract
// of the exclusion path (unknown exclude keys are a no-op).
func CompileExcludes(excludes Filters, primary, joined *Entity) []Predicate {
	if len(excludes) == 0 {
		return nil
	}

	predicates := make([]Predicate, 0, len(excludes))
	for _, exclude := range excludes {
		var handle FieldHandle
		switch {
		case primary.Has(exclude.Key):
			handle, _ = primary.Field(exclude.Key)
		case joined != nil && joined.Has(exclude.Key):
			handle, _ = joined.Field(exclude.Key)
		default:
			continue
		}
		predicates = append(predicates, Predicate{Field: handle, Op: OpNe, Value: exclude.Value})
	}
	return predicates
}

func isSequence(v interface{}) bool {
	if v == nil {
		return false
	}
	kind := reflect.TypeOf(v).Kind()
	return kind == reflect.Slice || kind == reflect.Array
}
