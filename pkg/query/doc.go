// Package query builds parameterized SQL from declarative filter, sort,
// aggregate and pagination specifications.
//
// # Overview
//
// The package has three layers, composed bottom-up:
//
// Field resolution: a static registry of entities and their filterable
// fields, built once at startup. Field keys may be qualified as
// "Entity.field" to disambiguate between the primary and a joined entity.
//
// Filter compilation: a mapping of filter keys (optionally suffixed with an
// operator such as __in or __ilike) is compiled into a conjunction of
// predicates. No OR or nesting is supported.
//
// Query assembly: a Spec carrying filters, excludes, aggregates, grouping,
// ordering, latest-per-group selection and pagination is assembled into a
// single parameterized SELECT, plus a companion COUNT sharing the same
// filter pipeline.
//
// # Safety
//
// Identifiers are never taken from request input directly: every field key
// is resolved against the registry before it reaches the SQL text, and all
// values are bound through placeholders.
package query
