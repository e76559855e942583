package query

// Dialect selects the SQL variant the builder renders. Both dialects share
// positional $n placeholders; they differ in case-insensitive matching and
// membership predicates.
type Dialect int

const (
	DialectPostgres Dialect = iota
	DialectSQLite
)

// DialectForDriver maps a database/sql driver name to its dialect. Unknown
// drivers get the Postgres rendering.
func DialectForDriver(driver string) Dialect {
	if driver == "sqlite3" {
		return DialectSQLite
	}
	return DialectPostgres
}
