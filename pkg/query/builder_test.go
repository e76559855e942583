package query

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBasic(t *testing.T) {
	employees, _ := testEntities()

	sql, args, err := Build(Spec{
		Primary: employees,
		Filters: Filters{}.
			With("organization_id", 7).
			With("status", "ACTIVE"),
	}, DialectPostgres)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT e.* FROM employees e WHERE e.organization_id = $1 AND e.status = $2",
		sql)
	assert.Equal(t, []interface{}{7, "ACTIVE"}, args)
}

func TestBuildJoinAndEager(t *testing.T) {
	employees, orgs := testEntities()

	sql, args, err := Build(Spec{
		Primary: employees,
		Join: &Join{
			Entity:       orgs,
			PrimaryField: "organization_id",
			JoinedField:  "id",
		},
		EagerFields: []string{"Organization.name"},
		Filters:     Filters{}.With("Organization.name__ilike", "%acme%"),
	}, DialectPostgres)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT e.*, o.name FROM employees e JOIN organizations o ON e.organization_id = o.id"+
			" WHERE o.name ILIKE $1",
		sql)
	assert.Equal(t, []interface{}{"%acme%"}, args)
}

func TestBuildInUsesArray(t *testing.T) {
	employees, _ := testEntities()

	sql, args, err := Build(Spec{
		Primary: employees,
		Filters: Filters{}.With("department__in", []string{"ENG", "OPS"}),
	}, DialectPostgres)
	require.NoError(t, err)
	assert.Equal(t, "SELECT e.* FROM employees e WHERE e.department = ANY($1)", sql)
	require.Len(t, args, 1)
	assert.Equal(t, pq.Array([]string{"ENG", "OPS"}), args[0])
}

func TestBuildExcludesAfterFilters(t *testing.T) {
	employees, _ := testEntities()

	sql, args, err := Build(Spec{
		Primary:  employees,
		Filters:  Filters{}.With("organization_id", 7),
		Excludes: Filters{}.With("status", "TERMINATED"),
	}, DialectPostgres)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT e.* FROM employees e WHERE e.organization_id = $1 AND e.status != $2",
		sql)
	assert.Equal(t, []interface{}{7, "TERMINATED"}, args)
}

func TestBuildAggregates(t *testing.T) {
	employees, _ := testEntities()

	sql, _, err := Build(Spec{
		Primary: employees,
		Aggregates: []Aggregate{
			{Field: "salary", Func: AggAvg},
			{Field: "id", Func: AggCount},
		},
		Filters: Filters{}.With("organization_id", 7),
		GroupBy: []string{"department"},
	}, DialectPostgres)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT AVG(e.salary) AS salary_avg, COUNT(e.id) AS id_count FROM employees e"+
			" WHERE e.organization_id = $1 GROUP BY e.department",
		sql)
}

func TestBuildOrderByDescendingPrefix(t *testing.T) {
	employees, _ := testEntities()

	sql, _, err := Build(Spec{
		Primary: employees,
		OrderBy: []string{"-created_at", "name"},
	}, DialectPostgres)
	require.NoError(t, err)
	assert.Equal(t, "SELECT e.* FROM employees e ORDER BY e.created_at DESC, e.name ASC", sql)
}

func TestBuildPagination(t *testing.T) {
	employees, _ := testEntities()

	t.Run("skip and limit", func(t *testing.T) {
		sql, args, err := Build(Spec{
			Primary: employees,
			Skip:    20,
			Limit:   10,
		}, DialectPostgres)
		require.NoError(t, err)
		assert.Equal(t, "SELECT e.* FROM employees e LIMIT $1 OFFSET $2", sql)
		assert.Equal(t, []interface{}{10, 20}, args)
	})

	t.Run("zero values omit pagination", func(t *testing.T) {
		sql, args, err := Build(Spec{Primary: employees}, DialectPostgres)
		require.NoError(t, err)
		assert.Equal(t, "SELECT e.* FROM employees e", sql)
		assert.Empty(t, args)
	})

	t.Run("single caps at one row", func(t *testing.T) {
		sql, args, err := Build(Spec{Primary: employees, Single: true}, DialectPostgres)
		require.NoError(t, err)
		assert.Equal(t, "SELECT e.* FROM employees e LIMIT $1", sql)
		assert.Equal(t, []interface{}{1}, args)
	})
}

func TestBuildLatestBy(t *testing.T) {
	employees, _ := testEntities()

	sql, args, err := Build(Spec{
		Primary:  employees,
		LatestBy: "department",
		Filters:  Filters{}.With("organization_id", 7),
	}, DialectPostgres)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT e.* FROM employees e"+
			" JOIN (SELECT lp.department AS group_value, MAX(lp.id) AS row_id"+
			" FROM employees lp"+
			" JOIN (SELECT department AS group_value, MAX(created_at) AS latest_created_at FROM employees GROUP BY department) latest"+
			" ON lp.department = latest.group_value AND lp.created_at = latest.latest_created_at"+
			" GROUP BY lp.department) latest_pick ON e.id = latest_pick.row_id"+
			" WHERE e.organization_id = $1",
		sql)
	assert.Equal(t, []interface{}{7}, args)
}

func TestBuildCount(t *testing.T) {
	employees, orgs := testEntities()

	sql, args, err := BuildCount(Spec{
		Primary: employees,
		Join: &Join{
			Entity:       orgs,
			PrimaryField: "organization_id",
			JoinedField:  "id",
		},
		Filters: Filters{}.With("organization_id", 7),
		OrderBy: []string{"-created_at"},
		Skip:    20,
		Limit:   10,
	}, DialectPostgres)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT COUNT(*) FROM employees e JOIN organizations o ON e.organization_id = o.id"+
			" WHERE e.organization_id = $1",
		sql)
	assert.Equal(t, []interface{}{7}, args)
}

func TestBuildFailsFast(t *testing.T) {
	employees, _ := testEntities()

	_, _, err := Build(Spec{
		Primary: employees,
		Filters: Filters{}.With("badge_color", "red"),
	}, DialectPostgres)
	assert.ErrorIs(t, err, ErrUnknownField)

	_, _, err = Build(Spec{
		Primary: employees,
		OrderBy: []string{"-badge_color"},
	}, DialectPostgres)
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestBuildSQLiteDialect(t *testing.T) {
	employees, _ := testEntities()

	t.Run("ILikeLowersBothSides", func(t *testing.T) {
		sql, args, err := Build(Spec{
			Primary: employees,
			Filters: Filters{}.With("name__ilike", "%jane%"),
		}, DialectSQLite)
		require.NoError(t, err)
		assert.Equal(t,
			"SELECT e.* FROM employees e WHERE LOWER(e.name) LIKE LOWER($1)",
			sql)
		assert.Equal(t, []interface{}{"%jane%"}, args)
	})

	t.Run("InExpandsPlaceholders", func(t *testing.T) {
		sql, args, err := Build(Spec{
			Primary: employees,
			Filters: Filters{}.With("department__in", []string{"Sales", "Legal"}),
		}, DialectSQLite)
		require.NoError(t, err)
		assert.Equal(t,
			"SELECT e.* FROM employees e WHERE e.department IN ($1, $2)",
			sql)
		assert.Equal(t, []interface{}{"Sales", "Legal"}, args)
	})

	t.Run("InExpansionKeepsLaterIndexes", func(t *testing.T) {
		sql, args, err := Build(Spec{
			Primary: employees,
			Filters: Filters{}.
				With("department__in", []string{"Sales", "Legal"}).
				With("organization_id", 7),
			Limit: 10,
		}, DialectSQLite)
		require.NoError(t, err)
		assert.Equal(t,
			"SELECT e.* FROM employees e WHERE e.department IN ($1, $2) AND e.organization_id = $3 LIMIT $4",
			sql)
		assert.Equal(t, []interface{}{"Sales", "Legal", 7, 10}, args)
	})

	t.Run("EmptyInMatchesNothing", func(t *testing.T) {
		sql, _, err := Build(Spec{
			Primary: employees,
			Filters: Filters{}.With("department__in", []string{}),
		}, DialectSQLite)
		require.NoError(t, err)
		assert.Equal(t, "SELECT e.* FROM employees e WHERE 1=0", sql)
	})
}

func TestDialectForDriver(t *testing.T) {
	assert.Equal(t, DialectSQLite, DialectForDriver("sqlite3"))
	assert.Equal(t, DialectPostgres, DialectForDriver("postgres"))
	assert.Equal(t, DialectPostgres, DialectForDriver("anything-else"))
}
