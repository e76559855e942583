package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEntities() (*Entity, *Entity) {
	employees := NewEntity("Employee", "employees", "e", map[string]string{
		"id":              "id",
		"organization_id": "organization_id",
		"name":            "name",
		"department":      "department",
		"salary":          "salary",
		"status":          "status",
		"created_at":      "created_at",
	})
	orgs := NewEntity("Organization", "organizations", "o", map[string]string{
		"id":   "id",
		"name": "name",
	})
	return employees, orgs
}

func TestEntityField(t *testing.T) {
	employees, _ := testEntities()

	handle, err := employees.Field("department")
	require.NoError(t, err)
	assert.Equal(t, "e.department", handle.Qualified())

	_, err = employees.Field("nope")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestResolve(t *testing.T) {
	employees, orgs := testEntities()

	tests := []struct {
		name      string
		field     string
		joined    *Entity
		qualified string
		wantErr   error
	}{
		{name: "bare field on primary", field: "salary", qualified: "e.salary"},
		{name: "qualified primary field", field: "Employee.name", qualified: "e.name"},
		{name: "qualified joined field", field: "Organization.name", joined: orgs, qualified: "o.name"},
		{name: "unknown entity", field: "Payroll.name", joined: orgs, wantErr: ErrUnknownEntity},
		{name: "joined entity without join", field: "Organization.name", wantErr: ErrUnknownEntity},
		{name: "unknown field", field: "badge_color", wantErr: ErrUnknownField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handle, err := Resolve(tt.field, employees, tt.joined)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.qualified, handle.Qualified())
		})
	}
}

func TestCompileFilters(t *testing.T) {
	employees, orgs := testEntities()

	t.Run("operator suffixes", func(t *testing.T) {
		filters := Filters{}.
			With("organization_id", 7).
			With("salary__gte", 50000).
			With("salary__lte", 90000).
			With("name__ilike", "%ada%").
			With("department__in", []string{"ENG", "OPS"})

		predicates, err := CompileFilters(filters, employees, orgs)
		require.NoError(t, err)
		require.Len(t, predicates, 5)

		assert.Equal(t, OpEq, predicates[0].Op)
		assert.Equal(t, OpGte, predicates[1].Op)
		assert.Equal(t, OpLte, predicates[2].Op)
		assert.Equal(t, OpILike, predicates[3].Op)
		assert.Equal(t, OpIn, predicates[4].Op)
		assert.Equal(t, "e.department", predicates[4].Field.Qualified())
	})

	t.Run("unknown field fails fast", func(t *testing.T) {
		_, err := CompileFilters(Filters{}.With("favourite_color", "red"), employees, nil)
		assert.ErrorIs(t, err, ErrUnknownField)
	})

	t.Run("in requires a sequence", func(t *testing.T) {
		_, err := CompileFilters(Filters{}.With("department__in", "ENG"), employees, nil)
		assert.ErrorIs(t, err, ErrBadFilterValue)
	})

	t.Run("excludes skip unknown keys", func(t *testing.T) {
		predicates := CompileExcludes(Filters{}.
			With("status", "TERMINATED").
			With("not_a_field", 1), employees, nil)
		require.Len(t, predicates, 1)
		assert.Equal(t, OpNe, predicates[0].Op)
		assert.Equal(t, "e.status", predicates[0].Field.Qualified())
	})
}
