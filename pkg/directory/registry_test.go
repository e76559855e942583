package directory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"ACTIVE", "NOT_STARTED", "TERMINATED"} {
		status, err := ParseStatus(raw)
		require.NoError(t, err)
		assert.Equal(t, EmployeeStatus(raw), status)
	}

	_, err := ParseStatus("RETIRED")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be one of")

	_, err = ParseStatus("active")
	assert.Error(t, err, "status comparison is case sensitive")
}

func TestEmployeeField(t *testing.T) {
	hired := time.Date(2022, 3, 14, 0, 0, 0, 0, time.UTC)
	salary := 85000.0
	emp := &Employee{
		ID:             42,
		Name:           "Ada Lovelace",
		Email:          "ada@acme.test",
		Department:     "Engineering",
		HireDate:       &hired,
		Salary:         &salary,
		Status:         StatusActive,
		OrganizationID: 7,
	}

	value, kind, ok := emp.Field("name")
	require.True(t, ok)
	assert.Equal(t, KindString, kind)
	assert.Equal(t, "Ada Lovelace", value)

	value, kind, ok = emp.Field("salary")
	require.True(t, ok)
	assert.Equal(t, KindFloat, kind)
	assert.Equal(t, 85000.0, value)

	value, kind, ok = emp.Field("hire_date")
	require.True(t, ok)
	assert.Equal(t, KindDate, kind)
	assert.Equal(t, hired, value)

	value, kind, ok = emp.Field("status")
	require.True(t, ok)
	assert.Equal(t, KindEnum, kind)
	assert.Equal(t, "ACTIVE", value)

	// Nullable field with no value resolves to nil but still exists.
	value, _, ok = emp.Field("phone")
	require.True(t, ok)
	assert.Nil(t, value)

	_, _, ok = emp.Field("badge_color")
	assert.False(t, ok)
}

func TestEmployeeEntityColumns(t *testing.T) {
	entity := EmployeeEntity()

	for _, name := range []string{"name", "department", "position", "location", "status", "organization_id"} {
		handle, err := entity.Field(name)
		require.NoError(t, err)
		assert.Equal(t, "e."+name, handle.Qualified())
	}

	// Every registered query field has a kind, so projection can always
	// canonicalize what the resolver admits.
	for _, name := range entity.FieldNames() {
		_, ok := FieldKindOf(name)
		assert.True(t, ok, "field %s has no kind", name)
	}
}
