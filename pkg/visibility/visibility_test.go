package visibility

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterhq/rosterd/pkg/directory"
	"github.com/rosterhq/rosterd/pkg/storage"
)

func TestVisibleColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(storage.Fixed(db, storage.DriverPostgres))

	t.Run("ordered by display order then name", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"column_name"}).
			AddRow("name").
			AddRow("department").
			AddRow("email")
		mock.ExpectQuery("SELECT column_name FROM organization_column_configs").
			WithArgs(int64(7)).
			WillReturnRows(rows)

		columns, err := store.VisibleColumns(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "department", "email"}, columns)
	})

	t.Run("no rows means missing config", func(t *testing.T) {
		mock.ExpectQuery("SELECT column_name FROM organization_column_configs").
			WithArgs(int64(9)).
			WillReturnRows(sqlmock.NewRows([]string{"column_name"}))

		_, err := store.VisibleColumns(context.Background(), 9)
		assert.ErrorIs(t, err, ErrTenantConfigMissing)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProject(t *testing.T) {
	hired := time.Date(2022, 3, 14, 0, 0, 0, 0, time.UTC)
	created := time.Date(2023, 1, 2, 15, 4, 5, 0, time.UTC)
	salary := 85000.0
	emp := &directory.Employee{
		ID:         42,
		Name:       "Ada Lovelace",
		Email:      "ada@acme.test",
		Department: "Engineering",
		HireDate:   &hired,
		Salary:     &salary,
		Status:     directory.StatusActive,
		CreatedAt:  created,
	}

	t.Run("preserves display order and canonicalizes", func(t *testing.T) {
		projector := NewProjector([]string{"department", "name", "hire_date", "status", "created_at"})
		record := projector.Project(emp)

		data, err := json.Marshal(record)
		require.NoError(t, err)
		assert.Equal(t,
			`{"department":"Engineering","name":"Ada Lovelace","hire_date":"2022-03-14",`+
				`"status":"ACTIVE","created_at":"2023-01-02T15:04:05Z"}`,
			string(data))
	})

	t.Run("never emits non-visible fields", func(t *testing.T) {
		projector := NewProjector([]string{"name"})
		record := projector.Project(emp)

		_, ok := record.Get("salary")
		assert.False(t, ok)
		_, ok = record.Get("email")
		assert.False(t, ok)
		require.Len(t, record, 1)
	})

	t.Run("unknown configured column is skipped", func(t *testing.T) {
		projector := NewProjector([]string{"name", "badge_color"})
		record := projector.Project(emp)
		require.Len(t, record, 1)
		assert.Equal(t, "name", record[0].Name)
	})

	t.Run("null value marshals as null", func(t *testing.T) {
		projector := NewProjector([]string{"name", "phone"})
		record := projector.Project(emp)

		data, err := json.Marshal(record)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Ada Lovelace","phone":null}`, string(data))
	})
}
