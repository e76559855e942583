package api

import (
	"database/sql"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrganizationEndpoint(t *testing.T) {
	server, mock := newTestServer(t)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO organizations`).
		WithArgs("Acme", "widgets").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(1, now, now))

	body := strings.NewReader(`{"name":"Acme","description":"widgets"}`)
	rec, envelope := doRequest(t, server.Handler(), http.MethodPost, "/api/orgs", body)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Organization created successfully", envelope["message"])
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["id"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrganizationEndpointRejectsBadBody(t *testing.T) {
	server, _ := newTestServer(t)

	rec, _ := doRequest(t, server.Handler(), http.MethodPost, "/api/orgs", strings.NewReader(`{not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, envelope := doRequest(t, server.Handler(), http.MethodPost, "/api/orgs", strings.NewReader(`{"name":""}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, envelope["message"], "name is required")
}

func TestGetOrganizationEndpointNotFound(t *testing.T) {
	server, mock := newTestServer(t)

	mock.ExpectQuery(`FROM organizations`).
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	rec, envelope := doRequest(t, server.Handler(), http.MethodGet, "/api/orgs/42", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "organization not found", envelope["message"])
}

func TestGetOrganizationEndpointBadID(t *testing.T) {
	server, _ := newTestServer(t)

	rec, _ := doRequest(t, server.Handler(), http.MethodGet, "/api/orgs/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReplaceColumnConfigsEndpoint(t *testing.T) {
	server, mock := newTestServer(t)

	now := time.Now()
	mock.ExpectQuery(`FROM organizations`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at", "updated_at"}).
			AddRow(1, "Acme", nil, now, now))
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM organization_column_configs`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO organization_column_configs`).
		WithArgs(int64(1), "name", 1, true).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	body := strings.NewReader(`[{"column_name":"name","display_order":1,"is_visible":true}]`)
	rec, envelope := doRequest(t, server.Handler(), http.MethodPut, "/api/orgs/1/columns", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Column configuration updated successfully", envelope["message"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceColumnConfigsEndpointUnknownColumn(t *testing.T) {
	server, _ := newTestServer(t)

	body := strings.NewReader(`[{"column_name":"ssn","display_order":1,"is_visible":true}]`)
	rec, envelope := doRequest(t, server.Handler(), http.MethodPut, "/api/orgs/1/columns", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, envelope["message"], `unknown column "ssn"`)
}

func TestCreateEmployeeEndpoint(t *testing.T) {
	server, mock := newTestServer(t)

	now := time.Now()
	mock.ExpectQuery(`FROM organizations`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at", "updated_at"}).
			AddRow(1, "Acme", nil, now, now))
	mock.ExpectQuery(`INSERT INTO employees`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(7, now, now))

	body := strings.NewReader(`{"name":"Ada Lovelace","email":"ada@acme.test","department":"Engineering"}`)
	rec, envelope := doRequest(t, server.Handler(), http.MethodPost, "/api/orgs/1/employees", body)

	assert.Equal(t, http.StatusCreated, rec.Code)
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, float64(7), data["id"])
	assert.Equal(t, "ACTIVE", data["status"])

	require.NoError(t, mock.ExpectationsWereMet())
}
