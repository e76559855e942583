package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePage(t *testing.T) {
	w := httptest.NewRecorder()

	err := WritePage(w, "Employees fetched successfully",
		[]map[string]string{{"name": "Ada"}},
		map[string]int{"total": 1, "offset": 0, "limit": 10},
	)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, float64(200), envelope["status"])
	assert.Equal(t, "Employees fetched successfully", envelope["message"])
	assert.NotNil(t, envelope["data"])
	assert.NotNil(t, envelope["pagination"])
}

func TestWriteEmptyDataIsArray(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WritePage(w, "ok", []string{}, map[string]int{"total": 0}))
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestWriteValidationError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteValidationError(w, "organization_id is required")

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, float64(400), envelope["status"])
	assert.Equal(t, "organization_id is required", envelope["message"])
	assert.NotContains(t, envelope, "data")
}

func TestWriteInternalErrorHidesDetail(t *testing.T) {
	w := httptest.NewRecorder()

	WriteInternalError(w)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}
