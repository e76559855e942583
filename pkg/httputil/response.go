package httputil

import (
	"encoding/json"
	"net/http"
)

// Response is the envelope every API response uses.
type Response struct {
	Status     int         `json:"status"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Pagination interface{} `json:"pagination,omitempty"`
}

// WriteEnvelope writes a full envelope with the given HTTP status.
func WriteEnvelope(w http.ResponseWriter, status int, message string, data, pagination interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(Response{
		Status:     status,
		Message:    message,
		Data:       data,
		Pagination: pagination,
	})
}

// WriteSuccess writes a 200 envelope.
func WriteSuccess(w http.ResponseWriter, message string, data interface{}) error {
	return WriteEnvelope(w, http.StatusOK, message, data, nil)
}

// WritePage writes a 200 envelope with a pagination block.
func WritePage(w http.ResponseWriter, message string, data, pagination interface{}) error {
	return WriteEnvelope(w, http.StatusOK, message, data, pagination)
}

// WriteCreated writes a 201 envelope.
func WriteCreated(w http.ResponseWriter, message string, data interface{}) error {
	return WriteEnvelope(w, http.StatusCreated, message, data, nil)
}

// WriteError writes an error envelope with the given status and message.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteEnvelope(w, status, message, nil, nil)
}

// WriteValidationError writes a 400 envelope naming the violated constraint.
func WriteValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

// WriteNotFound writes a 404 envelope.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message)
}

// WriteInternalError writes a 500 envelope with a short generic message.
// The underlying error is for the caller to log, never for the client.
func WriteInternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, "Internal server error")
}
