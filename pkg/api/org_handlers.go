package api

import (
	"errors"
	"net/http"

	"github.com/rosterhq/rosterd/pkg/httputil"
	"github.com/rosterhq/rosterd/pkg/orgs"
)

// createOrganization handles POST /api/orgs.
func (s *Server) createOrganization(w http.ResponseWriter, r *http.Request) {
	var req orgs.CreateOrgRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	org, err := s.deps.Orgs.CreateOrganization(r.Context(), &req)
	if err != nil {
		s.writeOrgError(w, err)
		return
	}

	httputil.WriteCreated(w, "Organization created successfully", org)
}

// getOrganization handles GET /api/orgs/{id}.
func (s *Server) getOrganization(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	org, err := s.deps.Orgs.GetOrganization(r.Context(), id)
	if err != nil {
		s.writeOrgError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Organization retrieved successfully", org)
}

// listOrganizations handles GET /api/orgs.
func (s *Server) listOrganizations(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Orgs.ListOrganizations(r.Context())
	if err != nil {
		s.writeOrgError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Organizations retrieved successfully", list)
}

// getColumnConfigs handles GET /api/orgs/{id}/columns.
func (s *Server) getColumnConfigs(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	configs, err := s.deps.Orgs.GetColumnConfigs(r.Context(), id)
	if err != nil {
		s.writeOrgError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Column configuration retrieved successfully", configs)
}

// replaceColumnConfigs handles PUT /api/orgs/{id}/columns. The body is the
// complete new configuration; existing rows are replaced, not merged.
func (s *Server) replaceColumnConfigs(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var settings []orgs.ColumnSetting
	if !httputil.ParseJSONOrError(w, r, &settings) {
		return
	}

	if err := s.deps.Orgs.ReplaceColumnConfigs(r.Context(), id, settings); err != nil {
		s.writeOrgError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Column configuration updated successfully", nil)
}

// createEmployee handles POST /api/orgs/{id}/employees.
func (s *Server) createEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var req orgs.CreateEmployeeRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	emp, err := s.deps.Orgs.CreateEmployee(r.Context(), id, &req)
	if err != nil {
		s.writeOrgError(w, err)
		return
	}

	httputil.WriteCreated(w, "Employee created successfully", emp)
}

func (s *Server) writeOrgError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orgs.ErrValidation):
		httputil.WriteValidationError(w, validationMessage(err))
	case errors.Is(err, orgs.ErrNotFound):
		httputil.WriteNotFound(w, err.Error())
	default:
		s.deps.Logger.WithError(err).Error("provisioning request failed")
		httputil.WriteError(w, http.StatusInternalServerError,
			"Internal server error during database operation")
	}
}
