package orgs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rosterhq/rosterd/pkg/directory"
)

// ErrNotFound is returned when the requested organization does not exist.
var ErrNotFound = errors.New("organization not found")

// ErrValidation marks a provisioning request that failed validation.
var ErrValidation = errors.New("invalid provisioning request")

// CreateOrgRequest is the body of POST /api/orgs.
type CreateOrgRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate checks the request fields.
func (r *CreateOrgRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	return nil
}

// ColumnSetting is one entry of a PUT /api/orgs/{id}/columns body. The PUT
// replaces the organization's whole configuration.
type ColumnSetting struct {
	ColumnName   string `json:"column_name"`
	DisplayOrder int    `json:"display_order"`
	IsVisible    bool   `json:"is_visible"`
}

// ValidateColumnSettings rejects empty configurations, duplicates, and
// column names that are not employee fields.
func ValidateColumnSettings(settings []ColumnSetting) error {
	if len(settings) == 0 {
		return fmt.Errorf("%w: at least one column setting is required", ErrValidation)
	}

	seen := make(map[string]bool, len(settings))
	for _, s := range settings {
		name := strings.TrimSpace(s.ColumnName)
		if name == "" {
			return fmt.Errorf("%w: column_name is required", ErrValidation)
		}
		if _, ok := directory.FieldKindOf(name); !ok {
			return fmt.Errorf("%w: unknown column %q", ErrValidation, name)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate column %q", ErrValidation, name)
		}
		seen[name] = true
	}

	return nil
}

// CreateEmployeeRequest is the body of POST /api/orgs/{id}/employees.
type CreateEmployeeRequest struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Phone      *string  `json:"phone,omitempty"`
	Department string   `json:"department"`
	Position   string   `json:"position"`
	Location   string   `json:"location"`
	HireDate   *string  `json:"hire_date,omitempty"` // YYYY-MM-DD
	Salary     *float64 `json:"salary,omitempty"`
	Status     string   `json:"status,omitempty"`
}

// Validate checks the request fields and normalizes the status.
func (r *CreateEmployeeRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(r.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if r.Status != "" {
		if _, err := directory.ParseStatus(r.Status); err != nil {
			return fmt.Errorf("%w: %s", ErrValidation, err.Error())
		}
	}
	return nil
}
