// Package directory holds the domain entities of the employee directory:
// organizations, employees and per-organization column configuration, plus
// the static field registry the query layer resolves against.
package directory

import (
	"fmt"
	"time"
)

// EmployeeStatus is the employment lifecycle state, stored by symbolic name.
type EmployeeStatus string

const (
	StatusActive     EmployeeStatus = "ACTIVE"
	StatusNotStarted EmployeeStatus = "NOT_STARTED"
	StatusTerminated EmployeeStatus = "TERMINATED"
)

// Valid reports whether s is one of the defined statuses.
func (s EmployeeStatus) Valid() bool {
	switch s {
	case StatusActive, StatusNotStarted, StatusTerminated:
		return true
	}
	return false
}

// ParseStatus validates and converts a raw status string.
func ParseStatus(raw string) (EmployeeStatus, error) {
	s := EmployeeStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("invalid status %q: must be one of ACTIVE, NOT_STARTED, TERMINATED", raw)
	}
	return s, nil
}

// Organization is a tenant of the directory.
type Organization struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Employee is a single directory record. Phone, HireDate and Salary are
// nullable in storage and therefore pointers here.
type Employee struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	Phone          *string        `json:"phone,omitempty"`
	Department     string         `json:"department"`
	Position       string         `json:"position"`
	Location       string         `json:"location"`
	HireDate       *time.Time     `json:"hire_date,omitempty"`
	Salary         *float64       `json:"salary,omitempty"`
	Status         EmployeeStatus `json:"status"`
	OrganizationID int64          `json:"organization_id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// ColumnConfig is one row of a tenant's column visibility configuration.
type ColumnConfig struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	ColumnName     string    `json:"column_name"`
	DisplayOrder   int       `json:"display_order"`
	IsVisible      bool      `json:"is_visible"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
