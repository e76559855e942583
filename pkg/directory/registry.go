package directory

import (
	"github.com/rosterhq/rosterd/pkg/query"
)

// FieldKind classifies a registry field for canonicalization during
// projection.
type FieldKind int

const (
	KindInt FieldKind = iota
	KindString
	KindFloat
	KindDate
	KindTime
	KindEnum
)

// employeeFields maps exposed field names to their storage columns. This is
// the single source of truth for what the query layer may resolve; it is
// built once and never mutated.
var employeeFields = map[string]string{
	"id":              "id",
	"name":            "name",
	"email":           "email",
	"phone":           "phone",
	"department":      "department",
	"position":        "position",
	"location":        "location",
	"hire_date":       "hire_date",
	"salary":          "salary",
	"status":          "status",
	"organization_id": "organization_id",
	"created_at":      "created_at",
	"updated_at":      "updated_at",
}

var employeeKinds = map[string]FieldKind{
	"id":              KindInt,
	"name":            KindString,
	"email":           KindString,
	"phone":           KindString,
	"department":      KindString,
	"position":        KindString,
	"location":        KindString,
	"hire_date":       KindDate,
	"salary":          KindFloat,
	"status":          KindEnum,
	"organization_id": KindInt,
	"created_at":      KindTime,
	"updated_at":      KindTime,
}

var organizationFields = map[string]string{
	"id":          "id",
	"name":        "name",
	"description": "description",
	"created_at":  "created_at",
	"updated_at":  "updated_at",
}

// EmployeeEntity returns the query-layer descriptor for the employees table.
func EmployeeEntity() *query.Entity {
	return query.NewEntity("Employee", "employees", "e", employeeFields)
}

// OrganizationEntity returns the query-layer descriptor for the
// organizations table.
func OrganizationEntity() *query.Entity {
	return query.NewEntity("Organization", "organizations", "o", organizationFields)
}

// FieldKindOf reports the kind of an employee field, false if unknown.
func FieldKindOf(name string) (FieldKind, bool) {
	kind, ok := employeeKinds[name]
	return kind, ok
}

// Field returns the value and kind of the named employee field. ok is false
// when the name is not a registry field. Nullable fields with no value
// return a nil value with ok true.
func (e *Employee) Field(name string) (interface{}, FieldKind, bool) {
	kind, ok := employeeKinds[name]
	if !ok {
		return nil, 0, false
	}

	switch name {
	case "id":
		return e.ID, kind, true
	case "name":
		return e.Name, kind, true
	case "email":
		return e.Email, kind, true
	case "phone":
		if e.Phone == nil {
			return nil, kind, true
		}
		return *e.Phone, kind, true
	case "department":
		return e.Department, kind, true
	case "position":
		return e.Position, kind, true
	case "location":
		return e.Location, kind, true
	case "hire_date":
		if e.HireDate == nil {
			return nil, kind, true
		}
		return *e.HireDate, kind, true
	case "salary":
		if e.Salary == nil {
			return nil, kind, true
		}
		return *e.Salary, kind, true
	case "status":
		return string(e.Status), kind, true
	case "organization_id":
		return e.OrganizationID, kind, true
	case "created_at":
		return e.CreatedAt, kind, true
	case "updated_at":
		return e.UpdatedAt, kind, true
	}
	return nil, 0, false
}
