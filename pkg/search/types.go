package search

import (
	"errors"
	"fmt"

	"github.com/rosterhq/rosterd/pkg/directory"
	"github.com/rosterhq/rosterd/pkg/visibility"
)

// ErrValidation marks a request that failed validation. The wrapped message
// names the violated constraint and is safe to return to the client.
var ErrValidation = errors.New("invalid search request")

const (
	// DefaultLimit is the page size when the client does not send one.
	DefaultLimit = 10
	// MaxLimit caps the page size.
	MaxLimit = 100
)

// Request is one employee search. ClientIP and UserAgent feed the audit
// trail and are filled in by the HTTP layer.
type Request struct {
	OrganizationID int64
	Name           string
	Department     string
	Position       string
	Location       string
	Status         string
	Offset         int
	Limit          int

	ClientIP  string
	UserAgent string
}

// Validate checks the request constraints and applies the default page size.
// Validation happens before any query is issued.
func (r *Request) Validate() error {
	if r.OrganizationID <= 0 {
		return fmt.Errorf("%w: organization_id is required", ErrValidation)
	}
	if r.Status != "" {
		if _, err := directory.ParseStatus(r.Status); err != nil {
			return fmt.Errorf("%w: %s", ErrValidation, err.Error())
		}
	}
	if r.Offset < 0 {
		return fmt.Errorf("%w: offset must be greater than or equal to 0", ErrValidation)
	}
	if r.Limit == 0 {
		r.Limit = DefaultLimit
	}
	if r.Limit < 1 || r.Limit > MaxLimit {
		return fmt.Errorf("%w: limit must be between 1 and %d", ErrValidation, MaxLimit)
	}
	return nil
}

// appliedFilters returns the non-empty optional filters for the audit trail.
func (r *Request) appliedFilters() map[string]interface{} {
	filters := make(map[string]interface{})
	if r.Name != "" {
		filters["name"] = r.Name
	}
	if r.Department != "" {
		filters["department"] = r.Department
	}
	if r.Position != "" {
		filters["position"] = r.Position
	}
	if r.Location != "" {
		filters["location"] = r.Location
	}
	if r.Status != "" {
		filters["status"] = r.Status
	}
	return filters
}

// Result is a completed search: the projected page plus pagination totals.
type Result struct {
	Records []visibility.Record
	Total   int
	Offset  int
	Limit   int
}

// Pagination is the envelope pagination block.
type Pagination struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Outcome carries an asynchronous search completion.
type Outcome struct {
	Result *Result
	Err    error
}
