package audit

import (
	"encoding/json"
	"time"
)

// Event is one recorded search.
type Event struct {
	ID             int64     `json:"id,omitempty"`
	OrganizationID int64     `json:"organization_id"`
	Filters        string    `json:"search_filters,omitempty"`
	ResultCount    int       `json:"results_count"`
	ClientIP       string    `json:"client_ip,omitempty"`
	UserAgent      string    `json:"user_agent,omitempty"`
	ResponseTimeMS float64   `json:"response_time_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

// EncodeFilters serializes the applied search filters for storage. A nil or
// empty map encodes to the empty string.
func EncodeFilters(filters map[string]interface{}) string {
	if len(filters) == 0 {
		return ""
	}
	data, err := json.Marshal(filters)
	if err != nil {
		return ""
	}
	return string(data)
}

// Filter narrows a search-log query. Nil pointer fields are not applied.
type Filter struct {
	OrganizationID *int64
	Since          *time.Time
	Until          *time.Time
	ClientIP       string
	Limit          int
	Offset         int
}

// Stats summarizes the search-log table over an optional time range.
type Stats struct {
	TotalSearches     int64           `json:"total_searches"`
	EmptySearches     int64           `json:"empty_searches"`
	UniqueIPs         int64           `json:"unique_ips"`
	AvgResponseTimeMS float64         `json:"avg_response_time_ms"`
	SearchesByOrg     map[int64]int64 `json:"searches_by_org"`
}
