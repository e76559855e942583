// Package visibility applies per-organization column configuration to
// employee records: it loads the tenant's visible columns and projects each
// record down to those columns, in display order, with canonicalized values.
package visibility

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rosterhq/rosterd/pkg/directory"
)

// ErrTenantConfigMissing means the organization has no visible column
// configuration. It is distinct from an empty search result and maps to a
// client error, not a server one.
var ErrTenantConfigMissing = errors.New("no column configuration found for organization")

// DBSource resolves the read handle per query so the store follows replica
// rotation.
type DBSource interface {
	Replica() *sql.DB
}

// Store loads column configuration rows.
type Store struct {
	src DBSource
}

func NewStore(src DBSource) *Store {
	return &Store{src: src}
}

// VisibleColumns returns the organization's visible column names ordered by
// display_order ascending, ties broken by column_name so the order is total.
func (s *Store) VisibleColumns(ctx context.Context, orgID int64) ([]string, error) {
	rows, err := s.src.Replica().QueryContext(ctx,
		`SELECT column_name FROM organization_column_configs
		 WHERE organization_id = $1 AND is_visible = TRUE
		 ORDER BY display_order ASC, column_name ASC`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query column configs: %w", err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column config: %w", err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read column configs: %w", err)
	}

	if len(columns) == 0 {
		return nil, ErrTenantConfigMissing
	}
	return columns, nil
}

// Projector shapes employee records into per-tenant ordered records.
type Projector struct {
	columns []string
}

func NewProjector(columns []string) *Projector {
	return &Projector{columns: columns}
}

// Project returns the record's visible fields in display order. Column names
// that are not registry fields are skipped rather than failing the search.
func (p *Projector) Project(emp *directory.Employee) Record {
	record := make(Record, 0, len(p.columns))
	for _, column := range p.columns {
		value, kind, ok := emp.Field(column)
		if !ok {
			continue
		}
		record = append(record, Field{Name: column, Value: canonicalize(value, kind)})
	}
	return record
}

// ProjectAll projects a page of employees.
func (p *Projector) ProjectAll(employees []*directory.Employee) []Record {
	records := make([]Record, 0, len(employees))
	for _, emp := range employees {
		records = append(records, p.Project(emp))
	}
	return records
}

// canonicalize converts field values to their wire representation: dates as
// ISO-8601 calendar dates, timestamps as RFC 3339 in UTC, enumerations as
// their symbolic name. Nil stays nil and marshals as JSON null.
func canonicalize(value interface{}, kind directory.FieldKind) interface{} {
	if value == nil {
		return nil
	}
	switch kind {
	case directory.KindDate:
		if t, ok := value.(time.Time); ok {
			return t.Format("2006-01-02")
		}
	case directory.KindTime:
		if t, ok := value.(time.Time); ok {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return value
}
