package search

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rosterhq/rosterd/pkg/async"
	"github.com/rosterhq/rosterd/pkg/audit"
	"github.com/rosterhq/rosterd/pkg/directory"
	"github.com/rosterhq/rosterd/pkg/query"
	"github.com/rosterhq/rosterd/pkg/visibility"
)

var searchTracer = otel.Tracer("rosterd/search/service")

const asyncSearchTimeout = 30 * time.Second

// DBSource resolves the read handle per query. The connection manager
// satisfies it directly, so replica rotation and eviction take effect
// between requests instead of pinning one handle for the process lifetime.
type DBSource interface {
	Replica() *sql.DB
	Driver() string
}

// Service runs employee searches end to end.
type Service struct {
	src     DBSource
	dialect query.Dialect
	columns *visibility.Store
	auditor audit.Logger
	logger  *slog.Logger
}

// NewService creates a search service. auditor may be a NopLogger when
// auditing is disabled.
func NewService(src DBSource, columns *visibility.Store, auditor audit.Logger, logger *slog.Logger) *Service {
	return &Service{
		src:     src,
		dialect: query.DialectForDriver(src.Driver()),
		columns: columns,
		auditor: auditor,
		logger:  logger,
	}
}

// Search validates the request, counts and fetches the matching page,
// projects it through the organization's column configuration and writes the
// audit row. The audit write happens after the result is computed and before
// the response; its failure is logged, never surfaced.
func (s *Service) Search(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()

	ctx, span := searchTracer.Start(ctx, "Search",
		trace.WithAttributes(
			attribute.Int64("organization_id", req.OrganizationID),
			attribute.Int("limit", req.Limit),
			attribute.Int("offset", req.Offset),
		),
	)
	defer span.End()

	if err := req.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return nil, err
	}

	spec := s.buildSpec(req)

	total, err := s.count(ctx, spec)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("total", total))

	employees, err := s.fetchPage(ctx, spec, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "page fetch failed")
		return nil, err
	}

	visible, err := s.columns.VisibleColumns(ctx, req.OrganizationID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "column config lookup failed")
		return nil, err
	}

	result := &Result{
		Records: visibility.NewProjector(visible).ProjectAll(employees),
		Total:   total,
		Offset:  req.Offset,
		Limit:   req.Limit,
	}

	s.writeAudit(ctx, req, total, time.Since(started))

	span.SetStatus(codes.Ok, "search completed")
	return result, nil
}

// SearchAsync runs the same pipeline off the request goroutine and delivers
// the outcome on the returned channel.
func (s *Service) SearchAsync(ctx context.Context, req Request) <-chan Outcome {
	out := make(chan Outcome, 1)
	async.SafeGo(ctx, asyncSearchTimeout, "employee search", func(ctx context.Context) error {
		result, err := s.Search(ctx, req)
		out <- Outcome{Result: result, Err: err}
		close(out)
		return nil
	})
	return out
}

// buildSpec translates the request into the query layer's terms. name is a
// case-insensitive substring match, everything else exact equality. Ordering
// by id keeps pages stable between the count and page queries.
func (s *Service) buildSpec(req Request) query.Spec {
	filters := query.Filters{}.With("organization_id", req.OrganizationID)
	if req.Name != "" {
		filters = filters.With("name__ilike", "%"+req.Name+"%")
	}
	if req.Department != "" {
		filters = filters.With("department", req.Department)
	}
	if req.Position != "" {
		filters = filters.With("position", req.Position)
	}
	if req.Location != "" {
		filters = filters.With("location", req.Location)
	}
	if req.Status != "" {
		filters = filters.With("status", req.Status)
	}

	return query.Spec{
		Primary: directory.EmployeeEntity(),
		Filters: filters,
		OrderBy: []string{"id"},
		Skip:    req.Offset,
		Limit:   req.Limit,
	}
}

func (s *Service) count(ctx context.Context, spec query.Spec) (int, error) {
	countSQL, args, err := query.BuildCount(spec, s.dialect)
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int
	if err := s.src.Replica().QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return total, nil
}

func (s *Service) fetchPage(ctx context.Context, spec query.Spec, req Request) ([]*directory.Employee, error) {
	pageSQL, args, err := query.Build(spec, s.dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to build search query: %w", err)
	}

	rows, err := s.src.Replica().QueryContext(ctx, pageSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer rows.Close()

	employees := make([]*directory.Employee, 0, req.Limit)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employees: %w", err)
	}
	return employees, nil
}

// scanEmployee reads one employees row in table column order.
func scanEmployee(rows *sql.Rows) (*directory.Employee, error) {
	var emp directory.Employee
	var phone sql.NullString
	var hireDate sql.NullTime
	var salary sql.NullFloat64
	var status string

	err := rows.Scan(
		&emp.ID, &emp.Name, &emp.Email, &phone,
		&emp.Department, &emp.Position, &emp.Location,
		&hireDate, &salary, &status,
		&emp.OrganizationID, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if phone.Valid {
		emp.Phone = &phone.String
	}
	if hireDate.Valid {
		emp.HireDate = &hireDate.Time
	}
	if salary.Valid {
		emp.Salary = &salary.Float64
	}
	emp.Status = directory.EmployeeStatus(status)

	return &emp, nil
}

func (s *Service) writeAudit(ctx context.Context, req Request, total int, elapsed time.Duration) {
	event := &audit.Event{
		OrganizationID: req.OrganizationID,
		Filters:        audit.EncodeFilters(req.appliedFilters()),
		ResultCount:    total,
		ClientIP:       req.ClientIP,
		UserAgent:      req.UserAgent,
		ResponseTimeMS: float64(elapsed.Microseconds()) / 1000.0,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.auditor.Log(ctx, event); err != nil {
		s.logger.Error("failed to write search audit log",
			"organization_id", req.OrganizationID,
			"error", err,
		)
	}
}
