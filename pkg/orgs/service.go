package orgs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rosterhq/rosterd/pkg/directory"
)

// Service implements tenant provisioning against the directory database.
type Service struct {
	db *sql.DB
}

// NewService creates a provisioning service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// CreateOrganization inserts a new tenant and returns it with its assigned
// ID and timestamps.
func (s *Service) CreateOrganization(ctx context.Context, req *CreateOrgRequest) (*directory.Organization, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	org := &directory.Organization{
		Name:        req.Name,
		Description: req.Description,
	}

	query := `
		INSERT INTO organizations (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRowContext(ctx, query, org.Name, org.Description).
		Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	return org, nil
}

// GetOrganization retrieves an organization by ID.
func (s *Service) GetOrganization(ctx context.Context, id int64) (*directory.Organization, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`
	org := &directory.Organization{}
	var description sql.NullString
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&org.ID, &org.Name, &description, &org.CreatedAt, &org.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	org.Description = description.String

	return org, nil
}

// ListOrganizations lists all tenants, newest first.
func (s *Service) ListOrganizations(ctx context.Context) ([]*directory.Organization, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM organizations
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []*directory.Organization
	for rows.Next() {
		org := &directory.Organization{}
		var description sql.NullString
		if err := rows.Scan(&org.ID, &org.Name, &description, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		org.Description = description.String
		orgs = append(orgs, org)
	}

	return orgs, rows.Err()
}

// GetColumnConfigs returns the organization's column visibility rows in
// display order. A tenant with no rows gets an empty slice, not an error;
// the search path is where a missing configuration is fatal.
func (s *Service) GetColumnConfigs(ctx context.Context, orgID int64) ([]directory.ColumnConfig, error) {
	if _, err := s.GetOrganization(ctx, orgID); err != nil {
		return nil, err
	}

	query := `
		SELECT id, organization_id, column_name, display_order, is_visible, created_at, updated_at
		FROM organization_column_configs
		WHERE organization_id = $1
		ORDER BY display_order ASC, column_name ASC
	`
	rows, err := s.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get column configs: %w", err)
	}
	defer rows.Close()

	configs := make([]directory.ColumnConfig, 0)
	for rows.Next() {
		var cfg directory.ColumnConfig
		if err := rows.Scan(&cfg.ID, &cfg.OrganizationID, &cfg.ColumnName,
			&cfg.DisplayOrder, &cfg.IsVisible, &cfg.CreatedAt, &cfg.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan column config: %w", err)
		}
		configs = append(configs, cfg)
	}

	return configs, rows.Err()
}

// ReplaceColumnConfigs swaps the organization's whole column configuration
// in one transaction.
func (s *Service) ReplaceColumnConfigs(ctx context.Context, orgID int64, settings []ColumnSetting) error {
	if err := ValidateColumnSettings(settings); err != nil {
		return err
	}
	if _, err := s.GetOrganization(ctx, orgID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM organization_column_configs WHERE organization_id = $1`, orgID); err != nil {
		return fmt.Errorf("failed to clear column configs: %w", err)
	}

	insert := `
		INSERT INTO organization_column_configs (organization_id, column_name, display_order, is_visible)
		VALUES ($1, $2, $3, $4)
	`
	for _, setting := range settings {
		if _, err := tx.ExecContext(ctx, insert,
			orgID, setting.ColumnName, setting.DisplayOrder, setting.IsVisible); err != nil {
			return fmt.Errorf("failed to insert column config: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit column configs: %w", err)
	}

	return nil
}

// CreateEmployee inserts a directory record for the organization.
func (s *Service) CreateEmployee(ctx context.Context, orgID int64, req *CreateEmployeeRequest) (*directory.Employee, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.GetOrganization(ctx, orgID); err != nil {
		return nil, err
	}

	status := directory.StatusActive
	if req.Status != "" {
		status, _ = directory.ParseStatus(req.Status)
	}

	var hireDate *time.Time
	if req.HireDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.HireDate)
		if err != nil {
			return nil, fmt.Errorf("%w: hire_date must be formatted as YYYY-MM-DD", ErrValidation)
		}
		hireDate = &parsed
	}

	emp := &directory.Employee{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Department:     req.Department,
		Position:       req.Position,
		Location:       req.Location,
		HireDate:       hireDate,
		Salary:         req.Salary,
		Status:         status,
		OrganizationID: orgID,
	}

	query := `
		INSERT INTO employees (name, email, phone, department, position, location, hire_date, salary, status, organization_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRowContext(ctx, query,
		emp.Name, emp.Email, emp.Phone, emp.Department, emp.Position, emp.Location,
		emp.HireDate, emp.Salary, string(emp.Status), emp.OrganizationID).
		Scan(&emp.ID, &emp.CreatedAt, &emp.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}

	return emp, nil
}
