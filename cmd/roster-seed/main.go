// Command roster-seed populates a directory database with sample
// organizations, employees and column configurations for local
// development and load testing.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rosterhq/rosterd/pkg/async"
	"github.com/rosterhq/rosterd/pkg/directory"
	"github.com/rosterhq/rosterd/pkg/orgs"
	"github.com/rosterhq/rosterd/pkg/storage"
)

var (
	firstNames  = []string{"Alice", "Bob", "Carmen", "Deepak", "Elena", "Farid", "Grace", "Hiro", "Ines", "Jonas", "Katya", "Liam", "Mei", "Noah", "Olga", "Priya", "Quinn", "Rosa", "Sven", "Tomas"}
	lastNames   = []string{"Anderson", "Baptiste", "Chen", "Dubois", "Eriksen", "Fernandez", "Gupta", "Hansen", "Ivanova", "Johnson", "Kim", "Larsen", "Morales", "Nakamura", "Okafor", "Petrov", "Quintero", "Rossi", "Silva", "Tanaka"}
	departments = []string{"Engineering", "Sales", "Marketing", "Finance", "Human Resources", "Operations", "Support", "Legal"}
	positions   = []string{"Analyst", "Engineer", "Senior Engineer", "Manager", "Director", "Coordinator", "Specialist", "Lead"}
	locations   = []string{"New York", "London", "Berlin", "Tokyo", "Sydney", "Toronto", "Remote", "Singapore"}
)

func main() {
	databaseURL := flag.String("database", "sqlite://roster.db", "Database URL (postgres:// or sqlite://)")
	orgCount := flag.Int("orgs", 3, "Number of organizations to create")
	employeesPerOrg := flag.Int("employees", 250, "Number of employees per organization")
	workers := flag.Int("workers", 4, "Concurrent insert workers")
	seed := flag.Int64("seed", 42, "Random seed for reproducible data")
	flag.Parse()

	log := logrus.New()
	log.SetLevel(logrus.InfoLevel)

	db, err := storage.Open(*databaseURL, storage.DefaultPoolConfig())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	driver, _, err := storage.DriverFor(*databaseURL)
	if err != nil {
		log.Fatalf("Unsupported database URL: %v", err)
	}

	ctx := context.Background()
	if err := storage.EnsureSchema(ctx, db, driver); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	rng := rand.New(rand.NewSource(*seed))
	svc := orgs.NewService(db)

	start := time.Now()
	total := 0
	for i := 0; i < *orgCount; i++ {
		org, err := svc.CreateOrganization(ctx, &orgs.CreateOrgRequest{
			Name:        fmt.Sprintf("Acme Division %d", i+1),
			Description: "Seeded organization for local development",
		})
		if err != nil {
			log.Fatalf("Failed to create organization: %v", err)
		}

		if err := svc.ReplaceColumnConfigs(ctx, org.ID, defaultColumns(i)); err != nil {
			log.Fatalf("Failed to configure columns for org %d: %v", org.ID, err)
		}

		reqs := make([]*orgs.CreateEmployeeRequest, 0, *employeesPerOrg)
		for j := 0; j < *employeesPerOrg; j++ {
			reqs = append(reqs, randomEmployee(rng, org.ID, j))
		}

		errs := async.Batch(ctx, reqs, *workers, "seed employees", 30*time.Second,
			func(ctx context.Context, req *orgs.CreateEmployeeRequest) error {
				_, err := svc.CreateEmployee(ctx, org.ID, req)
				return err
			})
		if len(errs) > 0 {
			log.Fatalf("Failed to insert %d employees for org %d: first error: %v", len(errs), org.ID, errs[0])
		}
		total += *employeesPerOrg
		log.Infof("Seeded organization %q (id=%d) with %d employees", org.Name, org.ID, *employeesPerOrg)
	}

	log.Infof("Done: %d organizations, %d employees in %s", *orgCount, total, time.Since(start).Round(time.Millisecond))
}

// defaultColumns varies visibility per organization so salary stays hidden
// for every other tenant, which exercises the projection path.
func defaultColumns(orgIndex int) []orgs.ColumnSetting {
	settings := []orgs.ColumnSetting{
		{ColumnName: "name", DisplayOrder: 1, IsVisible: true},
		{ColumnName: "email", DisplayOrder: 2, IsVisible: true},
		{ColumnName: "department", DisplayOrder: 3, IsVisible: true},
		{ColumnName: "position", DisplayOrder: 4, IsVisible: true},
		{ColumnName: "location", DisplayOrder: 5, IsVisible: true},
		{ColumnName: "status", DisplayOrder: 6, IsVisible: true},
		{ColumnName: "hire_date", DisplayOrder: 7, IsVisible: orgIndex%2 == 0},
		{ColumnName: "salary", DisplayOrder: 8, IsVisible: false},
	}
	return settings
}

func randomEmployee(rng *rand.Rand, orgID int64, n int) *orgs.CreateEmployeeRequest {
	first := firstNames[rng.Intn(len(firstNames))]
	last := lastNames[rng.Intn(len(lastNames))]
	phone := fmt.Sprintf("+1-555-%04d", rng.Intn(10000))
	hire := time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, rng.Intn(365*10)).Format("2006-01-02")
	salary := 45000 + float64(rng.Intn(120))*1000

	status := string(directory.StatusActive)
	switch rng.Intn(10) {
	case 0:
		status = string(directory.StatusTerminated)
	case 1:
		status = string(directory.StatusNotStarted)
	}

	return &orgs.CreateEmployeeRequest{
		Name:       first + " " + last,
		Email:      fmt.Sprintf("%s.%s.%d.%d@example.com", first, last, orgID, n),
		Phone:      &phone,
		Department: departments[rng.Intn(len(departments))],
		Position:   positions[rng.Intn(len(positions))],
		Location:   locations[rng.Intn(len(locations))],
		HireDate:   &hire,
		Salary:     &salary,
		Status:     status,
	}
}
