// Package orgs implements the tenant provisioning surface: organization
// CRUD, employee creation, and per-organization column visibility
// configuration. The search path only reads this data; writes arrive
// through the provisioning API and the roster-seed tool.
package orgs
