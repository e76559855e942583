// Package search orchestrates the employee search pipeline: request
// validation, filter compilation, count and page queries, per-tenant column
// projection, and the audit trail write.
package search
