// Package middleware provides request rate limiting for the API: a
// fixed-window in-memory limiter for single instances and a Redis-backed
// variant that shares the window across instances.
package middleware
