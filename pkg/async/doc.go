// Package async provides panic-safe concurrency primitives for background
// work: SafeGo for fire-and-forget tasks such as asynchronous searches and
// audit writes, WorkerPool for bounded concurrent execution, and Batch for
// processing a slice of items in parallel, used by the data seeder.
//
// Every primitive applies a per-task timeout, recovers panics with a stack
// trace, and reports errors without crashing the caller.
package async
