package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ConnectionManager manages the primary database connection plus optional
// read replicas. Searches go to a replica when one is available; writes and
// schema bootstrap always use the primary.
type ConnectionManager struct {
	primary  *sql.DB
	driver   string
	replicas []*sql.DB
	current  uint32
	mu       sync.RWMutex
	pool     PoolConfig
	logger   *slog.Logger
}

// NewConnectionManager opens the primary connection and any configured
// replicas. Replicas that cannot be reached are skipped with a warning;
// a failing primary is fatal.
func NewConnectionManager(primaryURL string, replicaURLs []string, pool PoolConfig, logger *slog.Logger) (*ConnectionManager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	primary, err := Open(primaryURL, pool)
	if err != nil {
		return nil, fmt.Errorf("failed to open primary connection: %w", err)
	}
	driver, _, _ := DriverFor(primaryURL)

	cm := &ConnectionManager{
		primary: primary,
		driver:  driver,
		pool:    pool,
		logger:  logger,
	}

	for i, replicaURL := range replicaURLs {
		replica, err := Open(replicaURL, replicaPool(pool))
		if err != nil {
			logger.Warn("skipping unreachable replica", "index", i, "error", err)
			continue
		}
		cm.replicas = append(cm.replicas, replica)
	}

	logger.Info("connection manager initialized", "replicas", len(cm.replicas))
	return cm, nil
}

// replicaPool halves the connection budget; replicas share load with the
// primary.
func replicaPool(pool PoolConfig) PoolConfig {
	pool.MaxConns = pool.MaxConns / 2
	if pool.MaxConns < 2 {
		pool.MaxConns = 2
	}
	return pool
}

// Primary returns the primary database connection (for writes)
func (cm *ConnectionManager) Primary() *sql.DB {
	return cm.primary
}

// Driver returns the driver name of the primary connection.
func (cm *ConnectionManager) Driver() string {
	return cm.driver
}

// Replica returns a read replica using round-robin selection, falling back
// to the primary when none are available.
func (cm *ConnectionManager) Replica() *sql.DB {
	cm.mu.RLock()
	replicaCount := len(cm.replicas)
	cm.mu.RUnlock()

	if replicaCount == 0 {
		return cm.primary
	}

	index := atomic.AddUint32(&cm.current, 1)

	cm.mu.RLock()
	replica := cm.replicas[int(index%uint32(replicaCount))]
	cm.mu.RUnlock()

	return replica
}

// HealthCheck pings the primary and reports when every replica is down.
func (cm *ConnectionManager) HealthCheck(ctx context.Context) error {
	if err := cm.primary.PingContext(ctx); err != nil {
		return fmt.Errorf("primary unhealthy: %w", err)
	}

	cm.mu.RLock()
	replicas := make([]*sql.DB, len(cm.replicas))
	copy(replicas, cm.replicas)
	cm.mu.RUnlock()

	var unhealthy []string
	for i, replica := range replicas {
		if err := replica.PingContext(ctx); err != nil {
			unhealthy = append(unhealthy, fmt.Sprintf("replica-%d", i))
		}
	}

	if len(unhealthy) > 0 && len(unhealthy) == len(replicas) {
		return fmt.Errorf("all replicas unhealthy: %s", strings.Join(unhealthy, ", "))
	}

	return nil
}

// Stats returns connection pool statistics for the primary connection.
func (cm *ConnectionManager) Stats() sql.DBStats {
	return cm.primary.Stats()
}

// RemoveUnhealthyReplicas drops replicas that fail a ping and returns how
// many were removed.
func (cm *ConnectionManager) RemoveUnhealthyReplicas(ctx context.Context) int {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	healthy := make([]*sql.DB, 0, len(cm.replicas))
	removed := 0

	for _, replica := range cm.replicas {
		if err := replica.PingContext(ctx); err != nil {
			replica.Close()
			removed++
		} else {
			healthy = append(healthy, replica)
		}
	}

	cm.replicas = healthy
	return removed
}

// StartHealthCheckRoutine periodically removes unhealthy replicas until the
// context is cancelled.
func (cm *ConnectionManager) StartHealthCheckRoutine(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				checkCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				removed := cm.RemoveUnhealthyReplicas(checkCtx)
				cancel()

				if removed > 0 {
					cm.logger.Warn("removed unhealthy replicas", "count", removed)
				}

			case <-ctx.Done():
				return
			}
		}
	}()
}

// Close closes the primary and all replica connections.
func (cm *ConnectionManager) Close() error {
	var errs []error

	if err := cm.primary.Close(); err != nil {
		errs = append(errs, fmt.Errorf("primary close error: %w", err))
	}

	cm.mu.Lock()
	replicas := cm.replicas
	cm.replicas = nil
	cm.mu.Unlock()

	for i, replica := range replicas {
		if err := replica.Close(); err != nil {
			errs = append(errs, fmt.Errorf("replica-%d close error: %w", i, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("connection close errors: %v", errs)
	}

	return nil
}

// ParseReplicaURLs parses a comma-separated list of replica URLs.
func ParseReplicaURLs(replicaURLs string) []string {
	if replicaURLs == "" {
		return nil
	}

	parts := strings.Split(replicaURLs, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
