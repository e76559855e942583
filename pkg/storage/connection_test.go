package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnectionManagerPrimaryOnly(t *testing.T) {
	cm, err := NewConnectionManager("sqlite://"+t.TempDir()+"/roster.db", nil, DefaultPoolConfig(), nil)
	require.NoError(t, err)
	defer cm.Close()

	assert.Equal(t, DriverSQLite, cm.Driver())
	assert.NotNil(t, cm.Primary())

	// No replicas: reads fall back to the primary.
	assert.Same(t, cm.Primary(), cm.Replica())

	require.NoError(t, cm.HealthCheck(context.Background()))
}

func TestNewConnectionManagerSkipsBadReplicas(t *testing.T) {
	cm, err := NewConnectionManager(
		"sqlite://"+t.TempDir()+"/primary.db",
		[]string{"mysql://not-supported"},
		DefaultPoolConfig(), nil)
	require.NoError(t, err)
	defer cm.Close()

	assert.Same(t, cm.Primary(), cm.Replica())
}

func TestNewConnectionManagerBadPrimary(t *testing.T) {
	_, err := NewConnectionManager("mysql://nope", nil, DefaultPoolConfig(), nil)
	assert.Error(t, err)
}

func TestReplicaRoundRobin(t *testing.T) {
	dir := t.TempDir()
	cm, err := NewConnectionManager(
		"sqlite://"+dir+"/primary.db",
		[]string{"sqlite://" + dir + "/r1.db", "sqlite://" + dir + "/r2.db"},
		DefaultPoolConfig(), nil)
	require.NoError(t, err)
	defer cm.Close()

	first := cm.Replica()
	second := cm.Replica()
	assert.NotSame(t, first, second)
	assert.Same(t, first, cm.Replica())
}
