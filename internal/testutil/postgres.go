// Package testutil holds shared fixtures for integration tests: a throwaway
// PostgreSQL server for the store conformance suite and a line-oriented
// Telnet client for session tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/fate/internal/config"
	"github.com/cory-johannsen/fate/internal/storage/postgres"
)

const (
	pgImage    = "postgres:16-alpine"
	pgUser     = "fate"
	pgPassword = "fate"
	pgDatabase = "fate_test"
)

// PostgresContainer is a running PostgreSQL server owned by one test.
type PostgresContainer struct {
	container testcontainers.Container
	Pool      *postgres.Pool
	Config    config.DatabaseConfig
}

// NewPostgresContainer boots a fresh server and connects a pool whose queries
// are traced to the test log. Container and pool are released by t.Cleanup.
// Skipped under -short since it needs Docker.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests skipped with -short")
	}
	ctx := context.Background()
	start := time.Now()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        pgImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     pgUser,
				"POSTGRES_PASSWORD": pgPassword,
				"POSTGRES_DB":       pgDatabase,
			},
			// the entrypoint restarts the server once after init
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting %s: %v [%s]", pgImage, err, time.Since(start))
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dbCfg, err := containerConfig(ctx, container)
	if err != nil {
		t.Fatalf("resolving postgres address: %v", err)
	}

	pool, err := postgres.NewPool(ctx, dbCfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("connecting to %s:%d: %v [%s]", dbCfg.Host, dbCfg.Port, err, time.Since(start))
	}
	t.Cleanup(pool.Close)
	t.Logf("postgres ready at %s:%d [%s]", dbCfg.Host, dbCfg.Port, time.Since(start))

	return &PostgresContainer{container: container, Pool: pool, Config: dbCfg}
}

// containerConfig builds the database section pointing at the mapped port.
func containerConfig(ctx context.Context, c testcontainers.Container) (config.DatabaseConfig, error) {
	host, err := c.Host(ctx)
	if err != nil {
		return config.DatabaseConfig{}, err
	}
	port, err := c.MappedPort(ctx, "5432")
	if err != nil {
		return config.DatabaseConfig{}, err
	}
	return config.DatabaseConfig{
		Driver:          config.DriverPostgres,
		Host:            host,
		Port:            port.Int(),
		User:            pgUser,
		Password:        pgPassword,
		Name:            pgDatabase,
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}, nil
}

// ApplyMigrations brings the profile, macro, channel and account tables up
// to the latest embedded schema.
func (pc *PostgresContainer) ApplyMigrations(t *testing.T) {
	t.Helper()
	version, err := postgres.Migrate(pc.Config.DSN())
	if err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	t.Logf("schema at version %d", version)
}

// NewPostgresStore returns a Store on a fresh, migrated server.
func NewPostgresStore(t *testing.T) *postgres.Store {
	t.Helper()
	pc := NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return postgres.NewStore(pc.Pool)
}
