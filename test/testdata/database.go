package testdata

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"go.uber.org/zap"
)

const (
	postgresImage    = "postgres"
	postgresTag      = "16-alpine"
	postgresUser     = "postgres"
	postgresPassword = "password"
	postgresDatabase = "questionnaire"
)

// MigrationSource returns the file URL of the repository's migrations.
func MigrationSource() string {
	_, file, _, _ := runtime.Caller(0)
	root := filepath.Join(filepath.Dir(file), "..", "..")
	return "file://" + filepath.Join(root, "internal", "database", "migrations")
}

// SetupTestDatabase starts a migrated Postgres container for t and returns a pool connected to
// it. The test is skipped in -short mode or when Docker cannot be reached.
func SetupTestDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker is not available: %v", err)
	}
	pool.MaxWait = 60 * time.Second

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: postgresImage,
		Tag:        postgresTag,
		Env: []string{
			"POSTGRES_USER=" + postgresUser,
			"POSTGRES_PASSWORD=" + postgresPassword,
			"POSTGRES_DB=" + postgresDatabase,
		},
	})
	if err != nil {
		t.Skipf("could not start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("failed to purge postgres container: %v", err)
		}
	})
	_ = resource.Expire(180)

	databaseURL := fmt.Sprintf("postgres://%s:%s@localhost:%s/%s?sslmode=disable",
		postgresUser, postgresPassword, resource.GetPort("5432/tcp"), postgresDatabase)

	var db *pgxpool.Pool
	err = pool.Retry(func() error {
		var err error
		db, err = pgxpool.New(context.Background(), databaseURL)
		if err != nil {
			return err
		}
		if err := db.Ping(context.Background()); err != nil {
			db.Close()
			return err
		}
		return nil
	})
	if err != nil {
		t.Fatalf("could not connect to postgres: %v", err)
	}
	t.Cleanup(db.Close)

	err = databaseutil.MigrationUp(MigrationSource(), databaseURL, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}
