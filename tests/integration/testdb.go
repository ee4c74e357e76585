// Package integration hosts end to end tests for the FastPay backend.
// Each test talks to a real PostgreSQL instance started through
// testcontainers, with the full migration set applied.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	mpg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const postgresImage = "postgres:16-alpine"

// One container can serve a whole package worth of tests, see NewSharedTestDB.
var (
	sharedContainer    testcontainers.Container
	sharedContainerMu  sync.Mutex
	sharedContainerDSN string
)

// TestDB bundles a migrated database with its container handle.
type TestDB struct {
	DB        *gorm.DB
	SqlDB     *sql.DB
	Container testcontainers.Container
	DSN       string
	t         *testing.T
}

// startPostgres launches a PostgreSQL container and returns it with its DSN.
func startPostgres(t *testing.T, dbName string) (testcontainers.Container, string) {
	t.Helper()

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		postgresImage,
		tcpostgres.WithDatabase(dbName),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("admin123"),
		testcontainers.WithWaitStrategy(
			// The log line appears twice, once during initdb and once
			// when the server actually starts listening.
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start PostgreSQL container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "resolve container connection string")
	return container, dsn
}

// NewTestDB starts a dedicated PostgreSQL container, fully isolated
// from every other test. The container is terminated on cleanup.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	container, dsn := startPostgres(t, "fastpay_test")
	db, sqlDB := connectToDatabase(t, dsn)
	runMigrations(t, sqlDB)

	testDB := &TestDB{
		DB:        db,
		SqlDB:     sqlDB,
		Container: container,
		DSN:       dsn,
		t:         t,
	}
	t.Cleanup(testDB.Close)
	return testDB
}

// NewSharedTestDB hands out connections to one package-wide container.
// Cheaper than NewTestDB for tests that are read-only or truncate
// behind themselves. Callers are expected to run CleanupSharedContainer
// from TestMain.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()

	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer == nil {
		container, dsn := startPostgres(t, "fastpay_shared_test")
		sharedContainer = container
		sharedContainerDSN = dsn

		// Migrate once through a throwaway connection.
		_, sqlDB := connectToDatabase(t, dsn)
		runMigrations(t, sqlDB)
		sqlDB.Close()
	}

	db, sqlDB := connectToDatabase(t, sharedContainerDSN)

	testDB := &TestDB{
		DB:        db,
		SqlDB:     sqlDB,
		Container: sharedContainer,
		DSN:       sharedContainerDSN,
		t:         t,
	}

	// Close only the connection here, the container outlives the test.
	t.Cleanup(func() {
		if testDB.SqlDB != nil {
			testDB.SqlDB.Close()
		}
	})
	return testDB
}

// Close releases the connection and, for dedicated containers,
// terminates the container as well.
func (tdb *TestDB) Close() {
	if tdb.SqlDB != nil {
		tdb.SqlDB.Close()
	}
	if tdb.Container != nil && tdb.Container != sharedContainer {
		if err := tdb.Container.Terminate(context.Background()); err != nil {
			tdb.t.Logf("terminate container: %v", err)
		}
	}
}

// CleanTables truncates every public table except the migration ledger.
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	var tables []string
	err := tdb.DB.Raw(`
		SELECT tablename FROM pg_tables
		WHERE schemaname = 'public'
		AND tablename != 'schema_migrations'
	`).Scan(&tables).Error
	require.NoError(tdb.t, err, "list public tables")

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			tdb.t.Logf("truncate %s: %v", table, err)
		}
	}
}

// WithTransaction runs fn inside a transaction that is always rolled
// back, leaving the database untouched for the next test.
func (tdb *TestDB) WithTransaction(fn func(tx *gorm.DB)) {
	tdb.t.Helper()

	tx := tdb.DB.Begin()
	require.NoError(tdb.t, tx.Error, "begin transaction")
	defer tx.Rollback()

	fn(tx)
}

func connectToDatabase(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	logLevel := logger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	require.NoError(t, err, "open database connection")

	sqlDB, err := db.DB()
	require.NoError(t, err, "unwrap sql.DB")

	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	return db, sqlDB
}

func runMigrations(t *testing.T, sqlDB *sql.DB) {
	t.Helper()

	migrationsPath := findMigrationsPath()
	require.NotEmpty(t, migrationsPath, "migrations directory not found")

	driver, err := mpg.WithInstance(sqlDB, &mpg.Config{})
	require.NoError(t, err, "create migration driver")

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	require.NoError(t, err, "create migrate instance")

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "apply migrations")
	}
}

// findMigrationsPath walks up from this file toward the repository root
// looking for the migrations directory, then falls back to paths
// relative to the working directory.
func findMigrationsPath() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}

	dir := filepath.Dir(filename)
	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "migrations")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		dir = filepath.Dir(dir)
	}

	if wd, err := os.Getwd(); err == nil {
		for _, p := range []string{
			filepath.Join(wd, "migrations"),
			filepath.Join(wd, "..", "migrations"),
			filepath.Join(wd, "..", "..", "migrations"),
		} {
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

// CleanupSharedContainer terminates the package-wide container.
// Call it from TestMain after m.Run when shared containers are in use.
func CleanupSharedContainer() {
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		sharedContainer.Terminate(ctx)
		sharedContainer = nil
		sharedContainerDSN = ""
	}
}

// skipWithoutDocker skips the test when no container runtime is reachable.
// Set FASTPAY_INTEGRATION=1 to force the tests to run and fail loudly instead.
func skipWithoutDocker(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if os.Getenv("FASTPAY_INTEGRATION") != "" {
		return
	}
	provider, err := testcontainers.NewDockerProvider()
	if err != nil {
		t.Skipf("Skipping integration test, no container runtime: %v", err)
	}
	defer provider.Close()
	if _, err := provider.DaemonHost(context.Background()); err != nil {
		t.Skipf("Skipping integration test, no container runtime: %v", err)
	}
}
