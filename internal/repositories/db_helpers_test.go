//go:build integration

package repositories_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/BradenHooton/family-album/internal/database"
	"github.com/BradenHooton/family-album/internal/models"
	"github.com/BradenHooton/family-album/internal/repositories"
)

// testDB is shared by every integration test in the package
var testDB *TestDB

// TestDB manages the PostgreSQL testcontainer
type TestDB struct {
	Container testcontainers.Container
	Pool      *pgxpool.Pool
	DB        *database.DB
}

func TestMain(m *testing.M) {
	ctx := context.Background()

	db, err := setupTestDatabase(ctx)
	if err != nil {
		log.Fatalf("failed to set up test database: %v", err)
	}
	testDB = db

	code := m.Run()

	if err := db.Teardown(ctx); err != nil {
		log.Printf("failed to tear down test database: %v", err)
	}
	os.Exit(code)
}

// setupTestDatabase starts PostgreSQL, runs the migrations and wraps the pool
func setupTestDatabase(ctx context.Context) (*TestDB, error) {
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("family_album"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestDB{
		Container: container,
		Pool:      pool,
		DB:        &database.DB{Pool: pool},
	}, nil
}

// runMigrations applies migrations/ through goose on a database/sql handle
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir, err := filepath.Abs("../../migrations")
	if err != nil {
		return fmt.Errorf("failed to get migrations path: %w", err)
	}

	goose.SetLogger(log.New(os.Stderr, "", 0))
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	sqlDB := stdlib.OpenDB(*pool.Config().ConnConfig)
	defer sqlDB.Close()

	if err := goose.UpContext(ctx, sqlDB, migrationsDir); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Teardown stops the container and closes the connection pool
func (db *TestDB) Teardown(ctx context.Context) error {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.Container != nil {
		return db.Container.Terminate(ctx)
	}
	return nil
}

// cleanupTables truncates all tables for test isolation
func cleanupTables(t *testing.T) {
	t.Helper()

	tables := []string{"skills", "posts", "children", "revoked_tokens", "family_access"}
	for _, table := range tables {
		if _, err := testDB.Pool.Exec(context.Background(), fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			t.Fatalf("failed to truncate table %s: %v", table, err)
		}
	}
}

// seedFamily inserts a family row with placeholder hashes
func seedFamily(t *testing.T, phone string) *models.FamilyAccess {
	t.Helper()

	repo := repositories.NewFamilyRepository(testDB.DB)
	family, err := repo.Upsert(context.Background(), &models.FamilyAccess{
		Name:          "Test family",
		Phone:         phone,
		ViewerPINHash: "viewer-hash",
		EditorPINHash: "editor-hash",
	})
	if err != nil {
		t.Fatalf("failed to seed family: %v", err)
	}
	return family
}
