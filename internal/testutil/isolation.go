// Package testutil provides isolated database environments for integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/database/postgres"
)

// PostgresDSNEnv names the disposable database used by integration tests
const PostgresDSNEnv = "SEARCH_TEST_POSTGRES_DSN"

// NewIsolatedPostgres returns a client pinned to a fresh schema that is
// dropped when the test ends. The test is skipped when PostgresDSNEnv is unset.
func NewIsolatedPostgres(t *testing.T) *postgres.Client {
	t.Helper()

	dsn := os.Getenv(PostgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set, skipping database test", PostgresDSNEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	// search_path is per connection
	db.SetMaxOpenConns(1)

	schema := SchemaName(t.Name())
	if _, err := db.ExecContext(ctx, "CREATE SCHEMA "+schema); err != nil {
		db.Close()
		t.Fatalf("Failed to create schema %s: %v", schema, err)
	}
	if _, err := db.ExecContext(ctx, "SET search_path TO "+schema); err != nil {
		db.Close()
		t.Fatalf("Failed to select schema %s: %v", schema, err)
	}

	client := postgres.NewClientFromDB(db)
	t.Cleanup(func() {
		if _, err := db.ExecContext(context.Background(), "DROP SCHEMA "+schema+" CASCADE"); err != nil {
			t.Logf("Failed to drop test schema %s: %v", schema, err)
		}
		client.Close()
	})
	return client
}

// SchemaName derives a unique schema identifier from a test name
func SchemaName(testName string) string {
	suffix := strings.ReplaceAll(uuid.Must(uuid.NewV4()).String(), "-", "")[:16]
	return fmt.Sprintf("test_%s_%s", SanitizeTestName(testName), suffix)
}

var unsafeIdent = regexp.MustCompile(`[^a-z0-9_]+`)

// SanitizeTestName sanitizes a test name for use as a database identifier
func SanitizeTestName(name string) string {
	name = strings.ToLower(name)
	name = strings.NewReplacer("/", "_", " ", "_").Replace(name)
	name = unsafeIdent.ReplaceAllString(name, "")

	// Postgres identifiers stop at 63 bytes; "test_" plus "_" plus a 16-char suffix leaves 41.
	const maxTestNameLength = 41
	if len(name) > maxTestNameLength {
		name = name[:maxTestNameLength]
	}
	return name
}
