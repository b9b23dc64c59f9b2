// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	platformconfig "github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/platform/config"
	"github.com/stretchr/testify/assert"
)

func TestBuildConnectionString(t *testing.T) {
	cfg := platformconfig.PostgreSQLConfig{
		Host:           "db",
		Port:           5433,
		Username:       "sales",
		Password:       "secret",
		Database:       "kb",
		ConnectTimeout: 7,
	}

	assert.Equal(t,
		"host=db port=5433 dbname=kb user=sales password=secret sslmode=disable connect_timeout=7",
		BuildConnectionString(cfg))
}

func TestBuildConnectionString_OmitsEmptyCredentials(t *testing.T) {
	cfg := platformconfig.PostgreSQLConfig{Host: "localhost", Port: 5432, Database: "kb", SSLMode: "require"}

	assert.Equal(t, "host=localhost port=5432 dbname=kb sslmode=require", BuildConnectionString(cfg))
}

func TestNewClient(t *testing.T) {
	if os.Getenv("SEARCH_TEST_POSTGRES_HOST") == "" {
		t.Skip("Skipping test: SEARCH_TEST_POSTGRES_HOST not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := NewClient(ctx, platformconfig.PostgreSQLConfig{
		Host:            os.Getenv("SEARCH_TEST_POSTGRES_HOST"),
		Port:            5432,
		Username:        "postgres",
		Password:        "postgres",
		Database:        "postgres",
		MaxOpenConns:    5,
		ConnMaxLifetime: time.Minute,
	})
	if err != nil {
		t.Skipf("Skipping test: PostgreSQL not available: %v", err)
		return
	}
	defer client.Close()

	assert.NoError(t, client.Ping(ctx))
}
