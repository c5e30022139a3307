// internal/common/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Loan Bounds Tests
// ==========================

func TestLoanConfig_Clamp(t *testing.T) {
	loan := LoanConfig{MinAmount: 2500, MaxAmount: 10000, DefaultAmount: 4500}

	tests := []struct {
		name   string
		amount int
		want   int
	}{
		{"zero falls back to default", 0, 4500},
		{"below minimum", 100, 2500},
		{"at minimum", 2500, 2500},
		{"within range", 6000, 6000},
		{"at maximum", 10000, 10000},
		{"above maximum", 99999, 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, loan.Clamp(tt.amount))
		})
	}
}

// ==========================
// Loader Tests
// ==========================

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
app:
  name: loanflow
storage:
  driver: memory
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "titleLoanApp", cfg.Storage.Namespace)
	assert.Equal(t, 2500, cfg.Loan.MinAmount)
	assert.Equal(t, 10000, cfg.Loan.MaxAmount)
	assert.Equal(t, 4500, cfg.Loan.DefaultAmount)
	assert.Equal(t, "loan-applications", cfg.Search.Index)
	assert.Equal(t, ":9102", cfg.Metrics.Address)
}

func TestLoadFromFile_RedisDriverRequiresAddress(t *testing.T) {
	path := writeConfigFile(t, `
storage:
  driver: redis
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.redis.address")
}

func TestLoadFromFile_PostgresDriverRequiresConnection(t *testing.T) {
	path := writeConfigFile(t, `
storage:
  driver: postgres
database:
  postgres:
    host: localhost
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.postgres.database")
}

func TestLoadFromFile_UnknownDriverRejected(t *testing.T) {
	path := writeConfigFile(t, `
storage:
  driver: dynamo
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage driver")
}

func TestLoadFromFile_LoanBoundsValidated(t *testing.T) {
	path := writeConfigFile(t, `
storage:
  driver: memory
loan:
  min_amount: 5000
  max_amount: 4000
  default_amount: 4500
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loan.min_amount")
}

func TestLoadFromFile_EmailRequiresFromAddress(t *testing.T) {
	path := writeConfigFile(t, `
storage:
  driver: memory
notifications:
  email_enabled: true
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notifications.from_address")
}

// ==========================
// DSN Tests
// ==========================

func TestPostgresConfig_GetDSN(t *testing.T) {
	cfg := PostgresConfig{
		Host:     "db.internal",
		Port:     5432,
		Database: "loanflow",
		User:     "app",
		Password: "secret",
		SSLMode:  "require",
	}

	dsn := cfg.GetDSN()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "port=5432")
	assert.Contains(t, dsn, "dbname=loanflow")
	assert.Contains(t, dsn, "sslmode=require")
}
