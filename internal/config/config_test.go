package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReconcilerConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *ReconcilerConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
database:
  host: localhost
  port: 5432
  user: testuser
  password: testpass
  dbname: testdb
  sslmode: require
nats:
  url: "nats://localhost:4222"
  stream_name: "TEST_EVENTS"
  max_reconnects: 5
  reconnect_wait: "5s"
  connection_name: "test-connection"
gateway:
  base_url: "https://payments.example.com"
  api_key: "sk_test"
  timeout: "20s"
notifier:
  base_url: "https://mailer.example.com"
  api_key: "mk_test"
  admin_email: "ops@example.com"
reconciliation:
  full_pass_interval: "30m"
  fast_pass_interval: "5m"
  worker_pool_size: 4
  capture_timeout: "10s"
  retry:
    max_attempts: 3
    max_elapsed: "24h"
    cooldown: "6h"
`,
			expectError: false,
			validate: func(t *testing.T, cfg *ReconcilerConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "testuser", cfg.Database.User)
				assert.Equal(t, "testpass", cfg.Database.Password)
				assert.Equal(t, "testdb", cfg.Database.DBName)
				assert.Equal(t, "require", cfg.Database.SSLMode)
				assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
				assert.Equal(t, "TEST_EVENTS", cfg.NATS.StreamName)
				assert.Equal(t, 5, cfg.NATS.MaxReconnects)
				assert.Equal(t, "https://payments.example.com", cfg.Gateway.BaseURL)
				assert.Equal(t, 20*time.Second, cfg.Gateway.Timeout)
				assert.Equal(t, "ops@example.com", cfg.Notifier.AdminEmail)
				assert.Equal(t, 30*time.Minute, cfg.Reconciliation.FullPassInterval)
				assert.Equal(t, 5*time.Minute, cfg.Reconciliation.FastPassInterval)
				assert.Equal(t, 4, cfg.Reconciliation.WorkerPoolSize)
				assert.Equal(t, 10*time.Second, cfg.Reconciliation.CaptureTimeout)
				assert.Equal(t, 3, cfg.Reconciliation.Retry.MaxAttempts)
				assert.Equal(t, 24*time.Hour, cfg.Reconciliation.Retry.MaxElapsed)
				assert.Equal(t, 6*time.Hour, cfg.Reconciliation.Retry.Cooldown)
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: testdb
gateway:
  base_url: "https://payments.example.com"
`,
			expectError: false,
			validate: func(t *testing.T, cfg *ReconcilerConfig) {
				// Check defaults
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, 20, cfg.Database.MaxOpenConns)
				assert.Equal(t, 5, cfg.Database.MaxIdleConns)
				assert.Equal(t, "PRESALE_EVENTS", cfg.NATS.StreamName)
				assert.Equal(t, 10, cfg.NATS.MaxReconnects)
				assert.Equal(t, "2s", cfg.NATS.ReconnectWait.String())
				assert.Equal(t, 30*time.Second, cfg.Gateway.Timeout)
				assert.Equal(t, 15*time.Second, cfg.Notifier.Timeout)
				assert.Equal(t, time.Hour, cfg.Reconciliation.FullPassInterval)
				assert.Equal(t, 15*time.Minute, cfg.Reconciliation.FastPassInterval)
				assert.Equal(t, 10, cfg.Reconciliation.WorkerPoolSize)
				assert.Equal(t, 30*time.Second, cfg.Reconciliation.CaptureTimeout)
				assert.Equal(t, 5, cfg.Reconciliation.Retry.MaxAttempts)
				assert.Equal(t, 72*time.Hour, cfg.Reconciliation.Retry.MaxElapsed)
				assert.Equal(t, 12*time.Hour, cfg.Reconciliation.Retry.Cooldown)
			},
		},
		{
			name: "missing required database host",
			configFile: `
database:
  dbname: testdb
gateway:
  base_url: "https://payments.example.com"
`,
			expectError: true,
		},
		{
			name: "missing required gateway base url",
			configFile: `
database:
  host: localhost
  dbname: testdb
`,
			expectError: true,
		},
		{
			name: "invalid yaml",
			configFile: `
				database:
				  host: localhost
				  port: invalid
			`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configFile := filepath.Join(tmpDir, "config.yaml")
			err := os.WriteFile(configFile, []byte(tt.configFile), 0600)
			require.NoError(t, err)

			cfg, err := LoadReconcilerConfig(configFile, tmpDir)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				if tt.validate != nil {
					tt.validate(t, cfg)
				}
			}
		})
	}
}

func TestLoadAPIConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *APIConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: 20
  write_timeout: 20
  idle_timeout: 180
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: testdb
gateway:
  base_url: "https://payments.example.com"
auth:
  jwt_public_key: "test-public-key"
  api_keys:
    - "key1"
    - "key2"
`,
			expectError: false,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 20, cfg.Server.ReadTimeout)
				assert.Equal(t, 180, cfg.Server.IdleTimeout)
				assert.Equal(t, "test-public-key", cfg.Auth.JWTPublicKey)
				assert.Len(t, cfg.Auth.APIKeys, 2)
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: testdb
gateway:
  base_url: "https://payments.example.com"
`,
			expectError: false,
			validate: func(t *testing.T, cfg *APIConfig) {
				assert.False(t, cfg.Debug)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 10, cfg.Server.ReadTimeout)
				assert.Equal(t, 10, cfg.Server.WriteTimeout)
				assert.Equal(t, 120, cfg.Server.IdleTimeout)
			},
		},
		{
			name:        "missing config file fails validation without env vars",
			configFile:  "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			var configFile string

			if tt.configFile != "" {
				configFile = filepath.Join(tmpDir, "config.yaml")
				err := os.WriteFile(configFile, []byte(tt.configFile), 0600)
				require.NoError(t, err)
			} else {
				configFile = filepath.Join(tmpDir, "nonexistent.yaml")
			}

			cfg, err := LoadAPIConfig(configFile, tmpDir)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				if tt.validate != nil {
					tt.validate(t, cfg)
				}
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=require",
		cfg.DSN())
}

func TestConfigWithEnvironmentVariables(t *testing.T) {
	tmpDir := t.TempDir()

	// Create temporary directory for env files
	envDir := filepath.Join(tmpDir, "env")
	err := os.MkdirAll(envDir, 0750)
	require.NoError(t, err)

	// Env vars carry the VF_PRESALE_ prefix
	envFile := filepath.Join(envDir, ".env")
	envContent := `VF_PRESALE_DEBUG=true
VF_PRESALE_DATABASE_HOST=env-host
VF_PRESALE_DATABASE_PORT=3306
VF_PRESALE_DATABASE_USER=env-user
VF_PRESALE_DATABASE_PASSWORD=env-pass
VF_PRESALE_DATABASE_DBNAME=env-db
VF_PRESALE_DATABASE_SSLMODE=require
`
	err = os.WriteFile(envFile, []byte(envContent), 0600)
	require.NoError(t, err)

	// The config file carries different values; the .env values must win
	configPath := filepath.Join(tmpDir, "config.yaml")
	configFile := `
debug: false
database:
  host: file-host
  port: 5432
  user: file-user
  password: file-pass
  dbname: file-db
  sslmode: disable
gateway:
  base_url: "https://payments.example.com"
`

	err = os.WriteFile(configPath, []byte(configFile), 0600)
	require.NoError(t, err)

	cfg, err := LoadReconcilerConfig(configPath, envDir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// godotenv.Overload sets real environment variables, which viper's
	// AutomaticEnv picks up over the file values
	assert.True(t, cfg.Debug)
	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, "env-user", cfg.Database.User)
	assert.Equal(t, "env-pass", cfg.Database.Password)
	assert.Equal(t, "env-db", cfg.Database.DBName)
	assert.Equal(t, "require", cfg.Database.SSLMode)
}
