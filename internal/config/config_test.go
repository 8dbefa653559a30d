package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: 9090
mysql:
  host: db
  port: 3306
  user: wallet
  password: secret
  database: wallet
redis:
  host: cache
  port: 6379
kafka:
  enabled: true
  brokers: ["k1:9092", "k2:9092"]
auth:
  jwt_secret: s3cret
business:
  default_balance: 150000
  transfer_rate_window: 2s
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "db", cfg.MySQL.Host)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "wallet.receipts", cfg.Kafka.Topic.Receipts)
	assert.Equal(t, int64(150000), cfg.Business.DefaultBalance)
	assert.Equal(t, "level 1", cfg.Business.DefaultTier)
	assert.Equal(t, 2*time.Second, cfg.Business.TransferRateWindow)
	assert.Equal(t, 4, cfg.Business.NotifyWorkers)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("WALLET_MYSQL_PASSWORD", "from-env")
	t.Setenv("WALLET_AUTH_JWT_SECRET", "env-secret")

	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.MySQL.Password)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "server:\n  port: 8080\n"))
	assert.ErrorContains(t, err, "jwt_secret")

	_, err = LoadConfig(writeConfig(t, "auth:\n  jwt_secret: x\nkafka:\n  enabled: true\n"))
	assert.ErrorContains(t, err, "kafka.brokers")

	_, err = LoadConfig(writeConfig(t, "auth:\n  jwt_secret: x\nbusiness:\n  transfer_rate_window: 0s\n"))
	assert.ErrorContains(t, err, "business.transfer_rate_window")

	_, err = LoadConfig(writeConfig(t, "auth:\n  jwt_secret: x\nbusiness:\n  reversal_lock_ttl: -5s\n"))
	assert.ErrorContains(t, err, "business.reversal_lock_ttl")
}
