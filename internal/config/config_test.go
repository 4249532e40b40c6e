package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	err := os.WriteFile(path, []byte(`
env: "local"
database:
  db_user: "u"
  db_name: "svc"
`), 0o644)
	require.NoError(t, err)

	var cfg Config
	require.NoError(t, cleanenv.ReadConfig(path, &cfg))

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "localhost:4001", cfg.HTTPServer.Address)
	assert.Equal(t, 10*time.Second, cfg.HTTPServer.Timeout)
	assert.Equal(t, 3306, cfg.DBPort)
	assert.Equal(t, 5*time.Minute, cfg.LockTTL)
	assert.Equal(t, "./backups", cfg.Backup.Dir)
	assert.Equal(t, 14, cfg.Keep)
	assert.Equal(t, "21:00", cfg.ReportAt)
}

func TestLocation_Fallback(t *testing.T) {
	cfg := Config{TimeZone: "Nowhere/Atlantis"}
	assert.Equal(t, time.Local, cfg.Location())

	cfg.TimeZone = "UTC"
	assert.Equal(t, "UTC", cfg.Location().String())
}
