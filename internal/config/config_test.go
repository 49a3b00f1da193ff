package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"megacrm-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg := config.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 400*time.Millisecond, cfg.Store.RetryDelay)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AdminUnlock)
	require.Len(t, cfg.Branches, 2)

	b, ok := cfg.Branch("bz")
	require.True(t, ok)
	assert.Equal(t, "Bizerte", b.Name)
}

func TestLoadFile_YAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9000
store:
  driver: xlsx
  xlsx_path: /tmp/crm.xlsx
auth:
  payments_password: "0000"
  payments_by_user:
    sana: "s3cret"
branches:
  - name: Tunis
    code: TN
    password: tn
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("JWT_SECRET", "from-env")

	cfg := config.LoadFile(path)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "xlsx", cfg.Store.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "s3cret", cfg.PaymentsPasswordFor("Sana"))
	assert.Equal(t, "0000", cfg.PaymentsPasswordFor("other"))
	require.Len(t, cfg.Branches, 1)
	assert.Equal(t, "TN", cfg.Branches[0].Code)
}
