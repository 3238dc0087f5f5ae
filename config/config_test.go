package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniql-engine/relq/config"
	"github.com/omniql-engine/relq/dialect/mysql"
	"github.com/omniql-engine/relq/dialect/postgres"
	"github.com/omniql-engine/relq/dialect/sqlite"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relq.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadFillsPoolDefaults(t *testing.T) {
	path := writeConfig(t, `
dialect = "sqlite"
dsn = "file::memory:"

[pool]
min_size = 1
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Pool.MinSize)
	assert.Equal(t, 10, cfg.Pool.MaxSize)
	assert.Equal(t, 5000, cfg.Pool.AcquireTimeoutMS)
	assert.Equal(t, 30000, cfg.Pool.HealthCheckIntervalMS)
}

func TestLoadHonorsExplicitPoolValues(t *testing.T) {
	path := writeConfig(t, `
dialect = "postgresql"
dsn = "postgres://localhost/app"

[pool]
min_size = 2
max_size = 25
acquire_timeout_ms = 1500
health_check_interval_ms = 60000
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	pc := cfg.PoolConfig()
	assert.Equal(t, 2, pc.MinSize)
	assert.Equal(t, 25, pc.MaxSize)
	assert.Equal(t, 1500*time.Millisecond, pc.AcquireTimeout)
	assert.Equal(t, 60000*time.Millisecond, pc.HealthCheckInterval)
}

func TestBuildDialectSelectsConcreteImplementation(t *testing.T) {
	cases := []struct {
		dialect string
		want    string
	}{
		{"sqlite", sqlite.New("").Name()},
		{"postgresql", postgres.New().Name()},
		{"postgres", postgres.New().Name()},
		{"mysql", mysql.New("").Name()},
	}
	for _, tc := range cases {
		path := writeConfig(t, `dialect = "`+tc.dialect+`"`+"\ndsn = \"x\"\n")
		cfg, err := config.Load(path)
		require.NoError(t, err)
		d, err := cfg.BuildDialect()
		require.NoError(t, err)
		assert.Equal(t, tc.want, d.Name())
	}
}

func TestBuildDialectRejectsUnknownName(t *testing.T) {
	path := writeConfig(t, `dialect = "oracle"`+"\ndsn = \"x\"\n")
	cfg, err := config.Load(path)
	require.NoError(t, err)

	_, err = cfg.BuildDialect()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestLoadFailsOnMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.Error(t, err)
}
