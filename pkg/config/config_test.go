package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "estoque-api", cfg.App.Name)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "America/Sao_Paulo", cfg.Ledger.TimeZone)
	assert.Equal(t, 3, cfg.Ledger.MaxRetries)
	assert.Equal(t, int64(5), cfg.Ledger.DefaultMinimum)
	assert.Equal(t, 5*time.Second, cfg.DB.LockTimeout)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "SQLite")
	v.Set("SQLITE_PATH", "/tmp/x.db")
	v.Set("LEDGER_MAX_RETRIES", "7")
	v.Set("LEDGER_TIMEZONE", "UTC")
	v.Set("DB_LOCK_TIMEOUT", "750ms")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/x.db", cfg.Storage.SQLitePath)
	assert.Equal(t, 7, cfg.Ledger.MaxRetries)
	assert.Equal(t, 750*time.Millisecond, cfg.DB.LockTimeout)

	loc, err := cfg.Ledger.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestFromViper_FailsFast(t *testing.T) {
	v := viper.New()
	v.Set("LEDGER_TIMEZONE", "Marte/Olympus")
	_, err := fromViper(v)
	require.Error(t, err)

	v = viper.New()
	v.Set("STORAGE_DRIVER", "mongo")
	_, err = fromViper(v)
	require.Error(t, err)
}

func TestDSN_EscapesPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", DBName: "estoque", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/estoque?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
