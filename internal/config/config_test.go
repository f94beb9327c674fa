package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileFor(t *testing.T) {
	local := ProfileFor("local")
	assert.Equal(t, 500, local.BatchSize)
	assert.Equal(t, 25, local.TeamErrorCeiling)
	assert.False(t, local.AutoRestore)

	staging := ProfileFor("staging")
	assert.Equal(t, 1000, staging.BatchSize)
	assert.False(t, staging.AutoRestore)

	prod := ProfileFor("production")
	assert.Equal(t, 2000, prod.BatchSize)
	assert.Equal(t, 100, prod.TeamErrorCeiling)
	assert.True(t, prod.AutoRestore)
}

func TestValidateEnv(t *testing.T) {
	cfg := &Config{DatabasePassword: "pw", AppEnv: "qa"}
	require.Error(t, cfg.Validate())

	cfg.AppEnv = "staging"
	require.NoError(t, cfg.Validate())
}

func TestDatabaseDSN(t *testing.T) {
	cfg := &Config{
		DatabaseHost:     "db.internal",
		DatabasePort:     5433,
		DatabaseName:     "league",
		DatabaseUser:     "u",
		DatabasePassword: "p",
		DatabaseSSLMode:  "require",
	}
	assert.Equal(t, "postgres://u:p@db.internal:5433/league?sslmode=require", cfg.DatabaseDSN())
}
