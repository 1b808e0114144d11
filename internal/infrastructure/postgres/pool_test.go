package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sifen-api/pkg/config"
)

func TestNewPoolConfig_Valores(t *testing.T) {
	pc, err := newPoolConfig(config.DBConfig{
		DatabaseURL:     "postgres://u:p@127.0.0.1:5432/sifen?sslmode=disable",
		MaxConns:        8,
		MinConns:        1,
		MaxConnLifetime: 15 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
		AppName:         "sifen-api",
	})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", pc.ConnConfig.Host)
	assert.Equal(t, int32(8), pc.MaxConns)
	assert.Equal(t, int32(1), pc.MinConns)
	assert.Equal(t, 15*time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, 5*time.Minute, pc.MaxConnIdleTime)
	assert.Equal(t, "sifen-api", pc.ConnConfig.RuntimeParams["application_name"])
	assert.NotNil(t, pc.ConnConfig.DialFunc)
	assert.NotNil(t, pc.AfterConnect)
}

func TestNewPoolConfig_PorDefecto(t *testing.T) {
	pc, err := newPoolConfig(config.DBConfig{
		Host: "127.0.0.1", Port: 5432, User: "postgres", DBName: "sifen", SSLMode: "disable",
		MinConns: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(25), pc.MaxConns)
	assert.Equal(t, int32(25), pc.MinConns, "MinConns no supera MaxConns")
	assert.Equal(t, time.Hour, pc.MaxConnLifetime)
	assert.Equal(t, 30*time.Minute, pc.MaxConnIdleTime)
	assert.Equal(t, "sifen", pc.ConnConfig.Database)
}

func TestNewPoolConfig_DSNInvalido(t *testing.T) {
	_, err := newPoolConfig(config.DBConfig{DatabaseURL: "postgres://u:p@127.0.0.1:puerto/x"})
	assert.Error(t, err)
}

func TestResolveIPv4_Literales(t *testing.T) {
	ip, err := resolveIPv4("10.0.0.7")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.7", ip)

	_, err = resolveIPv4("::1")
	assert.Error(t, err)
}
