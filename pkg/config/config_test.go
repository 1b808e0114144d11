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

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "001", cfg.SIFEN.Establishment)
	assert.Equal(t, CertSourceFile, cfg.SIFEN.CertSource)
	assert.Equal(t, "ekuatia.set.gov.py", cfg.SIFEN.QRHost)
	assert.Equal(t, "postgres://postgres:@localhost:5432/sifen?sslmode=disable", cfg.DB.ConnectionString())
	assert.Equal(t, int32(25), cfg.DB.MaxConns)
	assert.Equal(t, int32(2), cfg.DB.MinConns)
	assert.Equal(t, time.Hour, cfg.DB.MaxConnLifetime)
	assert.Equal(t, 30*time.Minute, cfg.DB.MaxConnIdleTime)
	assert.Equal(t, "sifen-api", cfg.DB.AppName)
}

func TestFromViper_Pool(t *testing.T) {
	v := viper.New()
	v.Set("DB_MAX_CONNS", "8")
	v.Set("DB_MIN_CONNS", "1")
	v.Set("DB_MAX_CONN_LIFETIME_MINUTES", "15")
	v.Set("DB_MAX_CONN_IDLE_MINUTES", "5")
	v.Set("APP_NAME", "sifen-staging")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, int32(8), cfg.DB.MaxConns)
	assert.Equal(t, int32(1), cfg.DB.MinConns)
	assert.Equal(t, 15*time.Minute, cfg.DB.MaxConnLifetime)
	assert.Equal(t, 5*time.Minute, cfg.DB.MaxConnIdleTime)
	assert.Equal(t, "sifen-staging", cfg.DB.AppName)
}

func TestFromViper_Valores(t *testing.T) {
	v := viper.New()
	v.Set("SIFEN_RUC", "80069563-1")
	v.Set("SIFEN_CERT_SOURCE", "DB")
	v.Set("HTTP_PORT", "9090")
	v.Set("DB_PORT", "no-numero")
	v.Set("DATABASE_URL", "postgres://u:p@db:5432/x")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "80069563-1", cfg.SIFEN.RUC)
	assert.Equal(t, CertSourceDB, cfg.SIFEN.CertSource)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 5432, cfg.DB.Port, "un entero inválido cae al valor por defecto")
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.DB.ConnectionString())
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
}

func TestFromViper_OrigenCertificadoInvalido(t *testing.T) {
	v := viper.New()
	v.Set("SIFEN_CERT_SOURCE", "s3")
	_, err := fromViper(v)
	assert.Error(t, err)
}
