package database

import (
	"testing"

	"github.com/aplose/erp-migrate/pkg/common/config"
	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	dsn := DSN(&config.Config{
		PostgresHost:     "db",
		PostgresPort:     "5433",
		PostgresUser:     "erp",
		PostgresPassword: "secret",
		PostgresDB:       "erp",
		PostgresSSLMode:  "require",
	})
	assert.Equal(t, "host=db user=erp password=secret dbname=erp port=5433 sslmode=require", dsn)
}
