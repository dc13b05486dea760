package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/roster-etl/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "cdcc",
		Password: "secret",
		Name:     "cdcc",
		SSLMode:  "disable",
	})
	assert.Equal(t, "host=db port=5433 user=cdcc password=secret dbname=cdcc sslmode=disable", dsn)
}
