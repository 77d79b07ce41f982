package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-fee-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5433, User: "fees", Password: "secret", Name: "school_fees", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5433 user=fees password=secret dbname=school_fees sslmode=disable", dsn)
}
