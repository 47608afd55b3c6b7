package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPostgresConnection_InvalidURL(t *testing.T) {
	_, err := NewPostgresConnection(context.Background(), "postgres://user:pw@host:notaport/db")
	assert.ErrorContains(t, err, "parse database url")
}
