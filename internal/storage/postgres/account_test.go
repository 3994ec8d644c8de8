package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateKeyError(t *testing.T) {
	assert.True(t, isDuplicateKeyError(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isDuplicateKeyError(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isDuplicateKeyError(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isDuplicateKeyError(errors.New("boom")))
}
