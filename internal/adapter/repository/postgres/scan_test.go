package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/vigipay/vigipay-backend/internal/domain"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("plain")))
}

func TestNotFound(t *testing.T) {
	err := notFound(sql.ErrNoRows, "account")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	other := errors.New("conn refused")
	err = notFound(other, "account")
	assert.ErrorIs(t, err, other)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestNullableUUID(t *testing.T) {
	assert.Nil(t, nullableUUID(nil))

	id := uuid.New()
	assert.Equal(t, id, nullableUUID(&id))
}

func TestSchema_DeleteActions(t *testing.T) {
	ddl := strings.Join(schema, "\n")

	assert.Contains(t, ddl, "account_id  UUID REFERENCES accounts (id) ON DELETE SET NULL")
	assert.Contains(t, ddl, "transfer_id UUID REFERENCES transfers (id) ON DELETE SET NULL")
	assert.Contains(t, ddl, "FOREIGN KEY (account_id) REFERENCES accounts (id) ON DELETE SET NULL")
	assert.Contains(t, ddl, "FOREIGN KEY (transfer_id) REFERENCES transfers (id) ON DELETE SET NULL")
	assert.Contains(t, ddl, "sender_account_id       UUID NOT NULL REFERENCES accounts (id) ON DELETE RESTRICT")
}
