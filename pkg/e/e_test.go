package e_test

import (
	"errors"
	"testing"

	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsChain(t *testing.T) {
	err := e.Wrap("op", e.ErrProductNotFound)

	assert.ErrorIs(t, err, e.ErrProductNotFound)
	assert.Equal(t, "op: product not found", err.Error())
}

func TestStorageFailureMarksConnectionErrors(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:5432: connection refused")

	err := e.StorageFailure(cause)

	assert.ErrorIs(t, err, e.ErrStorageUnavailable)
	assert.ErrorIs(t, err, cause)
}

func TestStorageFailurePassesPgErrorsThrough(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "40001", Message: "serialization failure"}

	err := e.StorageFailure(pgErr)

	// Протокольные ошибки не переквалифицируются: их коды разбирает retry-логика
	require.Same(t, pgErr, err)
	assert.NotErrorIs(t, err, e.ErrStorageUnavailable)
}
