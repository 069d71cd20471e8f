package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carshare/internal/repository"
	"carshare/internal/repository/postgres"
)

func TestInventoryLedger_Reserve(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ledger := postgres.NewInventoryLedger(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE vehicles SET available_units = available_units - 1`).
			WithArgs("v-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := ledger.Reserve(ctx, "v-1")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("OutOfStock", func(t *testing.T) {
		mock.ExpectExec(`UPDATE vehicles SET available_units = available_units - 1`).
			WithArgs("v-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT TRUE FROM vehicles WHERE id = \$1 AND NOT retired`).
			WithArgs("v-1").
			WillReturnRows(sqlmock.NewRows([]string{"bool"}).AddRow(true))

		err := ledger.Reserve(ctx, "v-1")
		assert.ErrorIs(t, err, repository.ErrOutOfStock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnknownOrRetired", func(t *testing.T) {
		mock.ExpectExec(`UPDATE vehicles SET available_units = available_units - 1`).
			WithArgs("v-2").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT TRUE FROM vehicles WHERE id = \$1 AND NOT retired`).
			WithArgs("v-2").
			WillReturnRows(sqlmock.NewRows([]string{"bool"}))

		err := ledger.Reserve(ctx, "v-2")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DatabaseError", func(t *testing.T) {
		dbErr := errors.New("connection reset")
		mock.ExpectExec(`UPDATE vehicles SET available_units = available_units - 1`).
			WithArgs("v-1").
			WillReturnError(dbErr)

		err := ledger.Reserve(ctx, "v-1")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInventoryLedger_Release(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ledger := postgres.NewInventoryLedger(db)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE vehicles SET available_units = available_units \+ 1 WHERE id = \$1`).
		WithArgs("v-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, ledger.Release(ctx, "v-1"))

	mock.ExpectExec(`UPDATE vehicles SET available_units = available_units \+ 1 WHERE id = \$1`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, ledger.Release(ctx, "missing"), repository.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
