// internal/storage/postgres_test.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"loanflow/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Schema Tests
// ==========================

func TestEnsureSchema_CreatesTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS loanflow_state`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS loanflow_state`).
		WillReturnError(errors.New("permission denied"))

	err = EnsureSchema(context.Background(), db)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "loanflow_state")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Core Functionality Tests
// ==========================

func TestPostgresStore_MissingRowReadsAsEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT data FROM loanflow_state`).
		WithArgs("titleLoanApp").
		WillReturnError(sql.ErrNoRows)

	store := NewPostgresStore(db, "titleLoanApp", logger.NewTestLogger(t))

	user, err := store.GetUser(context.Background(), "user-001")
	assert.NoError(t, err)
	assert.Nil(t, user)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveUserUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT data FROM loanflow_state`).
		WithArgs("titleLoanApp").
		WillReturnError(sql.ErrNoRows)

	mock.ExpectExec(`INSERT INTO loanflow_state`).
		WithArgs("titleLoanApp", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewPostgresStore(db, "titleLoanApp", logger.NewTestLogger(t))

	err = store.SaveUser(context.Background(), testUser("user-001", "a@b.com"))
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetUserDecodesStoredBlob(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	state := NewState()
	state.Users["user-001"] = testUser("user-001", "a@b.com")
	blob, err := json.Marshal(state)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT data FROM loanflow_state`).
		WithArgs("titleLoanApp").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(blob))

	store := NewPostgresStore(db, "titleLoanApp", logger.NewTestLogger(t))

	user, err := store.GetUser(context.Background(), "user-001")
	assert.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "a@b.com", user.Email)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ClearAllData(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM loanflow_state`).
		WithArgs("titleLoanApp").
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewPostgresStore(db, "titleLoanApp", logger.NewTestLogger(t))

	assert.NoError(t, store.ClearAllData(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Edge Cases
// ==========================

func TestPostgresStore_QueryErrorPropagates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("connection reset")
	mock.ExpectQuery(`SELECT data FROM loanflow_state`).
		WithArgs("titleLoanApp").
		WillReturnError(boom)

	store := NewPostgresStore(db, "titleLoanApp", logger.NewTestLogger(t))

	_, err = store.GetUser(context.Background(), "user-001")
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}
