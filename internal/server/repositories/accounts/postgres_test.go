package accounts

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geotrade/marketplace/internal/common"
	"github.com/geotrade/marketplace/internal/server/models"
)

func testAccount() *models.Account {
	key := uuid.New()
	return &models.Account{
		Key:          key,
		ParentKey:    key,
		Email:        "ada@example.com",
		PasswordHash: "hash",
		Roles:        []string{"USER", "CONSUMER"},
	}
}

func TestCreate_UniqueViolationIsAlreadyExists(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO accounts").
		WillReturnError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "accounts_email_key"})

	repo := NewPostgresRepository(db)
	_, err = repo.Create(context.Background(), testAccount())

	require.ErrorIs(t, err, common.ErrorAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_OtherDBErrorIsNotAlreadyExists(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO accounts").
		WillReturnError(&pgconn.PgError{Code: "53300"})

	repo := NewPostgresRepository(db)
	_, err = repo.Create(context.Background(), testAccount())

	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
