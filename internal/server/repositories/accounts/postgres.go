package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/geotrade/marketplace/internal/common"
	"github.com/geotrade/marketplace/internal/dbx"
	"github.com/geotrade/marketplace/internal/server/models"
	"github.com/google/uuid"
)

// uniqueViolation is the Postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (key, parent_key, email, password_hash, roles)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		account.Key, account.ParentKey, account.Email, account.PasswordHash,
		strings.Join(account.Roles, ","),
	).Scan(&account.ID, &account.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query :=
		`SELECT id, key, parent_key, email, password_hash, roles, created_at FROM accounts
		 WHERE email = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByKey(ctx context.Context, key uuid.UUID) (*models.Account, error) {
	query :=
		`SELECT id, key, parent_key, email, password_hash, roles, created_at FROM accounts
		 WHERE key = $1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, key))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	var roles string

	err := row.Scan(&account.ID, &account.Key, &account.ParentKey,
		&account.Email, &account.PasswordHash, &roles, &account.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if roles != "" {
		account.Roles = strings.Split(roles, ",")
	}

	return account, nil
}
