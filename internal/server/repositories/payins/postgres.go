package payins

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/geotrade/marketplace/internal/common"
	"github.com/geotrade/marketplace/internal/dbx"
	"github.com/geotrade/marketplace/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const payinColumns = `id, key, order_key, account_key, provider_id, kind, status,
	amount, currency, wire_reference, secure_mode_redirect_url, executed_on, created_at`

func (r *PostgresRepository) Create(ctx context.Context, payin *models.PayIn) (*models.PayIn, error) {
	query :=
		`INSERT INTO payins (key, order_key, account_key, provider_id, kind, status,
		                     amount, currency, wire_reference, secure_mode_redirect_url, executed_on)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		payin.Key, payin.OrderKey, payin.AccountKey, payin.ProviderID,
		payin.Kind, payin.Status, payin.Amount, payin.Currency,
		payin.WireReference, payin.SecureModeRedirectURL, payin.ExecutedOn,
	).Scan(&payin.ID, &payin.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return payin, nil
}

func (r *PostgresRepository) FindOne(ctx context.Context, accountKey, payinKey uuid.UUID) (*models.PayIn, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM payins
		 WHERE key = $1 AND account_key = $2
		 `, payinColumns)

	payin := &models.PayIn{}
	err := r.db.QueryRowContext(ctx, query, payinKey, accountKey).Scan(
		&payin.ID, &payin.Key, &payin.OrderKey, &payin.AccountKey,
		&payin.ProviderID, &payin.Kind, &payin.Status, &payin.Amount,
		&payin.Currency, &payin.WireReference, &payin.SecureModeRedirectURL,
		&payin.ExecutedOn, &payin.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return payin, nil
}

func (r *PostgresRepository) FindAll(ctx context.Context, accountKey uuid.UUID, offset, limit int) ([]*models.PayIn, error) {
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf(
		`SELECT %s FROM payins
		 WHERE account_key = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3
		 `, payinColumns)

	rows, err := r.db.QueryContext(ctx, query, accountKey, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.PayIn
	for rows.Next() {
		payin := &models.PayIn{}
		err := rows.Scan(&payin.ID, &payin.Key, &payin.OrderKey, &payin.AccountKey,
			&payin.ProviderID, &payin.Kind, &payin.Status, &payin.Amount,
			&payin.Currency, &payin.WireReference, &payin.SecureModeRedirectURL,
			&payin.ExecutedOn, &payin.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, payin)
	}

	return result, rows.Err()
}
