package carts

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

func (r *PostgresRepository) Create(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	query :=
		`INSERT INTO carts (key, account_key, status)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, modified_at
		 `

	err := r.db.QueryRowContext(ctx, query, cart.Key, cart.AccountKey, cart.Status).
		Scan(&cart.ID, &cart.CreatedAt, &cart.ModifiedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return cart, nil
}

func (r *PostgresRepository) FindOne(ctx context.Context, cartKey uuid.UUID) (*models.Cart, error) {
	query :=
		`SELECT id, key, account_key, status, created_at, modified_at FROM carts
		 WHERE key = $1
		 `

	cart := &models.Cart{}
	err := r.db.QueryRowContext(ctx, query, cartKey).Scan(
		&cart.ID, &cart.Key, &cart.AccountKey, &cart.Status, &cart.CreatedAt, &cart.ModifiedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	items, err := r.findItems(ctx, cartKey)
	if err != nil {
		return nil, err
	}
	cart.Items = items

	return cart, nil
}

func (r *PostgresRepository) SetAccount(ctx context.Context, cartKey, accountKey uuid.UUID) error {
	query :=
		`UPDATE carts SET account_key = $1, modified_at = now()
		 WHERE key = $2 AND account_key IS NULL
		 `

	if _, err := r.db.ExecContext(ctx, query, accountKey, cartKey); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) MarkCheckedOut(ctx context.Context, cartKey uuid.UUID) error {
	query :=
		`UPDATE carts SET status = $1, modified_at = now()
		 WHERE key = $2 AND status = $3
		 `

	result, err := r.db.ExecContext(ctx, query, models.CartStatusCheckedOut, cartKey, models.CartStatusOpen)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) AddItem(ctx context.Context, item *models.CartItem, cartKey uuid.UUID) error {
	query :=
		`INSERT INTO cart_items (key, cart_key, asset_id, pricing_model_key, quotation_rows, quotation_calls)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		item.Key, cartKey, item.AssetID, item.PricingModelKey,
		item.QuotationRows, item.QuotationCalls,
	).Scan(&item.ID)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) RemoveItem(ctx context.Context, cartKey, itemKey uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE cart_key = $1 AND key = $2`

	result, err := r.db.ExecContext(ctx, query, cartKey, itemKey)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) ClearItems(ctx context.Context, cartKey uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE cart_key = $1`

	if _, err := r.db.ExecContext(ctx, query, cartKey); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) findItems(ctx context.Context, cartKey uuid.UUID) ([]models.CartItem, error) {
	query :=
		`SELECT id, key, asset_id, pricing_model_key, quotation_rows, quotation_calls
		 FROM cart_items
		 WHERE cart_key = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, cartKey)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var items []models.CartItem
	for rows.Next() {
		var item models.CartItem
		err := rows.Scan(&item.ID, &item.Key, &item.AssetID,
			&item.PricingModelKey, &item.QuotationRows, &item.QuotationCalls)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}
