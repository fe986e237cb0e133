package orders

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

func (r *PostgresRepository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	query :=
		`INSERT INTO orders (key, account_key, cart_key, status, total_price, currency)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		order.Key, order.AccountKey, order.CartKey, order.Status,
		order.TotalPrice, order.Currency,
	).Scan(&order.ID, &order.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	itemQuery :=
		`INSERT INTO order_items (order_key, asset_id, asset_title, pricing_model_key, total_price, currency)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id
		 `

	for i := range order.Items {
		item := &order.Items[i]
		err := r.db.QueryRowContext(ctx, itemQuery,
			order.Key, item.AssetID, item.AssetTitle, item.PricingModelKey,
			item.TotalPrice, item.Currency,
		).Scan(&item.ID)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
	}

	return order, nil
}

func (r *PostgresRepository) FindOne(ctx context.Context, accountKey, orderKey uuid.UUID) (*models.Order, error) {
	query :=
		`SELECT id, key, account_key, cart_key, status, total_price, currency, created_at FROM orders
		 WHERE key = $1 AND account_key = $2
		 `

	order := &models.Order{}
	err := r.db.QueryRowContext(ctx, query, orderKey, accountKey).Scan(
		&order.ID, &order.Key, &order.AccountKey, &order.CartKey,
		&order.Status, &order.TotalPrice, &order.Currency, &order.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	items, err := r.findItems(ctx, orderKey)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func (r *PostgresRepository) FindAll(ctx context.Context, accountKey uuid.UUID, offset, limit int) ([]*models.Order, error) {
	if limit <= 0 {
		limit = 10
	}

	query :=
		`SELECT id, key, account_key, cart_key, status, total_price, currency, created_at FROM orders
		 WHERE account_key = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3
		 `

	rows, err := r.db.QueryContext(ctx, query, accountKey, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Order
	for rows.Next() {
		order := &models.Order{}
		err := rows.Scan(&order.ID, &order.Key, &order.AccountKey, &order.CartKey,
			&order.Status, &order.TotalPrice, &order.Currency, &order.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, order)
	}

	return result, rows.Err()
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, orderKey uuid.UUID, status models.OrderStatus) error {
	query := `UPDATE orders SET status = $1 WHERE key = $2`

	result, err := r.db.ExecContext(ctx, query, status, orderKey)
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

func (r *PostgresRepository) findItems(ctx context.Context, orderKey uuid.UUID) ([]models.OrderItem, error) {
	query :=
		`SELECT id, asset_id, asset_title, pricing_model_key, total_price, currency
		 FROM order_items
		 WHERE order_key = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, orderKey)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(&item.ID, &item.AssetID, &item.AssetTitle,
			&item.PricingModelKey, &item.TotalPrice, &item.Currency)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}
