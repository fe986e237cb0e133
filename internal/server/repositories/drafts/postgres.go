package drafts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

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

const draftColumns = `id, key, owner_key, publisher_key, status, title, description,
	asset_type, rejection_reason, pricing_models, created_at, modified_at`

func (r *PostgresRepository) Create(ctx context.Context, draft *models.AssetDraft) (*models.AssetDraft, error) {
	pricing, err := json.Marshal(draft.PricingModels)
	if err != nil {
		return nil, fmt.Errorf("marshal pricing models: %w", err)
	}

	query :=
		`INSERT INTO asset_drafts (key, owner_key, publisher_key, status, title, description, asset_type, pricing_models)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, modified_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		draft.Key, draft.OwnerKey, draft.PublisherKey, draft.Status,
		draft.Title, draft.Description, draft.AssetType, pricing,
	).Scan(&draft.ID, &draft.CreatedAt, &draft.ModifiedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return draft, nil
}

func (r *PostgresRepository) Update(ctx context.Context, draft *models.AssetDraft) (*models.AssetDraft, error) {
	pricing, err := json.Marshal(draft.PricingModels)
	if err != nil {
		return nil, fmt.Errorf("marshal pricing models: %w", err)
	}

	query :=
		`UPDATE asset_drafts
		 SET title = $1, description = $2, asset_type = $3, pricing_models = $4,
		     status = $5, rejection_reason = $6, modified_at = now()
		 WHERE key = $7 AND publisher_key = $8 AND deleted_at IS NULL
		 RETURNING modified_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		draft.Title, draft.Description, draft.AssetType, pricing,
		draft.Status, draft.RejectionReason, draft.Key, draft.PublisherKey,
	).Scan(&draft.ModifiedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return draft, nil
}

func (r *PostgresRepository) UpdateStatus(
	ctx context.Context, publisherKey, draftKey uuid.UUID,
	expected []models.DraftStatus, next models.DraftStatus, rejectionReason string,
) error {
	placeholders := make([]string, 0, len(expected))
	args := []any{next, rejectionReason, draftKey, publisherKey}
	for i, s := range expected {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+5))
		args = append(args, s)
	}

	query := fmt.Sprintf(
		`UPDATE asset_drafts
		 SET status = $1, rejection_reason = $2, modified_at = now()
		 WHERE key = $3 AND publisher_key = $4 AND deleted_at IS NULL AND status IN (%s)
		 `, strings.Join(placeholders, ", "))

	result, err := r.db.ExecContext(ctx, query, args...)
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

func (r *PostgresRepository) FindOne(ctx context.Context, publisherKey, draftKey uuid.UUID) (*models.AssetDraft, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM asset_drafts
		 WHERE key = $1 AND publisher_key = $2 AND deleted_at IS NULL
		 `, draftColumns)

	draft, err := r.scanDraft(r.db.QueryRowContext(ctx, query, draftKey, publisherKey))
	if err != nil {
		return nil, err
	}

	resources, err := r.FindResources(ctx, draftKey)
	if err != nil {
		return nil, err
	}
	draft.Resources = resources

	return draft, nil
}

func (r *PostgresRepository) FindAll(ctx context.Context, publisherKey uuid.UUID, q Query) ([]*models.AssetDraft, error) {
	args := []any{publisherKey}
	where := "publisher_key = $1 AND deleted_at IS NULL"

	if len(q.Statuses) > 0 {
		placeholders := make([]string, 0, len(q.Statuses))
		for _, s := range q.Statuses {
			args = append(args, s)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		where += fmt.Sprintf(" AND status IN (%s)", strings.Join(placeholders, ", "))
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit, q.Offset)

	query := fmt.Sprintf(
		`SELECT %s FROM asset_drafts
		 WHERE %s
		 ORDER BY modified_at DESC
		 LIMIT $%d OFFSET $%d
		 `, draftColumns, where, len(args)-1, len(args))

	return r.queryDrafts(ctx, query, args...)
}

func (r *PostgresRepository) FindAllPending(ctx context.Context, status models.DraftStatus, offset, limit int) ([]*models.AssetDraft, error) {
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf(
		`SELECT %s FROM asset_drafts
		 WHERE status = $1 AND deleted_at IS NULL
		 ORDER BY modified_at ASC
		 LIMIT $2 OFFSET $3
		 `, draftColumns)

	return r.queryDrafts(ctx, query, status, limit, offset)
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, publisherKey, draftKey uuid.UUID) error {
	query :=
		`UPDATE asset_drafts SET deleted_at = now()
		 WHERE key = $1 AND publisher_key = $2 AND deleted_at IS NULL
		 `

	result, err := r.db.ExecContext(ctx, query, draftKey, publisherKey)
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

func (r *PostgresRepository) AddResource(ctx context.Context, resource *models.AssetResource) error {
	query :=
		`INSERT INTO asset_resources (key, draft_key, category, file_name, size, content_type, storage_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		resource.Key, resource.DraftKey, resource.Category,
		resource.FileName, resource.Size, resource.ContentType, resource.StorageKey,
	).Scan(&resource.CreatedAt)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) FindResources(ctx context.Context, draftKey uuid.UUID) ([]models.AssetResource, error) {
	query :=
		`SELECT key, draft_key, category, file_name, size, content_type, storage_key, created_at
		 FROM asset_resources
		 WHERE draft_key = $1
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, draftKey)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var resources []models.AssetResource
	for rows.Next() {
		var res models.AssetResource
		err := rows.Scan(&res.Key, &res.DraftKey, &res.Category,
			&res.FileName, &res.Size, &res.ContentType, &res.StorageKey, &res.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		resources = append(resources, res)
	}

	return resources, rows.Err()
}

func (r *PostgresRepository) FindResource(ctx context.Context, draftKey, resourceKey uuid.UUID) (*models.AssetResource, error) {
	query :=
		`SELECT key, draft_key, category, file_name, size, content_type, storage_key, created_at
		 FROM asset_resources
		 WHERE draft_key = $1 AND key = $2
		 `

	res := &models.AssetResource{}
	err := r.db.QueryRowContext(ctx, query, draftKey, resourceKey).Scan(
		&res.Key, &res.DraftKey, &res.Category,
		&res.FileName, &res.Size, &res.ContentType, &res.StorageKey, &res.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return res, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scanDraft(row rowScanner) (*models.AssetDraft, error) {
	draft := &models.AssetDraft{}
	var pricing []byte

	err := row.Scan(&draft.ID, &draft.Key, &draft.OwnerKey, &draft.PublisherKey,
		&draft.Status, &draft.Title, &draft.Description, &draft.AssetType,
		&draft.RejectionReason, &pricing, &draft.CreatedAt, &draft.ModifiedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if len(pricing) > 0 {
		if err := json.Unmarshal(pricing, &draft.PricingModels); err != nil {
			return nil, fmt.Errorf("unmarshal pricing models: %w", err)
		}
	}

	return draft, nil
}

func (r *PostgresRepository) queryDrafts(ctx context.Context, query string, args ...any) ([]*models.AssetDraft, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.AssetDraft
	for rows.Next() {
		draft, err := r.scanDraft(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, draft)
	}

	return result, rows.Err()
}
