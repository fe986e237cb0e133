package contracts

import (
	"context"
	"database/sql"
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

func (r *PostgresRepository) FindOneMaster(ctx context.Context, key uuid.UUID) (*models.MasterContract, error) {
	query :=
		`SELECT id, key, title, body, version, active, created_at FROM master_contracts
		 WHERE key = $1
		 `

	m := &models.MasterContract{}
	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&m.ID, &m.Key, &m.Title, &m.Body, &m.Version, &m.Active, &m.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}

func (r *PostgresRepository) FindAllMasters(ctx context.Context, activeOnly bool, offset, limit int) ([]*models.MasterContract, error) {
	if limit <= 0 {
		limit = 10
	}

	where := "TRUE"
	if activeOnly {
		where = "active"
	}

	query := fmt.Sprintf(
		`SELECT id, key, title, body, version, active, created_at FROM master_contracts
		 WHERE %s
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2
		 `, where)

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.MasterContract
	for rows.Next() {
		m := &models.MasterContract{}
		err := rows.Scan(&m.ID, &m.Key, &m.Title, &m.Body, &m.Version, &m.Active, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}

	return result, rows.Err()
}

func (r *PostgresRepository) CreateTemplate(ctx context.Context, tpl *models.ContractTemplate) (*models.ContractTemplate, error) {
	query :=
		`INSERT INTO contract_templates (key, provider_key, master_key, title, body, version, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, modified_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		tpl.Key, tpl.ProviderKey, tpl.MasterKey, tpl.Title, tpl.Body, tpl.Version, tpl.Status,
	).Scan(&tpl.ID, &tpl.CreatedAt, &tpl.ModifiedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return tpl, nil
}

func (r *PostgresRepository) UpdateTemplate(ctx context.Context, tpl *models.ContractTemplate) (*models.ContractTemplate, error) {
	query :=
		`UPDATE contract_templates
		 SET title = $1, body = $2, modified_at = now()
		 WHERE key = $3 AND provider_key = $4 AND status = $5
		 RETURNING modified_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		tpl.Title, tpl.Body, tpl.Key, tpl.ProviderKey, models.ContractStatusDraft,
	).Scan(&tpl.ModifiedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return tpl, nil
}

func (r *PostgresRepository) FindOneTemplate(ctx context.Context, providerKey, key uuid.UUID) (*models.ContractTemplate, error) {
	query :=
		`SELECT id, key, provider_key, master_key, title, body, version, status, created_at, modified_at
		 FROM contract_templates
		 WHERE key = $1 AND provider_key = $2
		 `

	tpl := &models.ContractTemplate{}
	err := r.db.QueryRowContext(ctx, query, key, providerKey).Scan(
		&tpl.ID, &tpl.Key, &tpl.ProviderKey, &tpl.MasterKey, &tpl.Title, &tpl.Body,
		&tpl.Version, &tpl.Status, &tpl.CreatedAt, &tpl.ModifiedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return tpl, nil
}

func (r *PostgresRepository) FindAllTemplates(
	ctx context.Context, providerKey uuid.UUID, statuses []models.ContractStatus, offset, limit int,
) ([]*models.ContractTemplate, error) {
	if limit <= 0 {
		limit = 10
	}

	args := []any{providerKey}
	where := "provider_key = $1"

	if len(statuses) > 0 {
		placeholders := make([]string, 0, len(statuses))
		for _, s := range statuses {
			args = append(args, s)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		where += fmt.Sprintf(" AND status IN (%s)", strings.Join(placeholders, ", "))
	}

	args = append(args, limit, offset)

	query := fmt.Sprintf(
		`SELECT id, key, provider_key, master_key, title, body, version, status, created_at, modified_at
		 FROM contract_templates
		 WHERE %s
		 ORDER BY modified_at DESC
		 LIMIT $%d OFFSET $%d
		 `, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.ContractTemplate
	for rows.Next() {
		tpl := &models.ContractTemplate{}
		err := rows.Scan(&tpl.ID, &tpl.Key, &tpl.ProviderKey, &tpl.MasterKey,
			&tpl.Title, &tpl.Body, &tpl.Version, &tpl.Status, &tpl.CreatedAt, &tpl.ModifiedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, tpl)
	}

	return result, rows.Err()
}

func (r *PostgresRepository) Deactivate(ctx context.Context, providerKey, key uuid.UUID) error {
	return r.transition(ctx, providerKey, key, models.ContractStatusActive, models.ContractStatusInactive)
}

func (r *PostgresRepository) DeactivateActive(ctx context.Context, providerKey uuid.UUID) error {
	query :=
		`UPDATE contract_templates SET status = $1, modified_at = now()
		 WHERE provider_key = $2 AND status = $3
		 `

	if _, err := r.db.ExecContext(ctx, query,
		models.ContractStatusInactive, providerKey, models.ContractStatusActive); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Publish(ctx context.Context, providerKey, key uuid.UUID) error {
	return r.transition(ctx, providerKey, key, models.ContractStatusDraft, models.ContractStatusActive)
}

func (r *PostgresRepository) DeleteDraft(ctx context.Context, providerKey, key uuid.UUID) error {
	query :=
		`DELETE FROM contract_templates
		 WHERE key = $1 AND provider_key = $2 AND status = $3
		 `

	result, err := r.db.ExecContext(ctx, query, key, providerKey, models.ContractStatusDraft)
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

func (r *PostgresRepository) transition(ctx context.Context, providerKey, key uuid.UUID, from, to models.ContractStatus) error {
	query :=
		`UPDATE contract_templates SET status = $1, modified_at = now()
		 WHERE key = $2 AND provider_key = $3 AND status = $4
		 `

	result, err := r.db.ExecContext(ctx, query, to, key, providerKey, from)
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
