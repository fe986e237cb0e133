package kyc

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

func (r *PostgresRepository) CreateDocument(ctx context.Context, doc *models.KycDocument) (*models.KycDocument, error) {
	query :=
		`INSERT INTO kyc_documents (key, provider_doc_id, customer_key, customer_type, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, modified_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		doc.Key, doc.ProviderDocID, doc.CustomerKey, doc.CustomerType, doc.Status,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.ModifiedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return doc, nil
}

func (r *PostgresRepository) FindOneDocument(ctx context.Context, customerKey, docKey uuid.UUID) (*models.KycDocument, error) {
	query :=
		`SELECT id, key, provider_doc_id, customer_key, customer_type, status, page_count, refused_reason, created_at, modified_at
		 FROM kyc_documents
		 WHERE key = $1 AND customer_key = $2
		 `

	doc := &models.KycDocument{}
	err := r.db.QueryRowContext(ctx, query, docKey, customerKey).Scan(
		&doc.ID, &doc.Key, &doc.ProviderDocID, &doc.CustomerKey, &doc.CustomerType,
		&doc.Status, &doc.PageCount, &doc.RefusedReason, &doc.CreatedAt, &doc.ModifiedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return doc, nil
}

func (r *PostgresRepository) FindAllDocuments(
	ctx context.Context, customerKey uuid.UUID, customerType models.CustomerType, offset, limit int,
) ([]*models.KycDocument, error) {
	if limit <= 0 {
		limit = 10
	}

	query :=
		`SELECT id, key, provider_doc_id, customer_key, customer_type, status, page_count, refused_reason, created_at, modified_at
		 FROM kyc_documents
		 WHERE customer_key = $1 AND customer_type = $2
		 ORDER BY created_at DESC
		 LIMIT $3 OFFSET $4
		 `

	rows, err := r.db.QueryContext(ctx, query, customerKey, customerType, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.KycDocument
	for rows.Next() {
		doc := &models.KycDocument{}
		err := rows.Scan(&doc.ID, &doc.Key, &doc.ProviderDocID, &doc.CustomerKey,
			&doc.CustomerType, &doc.Status, &doc.PageCount, &doc.RefusedReason,
			&doc.CreatedAt, &doc.ModifiedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, doc)
	}

	return result, rows.Err()
}

func (r *PostgresRepository) UpdateDocumentStatus(
	ctx context.Context, customerKey, docKey uuid.UUID, expected []models.KycStatus, next models.KycStatus,
) error {
	return r.updateStatus(ctx, "kyc_documents", customerKey, docKey, expected, next)
}

func (r *PostgresRepository) IncrementPageCount(ctx context.Context, docKey uuid.UUID) error {
	query := `UPDATE kyc_documents SET page_count = page_count + 1, modified_at = now() WHERE key = $1`

	if _, err := r.db.ExecContext(ctx, query, docKey); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) CreateDeclaration(ctx context.Context, dec *models.UboDeclaration) (*models.UboDeclaration, error) {
	query :=
		`INSERT INTO ubo_declarations (key, provider_dec_id, customer_key, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, modified_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		dec.Key, dec.ProviderDecID, dec.CustomerKey, dec.Status,
	).Scan(&dec.ID, &dec.CreatedAt, &dec.ModifiedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return dec, nil
}

func (r *PostgresRepository) FindOneDeclaration(ctx context.Context, customerKey, decKey uuid.UUID) (*models.UboDeclaration, error) {
	query :=
		`SELECT id, key, provider_dec_id, customer_key, status, refused_reason, created_at, modified_at
		 FROM ubo_declarations
		 WHERE key = $1 AND customer_key = $2
		 `

	dec := &models.UboDeclaration{}
	err := r.db.QueryRowContext(ctx, query, decKey, customerKey).Scan(
		&dec.ID, &dec.Key, &dec.ProviderDecID, &dec.CustomerKey,
		&dec.Status, &dec.RefusedReason, &dec.CreatedAt, &dec.ModifiedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	ubos, err := r.findUbos(ctx, decKey)
	if err != nil {
		return nil, err
	}
	dec.Ubos = ubos

	return dec, nil
}

func (r *PostgresRepository) FindAllDeclarations(ctx context.Context, customerKey uuid.UUID, offset, limit int) ([]*models.UboDeclaration, error) {
	if limit <= 0 {
		limit = 10
	}

	query :=
		`SELECT id, key, provider_dec_id, customer_key, status, refused_reason, created_at, modified_at
		 FROM ubo_declarations
		 WHERE customer_key = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3
		 `

	rows, err := r.db.QueryContext(ctx, query, customerKey, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.UboDeclaration
	for rows.Next() {
		dec := &models.UboDeclaration{}
		err := rows.Scan(&dec.ID, &dec.Key, &dec.ProviderDecID, &dec.CustomerKey,
			&dec.Status, &dec.RefusedReason, &dec.CreatedAt, &dec.ModifiedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, dec)
	}

	return result, rows.Err()
}

func (r *PostgresRepository) UpdateDeclarationStatus(
	ctx context.Context, customerKey, decKey uuid.UUID, expected []models.KycStatus, next models.KycStatus,
) error {
	return r.updateStatus(ctx, "ubo_declarations", customerKey, decKey, expected, next)
}

func (r *PostgresRepository) AddUbo(ctx context.Context, decKey uuid.UUID, ubo *models.Ubo) error {
	query :=
		`INSERT INTO ubos (declaration_key, first_name, last_name, birthday, nationality, address)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		decKey, ubo.FirstName, ubo.LastName, ubo.Birthday, ubo.Nationality, ubo.Address,
	).Scan(&ubo.ID)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) updateStatus(
	ctx context.Context, table string, customerKey, key uuid.UUID, expected []models.KycStatus, next models.KycStatus,
) error {
	placeholders := make([]string, 0, len(expected))
	args := []any{next, key, customerKey}
	for i, s := range expected {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+4))
		args = append(args, s)
	}

	query := fmt.Sprintf(
		`UPDATE %s SET status = $1, modified_at = now()
		 WHERE key = $2 AND customer_key = $3 AND status IN (%s)
		 `, table, strings.Join(placeholders, ", "))

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

func (r *PostgresRepository) findUbos(ctx context.Context, decKey uuid.UUID) ([]models.Ubo, error) {
	query :=
		`SELECT id, first_name, last_name, birthday, nationality, address
		 FROM ubos
		 WHERE declaration_key = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, decKey)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var ubos []models.Ubo
	for rows.Next() {
		var ubo models.Ubo
		err := rows.Scan(&ubo.ID, &ubo.FirstName, &ubo.LastName,
			&ubo.Birthday, &ubo.Nationality, &ubo.Address)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ubos = append(ubos, ubo)
	}

	return ubos, rows.Err()
}
