package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/geotrade/marketplace/internal/common"
	"github.com/geotrade/marketplace/internal/dbx"
	"github.com/geotrade/marketplace/internal/msg"
	"github.com/geotrade/marketplace/internal/server/models"
	"github.com/geotrade/marketplace/internal/server/repositories/repomanager"
)

// ContractCommand carries the editable fields of a contract template draft.
type ContractCommand struct {
	MasterKey uuid.UUID
	Title     string
	Body      string
}

// ContractService manages provider contract templates. The invariant is
// exactly one ACTIVE template per provider; publishing retires the previous
// ACTIVE one in the same transaction.
type ContractService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewContractService(db *sql.DB, m repomanager.RepositoryManager) *ContractService {
	return &ContractService{db: db, repomanager: m}
}

// Masters lists the platform's master contracts.
func (s *ContractService) Masters(ctx context.Context, activeOnly bool, offset, limit int) ([]*models.MasterContract, error) {
	return s.repomanager.Contracts(s.db).FindAllMasters(ctx, activeOnly, offset, limit)
}

// CreateDraft starts a new template draft derived from an active master.
func (s *ContractService) CreateDraft(ctx context.Context, providerKey uuid.UUID, cmd *ContractCommand) (*models.ContractTemplate, error) {
	repo := s.repomanager.Contracts(s.db)

	master, err := repo.FindOneMaster(ctx, cmd.MasterKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, msg.New(msg.CodeContractMasterMissing, "Master contract was not found")
		}
		return nil, err
	}
	if !master.Active {
		return nil, msg.New(msg.CodeContractMasterMissing, "Master contract is not active")
	}

	tpl := &models.ContractTemplate{
		Key:         uuid.New(),
		ProviderKey: providerKey,
		MasterKey:   master.Key,
		Title:       cmd.Title,
		Body:        cmd.Body,
		Version:     1,
		Status:      models.ContractStatusDraft,
	}
	return repo.CreateTemplate(ctx, tpl)
}

// UpdateDraft edits a DRAFT-status template.
func (s *ContractService) UpdateDraft(ctx context.Context, providerKey, key uuid.UUID, cmd *ContractCommand) (*models.ContractTemplate, error) {
	repo := s.repomanager.Contracts(s.db)

	tpl, err := repo.FindOneTemplate(ctx, providerKey, key)
	if err != nil {
		return nil, err
	}
	if tpl.Status != models.ContractStatusDraft {
		return nil, msg.New(msg.CodeContractInvalidStatus, "Template in status %s cannot be modified", tpl.Status)
	}

	tpl.Title = cmd.Title
	tpl.Body = cmd.Body
	return repo.UpdateTemplate(ctx, tpl)
}

// Publish moves a draft to ACTIVE. The provider's previous ACTIVE template,
// if any, transitions to INACTIVE inside the same transaction so the
// one-ACTIVE invariant holds at every commit point.
func (s *ContractService) Publish(ctx context.Context, providerKey, key uuid.UUID) (*models.ContractTemplate, error) {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Contracts(tx)

		if err := repo.DeactivateActive(ctx, providerKey); err != nil {
			return err
		}

		if err := repo.Publish(ctx, providerKey, key); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return msg.New(msg.CodeContractInvalidStatus, "Only draft templates can be published")
			}
			return err
		}
		return nil
	})
	if err != nil {
		var me *msg.Error
		if errors.As(err, &me) {
			return nil, me
		}
		return nil, common.ErrorInternal
	}

	return s.repomanager.Contracts(s.db).FindOneTemplate(ctx, providerKey, key)
}

// Deactivate retires an ACTIVE template.
func (s *ContractService) Deactivate(ctx context.Context, providerKey, key uuid.UUID) error {
	err := s.repomanager.Contracts(s.db).Deactivate(ctx, providerKey, key)
	if errors.Is(err, common.ErrorNotFound) {
		return msg.New(msg.CodeContractInvalidStatus, "Only active templates can be deactivated")
	}
	return err
}

// CreateDraftFromTemplate clones an ACTIVE or INACTIVE template into a new
// draft with a bumped version, enabling edit-without-disruption.
func (s *ContractService) CreateDraftFromTemplate(ctx context.Context, providerKey, key uuid.UUID) (*models.ContractTemplate, error) {
	repo := s.repomanager.Contracts(s.db)

	src, err := repo.FindOneTemplate(ctx, providerKey, key)
	if err != nil {
		return nil, err
	}
	if src.Status == models.ContractStatusDraft {
		return nil, msg.New(msg.CodeContractInvalidStatus, "Template is already a draft")
	}

	tpl := &models.ContractTemplate{
		Key:         uuid.New(),
		ProviderKey: providerKey,
		MasterKey:   src.MasterKey,
		Title:       src.Title,
		Body:        src.Body,
		Version:     src.Version + 1,
		Status:      models.ContractStatusDraft,
	}
	return repo.CreateTemplate(ctx, tpl)
}

// DeleteDraft removes a DRAFT-status template.
func (s *ContractService) DeleteDraft(ctx context.Context, providerKey, key uuid.UUID) error {
	err := s.repomanager.Contracts(s.db).DeleteDraft(ctx, providerKey, key)
	if errors.Is(err, common.ErrorNotFound) {
		return msg.New(msg.CodeContractInvalidStatus, "Only draft templates can be deleted")
	}
	return err
}

// Template returns one of the provider's templates.
func (s *ContractService) Template(ctx context.Context, providerKey, key uuid.UUID) (*models.ContractTemplate, error) {
	return s.repomanager.Contracts(s.db).FindOneTemplate(ctx, providerKey, key)
}

// Templates lists the provider's templates, optionally filtered by status.
func (s *ContractService) Templates(ctx context.Context, providerKey uuid.UUID, statuses []models.ContractStatus, offset, limit int) ([]*models.ContractTemplate, error) {
	return s.repomanager.Contracts(s.db).FindAllTemplates(ctx, providerKey, statuses, offset, limit)
}
