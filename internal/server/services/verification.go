package services

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/geotrade/marketplace/internal/common"
	"github.com/geotrade/marketplace/internal/logging"
	"github.com/geotrade/marketplace/internal/msg"
	"github.com/geotrade/marketplace/internal/server/clients"
	"github.com/geotrade/marketplace/internal/server/filestore"
	"github.com/geotrade/marketplace/internal/server/models"
	"github.com/geotrade/marketplace/internal/server/repositories/repomanager"
)

const (
	minPageSize = 1 << 10     // 1 KiB
	maxPageSize = 7 * 1 << 20 // 7 MiB
)

// allowed MIME types for KYC pages, detected from content rather than file
// name so an extension cannot smuggle another format past the provider.
var allowedPageTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// VerificationService drives KYC documents and UBO declarations: local
// status-gated mutation plus submission to the external verification
// provider.
type VerificationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	payment     clients.PaymentClient
	files       filestore.Store
	logger      logging.Logger
}

func NewVerificationService(db *sql.DB, m repomanager.RepositoryManager,
	payment clients.PaymentClient, files filestore.Store, logger logging.Logger) *VerificationService {
	return &VerificationService{
		db:          db,
		repomanager: m,
		payment:     payment,
		files:       files,
		logger:      logger,
	}
}

// CreateDocument registers a new KYC document with the provider and mirrors
// it locally in CREATED status.
func (s *VerificationService) CreateDocument(ctx context.Context, customerKey uuid.UUID, customerType models.CustomerType) (*models.KycDocument, error) {
	providerID, err := s.payment.CreateKycDocument(ctx, customerKey.String())
	if err != nil {
		s.logger.Error(ctx, "provider document creation failed", "customer", customerKey, "error", err)
		return nil, msg.New(msg.CodePaymentProvider, "Verification provider rejected the request")
	}

	doc := &models.KycDocument{
		Key:           uuid.New(),
		ProviderDocID: providerID,
		CustomerKey:   customerKey,
		CustomerType:  customerType,
		Status:        models.KycStatusCreated,
	}

	created, err := s.repomanager.Kyc(s.db).CreateDocument(ctx, doc)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return created, nil
}

// AddPage validates and uploads one document page. Size and MIME checks run
// before any provider call.
func (s *VerificationService) AddPage(ctx context.Context, customerKey, docKey uuid.UUID, page []byte) error {
	if err := validatePage(page); err != nil {
		return err
	}

	repo := s.repomanager.Kyc(s.db)

	doc, err := repo.FindOneDocument(ctx, customerKey, docKey)
	if err != nil {
		return err
	}
	if !doc.Status.Mutable() {
		return msg.New(msg.CodeKycInvalidStatus, "Pages cannot be added in status %s", doc.Status)
	}

	if err := s.payment.AddKycPage(ctx, doc.ProviderDocID, page); err != nil {
		s.logger.Error(ctx, "provider page upload failed", "document", docKey, "error", err)
		return msg.New(msg.CodePaymentProvider, "Verification provider rejected the page")
	}

	// Archive a copy next to the provider upload.
	contentType := http.DetectContentType(page)
	if _, err := s.files.Put(ctx, "kyc", contentType, page); err != nil {
		s.logger.Error(ctx, "page archival failed", "document", docKey, "error", err)
	}

	return repo.IncrementPageCount(ctx, docKey)
}

func validatePage(page []byte) error {
	if len(page) == 0 {
		return msg.Invalid(msg.FieldMessage("file", msg.CodeKycPageFileMissing, "Page file is empty"))
	}
	if len(page) < minPageSize {
		return msg.Invalid(msg.FieldMessage("file", msg.CodeFileTooSmall, "Page must be at least 1 KB"))
	}
	if len(page) > maxPageSize {
		return msg.Invalid(msg.FieldMessage("file", msg.CodeFileTooLarge, "Page must not exceed 7 MB"))
	}
	if contentType := http.DetectContentType(page); !allowedPageTypes[contentType] {
		return msg.Invalid(msg.FieldMessage("file", msg.CodeFileTypeNotSupported, "File type %s is not supported", contentType))
	}
	return nil
}

// SubmitDocument hands the document to the provider for review. SUBMITTED
// is terminal for local mutation.
func (s *VerificationService) SubmitDocument(ctx context.Context, customerKey, docKey uuid.UUID) error {
	repo := s.repomanager.Kyc(s.db)

	doc, err := repo.FindOneDocument(ctx, customerKey, docKey)
	if err != nil {
		return err
	}
	if !doc.Status.Mutable() {
		return msg.New(msg.CodeKycInvalidStatus, "Document in status %s cannot be submitted", doc.Status)
	}
	if doc.PageCount == 0 {
		return msg.Invalid(msg.FieldMessage("pages", msg.CodeValidation, "At least one page is required"))
	}

	if err := s.payment.SubmitKycDocument(ctx, doc.ProviderDocID); err != nil {
		s.logger.Error(ctx, "provider document submission failed", "document", docKey, "error", err)
		return msg.New(msg.CodePaymentProvider, "Verification provider rejected the submission")
	}

	err = repo.UpdateDocumentStatus(ctx, customerKey, docKey,
		[]models.KycStatus{models.KycStatusCreated, models.KycStatusIncomplete}, models.KycStatusSubmitted)
	if errors.Is(err, common.ErrorNotFound) {
		return msg.New(msg.CodeKycInvalidStatus, "Document is no longer in a submittable status")
	}
	return err
}

// Document returns one of the customer's documents.
func (s *VerificationService) Document(ctx context.Context, customerKey, docKey uuid.UUID) (*models.KycDocument, error) {
	return s.repomanager.Kyc(s.db).FindOneDocument(ctx, customerKey, docKey)
}

// Documents lists the customer's documents of the given type.
func (s *VerificationService) Documents(ctx context.Context, customerKey uuid.UUID, customerType models.CustomerType, offset, limit int) ([]*models.KycDocument, error) {
	return s.repomanager.Kyc(s.db).FindAllDocuments(ctx, customerKey, customerType, offset, limit)
}

// CreateDeclaration registers a new UBO declaration with the provider.
func (s *VerificationService) CreateDeclaration(ctx context.Context, customerKey uuid.UUID) (*models.UboDeclaration, error) {
	providerID, err := s.payment.CreateUboDeclaration(ctx, customerKey.String())
	if err != nil {
		s.logger.Error(ctx, "provider declaration creation failed", "customer", customerKey, "error", err)
		return nil, msg.New(msg.CodePaymentProvider, "Verification provider rejected the request")
	}

	dec := &models.UboDeclaration{
		Key:           uuid.New(),
		ProviderDecID: providerID,
		CustomerKey:   customerKey,
		Status:        models.KycStatusCreated,
	}

	created, err := s.repomanager.Kyc(s.db).CreateDeclaration(ctx, dec)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return created, nil
}

// AddUbo appends a beneficial owner to a mutable declaration.
func (s *VerificationService) AddUbo(ctx context.Context, customerKey, decKey uuid.UUID, ubo *models.Ubo) error {
	var fields []msg.Message
	if ubo.FirstName == "" {
		fields = append(fields, msg.FieldMessage("firstName", msg.CodeValidation, "First name is required"))
	}
	if ubo.LastName == "" {
		fields = append(fields, msg.FieldMessage("lastName", msg.CodeValidation, "Last name is required"))
	}
	if ubo.Nationality == "" {
		fields = append(fields, msg.FieldMessage("nationality", msg.CodeValidation, "Nationality is required"))
	}
	if len(fields) > 0 {
		return msg.Invalid(fields...)
	}

	repo := s.repomanager.Kyc(s.db)

	dec, err := repo.FindOneDeclaration(ctx, customerKey, decKey)
	if err != nil {
		return err
	}
	if !dec.Status.Mutable() {
		return msg.New(msg.CodeKycInvalidStatus, "Owners cannot be added in status %s", dec.Status)
	}

	return repo.AddUbo(ctx, decKey, ubo)
}

// SubmitDeclaration hands the declaration and its owners to the provider.
func (s *VerificationService) SubmitDeclaration(ctx context.Context, customerKey, decKey uuid.UUID) error {
	repo := s.repomanager.Kyc(s.db)

	dec, err := repo.FindOneDeclaration(ctx, customerKey, decKey)
	if err != nil {
		return err
	}
	if !dec.Status.Mutable() {
		return msg.New(msg.CodeKycInvalidStatus, "Declaration in status %s cannot be submitted", dec.Status)
	}
	if len(dec.Ubos) == 0 {
		return msg.Invalid(msg.FieldMessage("ubos", msg.CodeValidation, "At least one beneficial owner is required"))
	}

	if err := s.payment.SubmitUboDeclaration(ctx, dec.ProviderDecID, dec.Ubos); err != nil {
		s.logger.Error(ctx, "provider declaration submission failed", "declaration", decKey, "error", err)
		return msg.New(msg.CodePaymentProvider, "Verification provider rejected the submission")
	}

	err = repo.UpdateDeclarationStatus(ctx, customerKey, decKey,
		[]models.KycStatus{models.KycStatusCreated, models.KycStatusIncomplete}, models.KycStatusSubmitted)
	if errors.Is(err, common.ErrorNotFound) {
		return msg.New(msg.CodeKycInvalidStatus, "Declaration is no longer in a submittable status")
	}
	return err
}

// Declaration returns one of the customer's declarations with its owners.
func (s *VerificationService) Declaration(ctx context.Context, customerKey, decKey uuid.UUID) (*models.UboDeclaration, error) {
	return s.repomanager.Kyc(s.db).FindOneDeclaration(ctx, customerKey, decKey)
}

// Declarations lists the customer's declarations.
func (s *VerificationService) Declarations(ctx context.Context, customerKey uuid.UUID, offset, limit int) ([]*models.UboDeclaration, error) {
	return s.repomanager.Kyc(s.db).FindAllDeclarations(ctx, customerKey, offset, limit)
}
