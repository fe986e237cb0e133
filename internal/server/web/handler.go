package web

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/geotrade/marketplace/internal/logging"
	"github.com/geotrade/marketplace/internal/msg"
	"github.com/geotrade/marketplace/internal/server/clients"
	"github.com/geotrade/marketplace/internal/server/models"
	"github.com/geotrade/marketplace/internal/server/repositories/drafts"
	"github.com/geotrade/marketplace/internal/server/services"
)

// Service dependencies are narrowed to the methods the handlers call so
// tests can substitute in-memory implementations.

type AccountService interface {
	Register(ctx context.Context, email, password string) (*models.Account, error)
	Login(ctx context.Context, email, password string) (string, error)
	Profile(ctx context.Context, accountKey uuid.UUID) (*models.Account, error)
}

type CartService interface {
	Resolve(ctx context.Context, token string) (*models.Cart, string, error)
	AddItem(ctx context.Context, token string, item *models.CartItem) (*models.Cart, string, error)
	RemoveItem(ctx context.Context, token string, itemKey uuid.UUID) (*models.Cart, string, error)
	Clear(ctx context.Context, token string) (*models.Cart, string, error)
}

type CheckoutService interface {
	Checkout(ctx context.Context, token string, accountKey uuid.UUID) (*models.Order, error)
	Order(ctx context.Context, accountKey, orderKey uuid.UUID) (*models.Order, error)
	Orders(ctx context.Context, accountKey uuid.UUID, offset, limit int) ([]*models.Order, error)
}

type PayInService interface {
	CreateBankwire(ctx context.Context, accountKey, orderKey uuid.UUID, token string) (*models.PayIn, error)
	CreateCardDirect(ctx context.Context, accountKey, orderKey uuid.UUID, card *services.CardDetails, token string) (*models.PayIn, error)
	PayIn(ctx context.Context, accountKey, payinKey uuid.UUID) (*models.PayIn, error)
	PayIns(ctx context.Context, accountKey uuid.UUID, offset, limit int) ([]*models.PayIn, error)
}

type DraftService interface {
	Create(ctx context.Context, ownerKey, publisherKey uuid.UUID, cmd *services.DraftCommand) (*models.AssetDraft, error)
	Update(ctx context.Context, ownerKey, publisherKey, draftKey uuid.UUID, cmd *services.DraftCommand) (*models.AssetDraft, error)
	Submit(ctx context.Context, ownerKey, publisherKey, draftKey uuid.UUID) (*models.AssetDraft, error)
	AcceptProvider(ctx context.Context, publisherKey, draftKey uuid.UUID) error
	RejectProvider(ctx context.Context, publisherKey, draftKey uuid.UUID, reason string) error
	AcceptHelpdesk(ctx context.Context, publisherKey, draftKey uuid.UUID) (*models.AssetDraft, error)
	RejectHelpdesk(ctx context.Context, publisherKey, draftKey uuid.UUID, reason string) error
	FindOne(ctx context.Context, publisherKey, draftKey uuid.UUID) (*models.AssetDraft, error)
	FindAll(ctx context.Context, publisherKey uuid.UUID, q drafts.Query) ([]*models.AssetDraft, error)
	FindAllPendingHelpdesk(ctx context.Context, offset, limit int) ([]*models.AssetDraft, error)
	Delete(ctx context.Context, ownerKey, publisherKey, draftKey uuid.UUID) error
	Lock(ctx context.Context, ownerKey, publisherKey, draftKey uuid.UUID) error
	ReleaseLock(ctx context.Context, ownerKey, draftKey uuid.UUID) error
	UploadResource(ctx context.Context, ownerKey, publisherKey, draftKey uuid.UUID, category models.ResourceCategory, fileName string, data []byte) (*models.AssetDraft, error)
	DownloadResource(ctx context.Context, publisherKey, draftKey, resourceKey uuid.UUID) (*models.AssetResource, []byte, error)
	ImportFromCatalogue(ctx context.Context, ownerKey, publisherKey uuid.UUID, assetID string) (*models.AssetDraft, error)
}

type VerificationService interface {
	CreateDocument(ctx context.Context, customerKey uuid.UUID, customerType models.CustomerType) (*models.KycDocument, error)
	AddPage(ctx context.Context, customerKey, docKey uuid.UUID, page []byte) error
	SubmitDocument(ctx context.Context, customerKey, docKey uuid.UUID) error
	Document(ctx context.Context, customerKey, docKey uuid.UUID) (*models.KycDocument, error)
	Documents(ctx context.Context, customerKey uuid.UUID, customerType models.CustomerType, offset, limit int) ([]*models.KycDocument, error)
	CreateDeclaration(ctx context.Context, customerKey uuid.UUID) (*models.UboDeclaration, error)
	AddUbo(ctx context.Context, customerKey, decKey uuid.UUID, ubo *models.Ubo) error
	SubmitDeclaration(ctx context.Context, customerKey, decKey uuid.UUID) error
	Declaration(ctx context.Context, customerKey, decKey uuid.UUID) (*models.UboDeclaration, error)
	Declarations(ctx context.Context, customerKey uuid.UUID, offset, limit int) ([]*models.UboDeclaration, error)
}

type ContractService interface {
	Masters(ctx context.Context, activeOnly bool, offset, limit int) ([]*models.MasterContract, error)
	CreateDraft(ctx context.Context, providerKey uuid.UUID, cmd *services.ContractCommand) (*models.ContractTemplate, error)
	UpdateDraft(ctx context.Context, providerKey, key uuid.UUID, cmd *services.ContractCommand) (*models.ContractTemplate, error)
	Publish(ctx context.Context, providerKey, key uuid.UUID) (*models.ContractTemplate, error)
	Deactivate(ctx context.Context, providerKey, key uuid.UUID) error
	CreateDraftFromTemplate(ctx context.Context, providerKey, key uuid.UUID) (*models.ContractTemplate, error)
	DeleteDraft(ctx context.Context, providerKey, key uuid.UUID) error
	Template(ctx context.Context, providerKey, key uuid.UUID) (*models.ContractTemplate, error)
	Templates(ctx context.Context, providerKey uuid.UUID, statuses []models.ContractStatus, offset, limit int) ([]*models.ContractTemplate, error)
}

// Handler bundles the domain services behind the HTTP routes.
type Handler struct {
	accounts     AccountService
	carts        CartService
	checkout     CheckoutService
	payins       PayInService
	drafts       DraftService
	verification VerificationService
	contracts    ContractService
	catalogue    clients.CatalogueClient
	ratings      clients.RatingsClient
	notebook     clients.NotebookClient
	logger       logging.Logger
}

func NewHandler(
	accounts AccountService,
	carts CartService,
	checkout CheckoutService,
	payins PayInService,
	drafts DraftService,
	verification VerificationService,
	contracts ContractService,
	catalogue clients.CatalogueClient,
	ratings clients.RatingsClient,
	notebook clients.NotebookClient,
	logger logging.Logger,
) *Handler {
	return &Handler{
		accounts:     accounts,
		carts:        carts,
		checkout:     checkout,
		payins:       payins,
		drafts:       drafts,
		verification: verification,
		contracts:    contracts,
		catalogue:    catalogue,
		ratings:      ratings,
		notebook:     notebook,
		logger:       logger,
	}
}

// identity extracts the authenticated account and publisher keys. The keys
// come from the verified token only, never from request parameters.
func identity(w http.ResponseWriter, r *http.Request) (owner, publisher uuid.UUID, ok bool) {
	claims, found := ClaimsFromContext(r.Context())
	if !found {
		respondMessages(w, http.StatusUnauthorized,
			msg.Message{Code: msg.CodeAccessDenied, Description: "Authentication required"})
		return uuid.Nil, uuid.Nil, false
	}

	owner, err := uuid.Parse(claims.UserKey)
	if err != nil {
		respondMessages(w, http.StatusUnauthorized,
			msg.Message{Code: msg.CodeAccessDenied, Description: "Invalid token subject"})
		return uuid.Nil, uuid.Nil, false
	}

	publisher, err = uuid.Parse(claims.ParentKey)
	if err != nil {
		publisher = owner
	}
	return owner, publisher, true
}

// pathKey parses a UUID route parameter. A malformed key behaves like a
// missing record.
func pathKey(w http.ResponseWriter, raw string) (uuid.UUID, bool) {
	key, err := uuid.Parse(raw)
	if err != nil {
		respondMessages(w, http.StatusNotFound,
			msg.Message{Code: msg.CodeNotFound, Description: "Record was not found"})
		return uuid.Nil, false
	}
	return key, true
}

// paging reads offset/limit query parameters with bounded defaults.
func paging(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return offset, limit
}
