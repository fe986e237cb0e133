package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/geotrade/marketplace/internal/common"
	"github.com/geotrade/marketplace/internal/dbx"
	"github.com/geotrade/marketplace/internal/server/clients"
	"github.com/geotrade/marketplace/internal/server/models"
	accountsrepo "github.com/geotrade/marketplace/internal/server/repositories/accounts"
	cartsrepo "github.com/geotrade/marketplace/internal/server/repositories/carts"
	contractsrepo "github.com/geotrade/marketplace/internal/server/repositories/contracts"
	draftsrepo "github.com/geotrade/marketplace/internal/server/repositories/drafts"
	kycrepo "github.com/geotrade/marketplace/internal/server/repositories/kyc"
	ordersrepo "github.com/geotrade/marketplace/internal/server/repositories/orders"
	payinsrepo "github.com/geotrade/marketplace/internal/server/repositories/payins"
)

// --- lease / session / filestore fakes ---

type fakeLease struct {
	mu    sync.Mutex
	locks map[string]string
}

func newFakeLease() *fakeLease { return &fakeLease{locks: map[string]string{}} }

func (f *fakeLease) Acquire(ctx context.Context, key, holder string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if current, ok := f.locks[key]; ok && current != holder {
		return false, nil
	}
	f.locks[key] = holder
	return true, nil
}

func (f *fakeLease) Holder(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.locks[key], nil
}

func (f *fakeLease) Release(ctx context.Context, key, holder string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.locks[key] != holder {
		return false, nil
	}
	delete(f.locks, key)
	return true, nil
}

type fakeSession struct {
	mu    sync.Mutex
	slots map[string]string
	next  int
}

func newFakeSession() *fakeSession { return &fakeSession{slots: map[string]string{}} }

func (f *fakeSession) Bind(ctx context.Context, cartKey string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	token := fmt.Sprintf("token-%d", f.next)
	f.slots[token] = cartKey
	return token, nil
}

func (f *fakeSession) Resolve(ctx context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cartKey, ok := f.slots[token]
	if !ok {
		return "", common.ErrInvalidToken
	}
	return cartKey, nil
}

func (f *fakeSession) Rebind(ctx context.Context, token, cartKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots[token] = cartKey
	return nil
}

type fakeFiles struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeFiles() *fakeFiles { return &fakeFiles{objects: map[string][]byte{}} }

func (f *fakeFiles) Put(ctx context.Context, prefix, contentType string, data []byte) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fmt.Sprintf("%s/%d", prefix, len(f.objects)+1)
	f.objects[key] = data
	return key, nil
}

func (f *fakeFiles) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return data, nil
}

func (f *fakeFiles) Delete(ctx context.Context, key string) error { return nil }

// --- outbound client fakes ---

type fakeCatalogue struct {
	items      map[string]*models.CatalogueItem
	published  []*models.CatalogueItem
	findErr    error
	publishErr error
}

func newFakeCatalogue() *fakeCatalogue {
	return &fakeCatalogue{items: map[string]*models.CatalogueItem{}}
}

func (f *fakeCatalogue) FindAll(ctx context.Context, query string, pageIndex, pageSize int) (*clients.CatalogueResult, error) {
	var items []models.CatalogueItem
	for _, item := range f.items {
		items = append(items, *item)
	}
	return &clients.CatalogueResult{Items: items, TotalCount: int64(len(items))}, nil
}

func (f *fakeCatalogue) FindOne(ctx context.Context, id string) (*models.CatalogueItem, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	item, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return item, nil
}

func (f *fakeCatalogue) FindAllByID(ctx context.Context, ids []string) ([]models.CatalogueItem, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var items []models.CatalogueItem
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (f *fakeCatalogue) Publish(ctx context.Context, item *models.CatalogueItem) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, item)
	return nil
}

func (f *fakeCatalogue) DeleteAsset(ctx context.Context, id string) error {
	delete(f.items, id)
	return nil
}

type fakePayment struct {
	bankwireResult *clients.PayInResult
	cardResult     *clients.PayInResult
	payinErr       error

	createdDocs    int
	pages          [][]byte
	pageErr        error
	submittedDocs  []string
	createdDecs    int
	submittedDecs  []string
}

func (f *fakePayment) CreateBankwirePayIn(ctx context.Context, req *clients.BankwirePayInRequest) (*clients.PayInResult, error) {
	if f.payinErr != nil {
		return nil, f.payinErr
	}
	return f.bankwireResult, nil
}

func (f *fakePayment) CreateCardDirectPayIn(ctx context.Context, req *clients.CardDirectPayInRequest) (*clients.PayInResult, error) {
	if f.payinErr != nil {
		return nil, f.payinErr
	}
	return f.cardResult, nil
}

func (f *fakePayment) CreateKycDocument(ctx context.Context, customerKey string) (string, error) {
	f.createdDocs++
	return fmt.Sprintf("provider-doc-%d", f.createdDocs), nil
}

func (f *fakePayment) AddKycPage(ctx context.Context, providerDocID string, page []byte) error {
	if f.pageErr != nil {
		return f.pageErr
	}
	f.pages = append(f.pages, page)
	return nil
}

func (f *fakePayment) SubmitKycDocument(ctx context.Context, providerDocID string) error {
	f.submittedDocs = append(f.submittedDocs, providerDocID)
	return nil
}

func (f *fakePayment) CreateUboDeclaration(ctx context.Context, customerKey string) (string, error) {
	f.createdDecs++
	return fmt.Sprintf("provider-dec-%d", f.createdDecs), nil
}

func (f *fakePayment) SubmitUboDeclaration(ctx context.Context, providerDecID string, ubos []models.Ubo) error {
	f.submittedDecs = append(f.submittedDecs, providerDecID)
	return nil
}

// --- repository fakes ---

type fakeDraftsRepo struct {
	mu     sync.Mutex
	drafts map[uuid.UUID]*models.AssetDraft
}

func newFakeDraftsRepo() *fakeDraftsRepo {
	return &fakeDraftsRepo{drafts: map[uuid.UUID]*models.AssetDraft{}}
}

func (f *fakeDraftsRepo) Create(ctx context.Context, draft *models.AssetDraft) (*models.AssetDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *draft
	f.drafts[draft.Key] = &cp
	return draft, nil
}

func (f *fakeDraftsRepo) Update(ctx context.Context, draft *models.AssetDraft) (*models.AssetDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.drafts[draft.Key]
	if !ok || stored.PublisherKey != draft.PublisherKey || stored.DeletedAt != nil {
		return nil, common.ErrorNotFound
	}
	cp := *draft
	f.drafts[draft.Key] = &cp
	return draft, nil
}

func (f *fakeDraftsRepo) UpdateStatus(ctx context.Context, publisherKey, draftKey uuid.UUID,
	expected []models.DraftStatus, next models.DraftStatus, rejectionReason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.drafts[draftKey]
	if !ok || stored.PublisherKey != publisherKey || stored.DeletedAt != nil {
		return common.ErrorNotFound
	}
	for _, s := range expected {
		if stored.Status == s {
			stored.Status = next
			stored.RejectionReason = rejectionReason
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeDraftsRepo) FindOne(ctx context.Context, publisherKey, draftKey uuid.UUID) (*models.AssetDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.drafts[draftKey]
	if !ok || stored.PublisherKey != publisherKey || stored.DeletedAt != nil {
		return nil, common.ErrorNotFound
	}
	cp := *stored
	return &cp, nil
}

func (f *fakeDraftsRepo) FindAll(ctx context.Context, publisherKey uuid.UUID, q draftsrepo.Query) ([]*models.AssetDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.AssetDraft
	for _, d := range f.drafts {
		if d.PublisherKey == publisherKey && d.DeletedAt == nil {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeDraftsRepo) FindAllPending(ctx context.Context, status models.DraftStatus, offset, limit int) ([]*models.AssetDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.AssetDraft
	for _, d := range f.drafts {
		if d.Status == status && d.DeletedAt == nil {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeDraftsRepo) SoftDelete(ctx context.Context, publisherKey, draftKey uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.drafts[draftKey]
	if !ok || stored.PublisherKey != publisherKey || stored.DeletedAt != nil {
		return common.ErrorNotFound
	}
	now := stored.CreatedAt
	stored.DeletedAt = &now
	return nil
}

func (f *fakeDraftsRepo) AddResource(ctx context.Context, resource *models.AssetResource) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.drafts[resource.DraftKey]
	if !ok {
		return common.ErrorNotFound
	}
	stored.Resources = append(stored.Resources, *resource)
	return nil
}

func (f *fakeDraftsRepo) FindResources(ctx context.Context, draftKey uuid.UUID) ([]models.AssetResource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.drafts[draftKey]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return stored.Resources, nil
}

func (f *fakeDraftsRepo) FindResource(ctx context.Context, draftKey, resourceKey uuid.UUID) (*models.AssetResource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.drafts[draftKey]
	if !ok {
		return nil, common.ErrorNotFound
	}
	for i := range stored.Resources {
		if stored.Resources[i].Key == resourceKey {
			return &stored.Resources[i], nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeCartsRepo struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*models.Cart
}

func newFakeCartsRepo() *fakeCartsRepo {
	return &fakeCartsRepo{carts: map[uuid.UUID]*models.Cart{}}
}

func (f *fakeCartsRepo) Create(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *cart
	f.carts[cart.Key] = &cp
	return cart, nil
}

func (f *fakeCartsRepo) FindOne(ctx context.Context, cartKey uuid.UUID) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.carts[cartKey]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *stored
	cp.Items = append([]models.CartItem(nil), stored.Items...)
	return &cp, nil
}

func (f *fakeCartsRepo) SetAccount(ctx context.Context, cartKey, accountKey uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.carts[cartKey]
	if !ok {
		return common.ErrorNotFound
	}
	if stored.AccountKey == nil {
		stored.AccountKey = &accountKey
	}
	return nil
}

func (f *fakeCartsRepo) MarkCheckedOut(ctx context.Context, cartKey uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.carts[cartKey]
	if !ok || stored.Status != models.CartStatusOpen {
		return common.ErrorNotFound
	}
	stored.Status = models.CartStatusCheckedOut
	return nil
}

func (f *fakeCartsRepo) AddItem(ctx context.Context, item *models.CartItem, cartKey uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.carts[cartKey]
	if !ok {
		return common.ErrorNotFound
	}
	stored.Items = append(stored.Items, *item)
	return nil
}

func (f *fakeCartsRepo) RemoveItem(ctx context.Context, cartKey, itemKey uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.carts[cartKey]
	if !ok {
		return common.ErrorNotFound
	}
	for i := range stored.Items {
		if stored.Items[i].Key == itemKey {
			stored.Items = append(stored.Items[:i], stored.Items[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeCartsRepo) ClearItems(ctx context.Context, cartKey uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.carts[cartKey]
	if !ok {
		return common.ErrorNotFound
	}
	stored.Items = nil
	return nil
}

type fakeOrdersRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*models.Order
	byCart map[uuid.UUID]bool
}

func newFakeOrdersRepo() *fakeOrdersRepo {
	return &fakeOrdersRepo{orders: map[uuid.UUID]*models.Order{}, byCart: map[uuid.UUID]bool{}}
}

func (f *fakeOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.byCart[order.CartKey] {
		return nil, fmt.Errorf("duplicate key value violates unique constraint %q", "idx_orders_cart")
	}
	cp := *order
	f.orders[order.Key] = &cp
	f.byCart[order.CartKey] = true
	return order, nil
}

func (f *fakeOrdersRepo) FindOne(ctx context.Context, accountKey, orderKey uuid.UUID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.orders[orderKey]
	if !ok || stored.AccountKey != accountKey {
		return nil, common.ErrorNotFound
	}
	cp := *stored
	return &cp, nil
}

func (f *fakeOrdersRepo) FindAll(ctx context.Context, accountKey uuid.UUID, offset, limit int) ([]*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Order
	for _, o := range f.orders {
		if o.AccountKey == accountKey {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeOrdersRepo) UpdateStatus(ctx context.Context, orderKey uuid.UUID, status models.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.orders[orderKey]
	if !ok {
		return common.ErrorNotFound
	}
	stored.Status = status
	return nil
}

type fakePayinsRepo struct {
	mu     sync.Mutex
	payins map[uuid.UUID]*models.PayIn
}

func newFakePayinsRepo() *fakePayinsRepo {
	return &fakePayinsRepo{payins: map[uuid.UUID]*models.PayIn{}}
}

func (f *fakePayinsRepo) Create(ctx context.Context, payin *models.PayIn) (*models.PayIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *payin
	f.payins[payin.Key] = &cp
	return payin, nil
}

func (f *fakePayinsRepo) FindOne(ctx context.Context, accountKey, payinKey uuid.UUID) (*models.PayIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.payins[payinKey]
	if !ok || stored.AccountKey != accountKey {
		return nil, common.ErrorNotFound
	}
	cp := *stored
	return &cp, nil
}

func (f *fakePayinsRepo) FindAll(ctx context.Context, accountKey uuid.UUID, offset, limit int) ([]*models.PayIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.PayIn
	for _, p := range f.payins {
		if p.AccountKey == accountKey {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeKycRepo struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*models.KycDocument
	decs map[uuid.UUID]*models.UboDeclaration
}

func newFakeKycRepo() *fakeKycRepo {
	return &fakeKycRepo{
		docs: map[uuid.UUID]*models.KycDocument{},
		decs: map[uuid.UUID]*models.UboDeclaration{},
	}
}

func (f *fakeKycRepo) CreateDocument(ctx context.Context, doc *models.KycDocument) (*models.KycDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *doc
	f.docs[doc.Key] = &cp
	return doc, nil
}

func (f *fakeKycRepo) FindOneDocument(ctx context.Context, customerKey, docKey uuid.UUID) (*models.KycDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.docs[docKey]
	if !ok || stored.CustomerKey != customerKey {
		return nil, common.ErrorNotFound
	}
	cp := *stored
	return &cp, nil
}

func (f *fakeKycRepo) FindAllDocuments(ctx context.Context, customerKey uuid.UUID, customerType models.CustomerType, offset, limit int) ([]*models.KycDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.KycDocument
	for _, d := range f.docs {
		if d.CustomerKey == customerKey && d.CustomerType == customerType {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeKycRepo) UpdateDocumentStatus(ctx context.Context, customerKey, docKey uuid.UUID, expected []models.KycStatus, next models.KycStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.docs[docKey]
	if !ok || stored.CustomerKey != customerKey {
		return common.ErrorNotFound
	}
	for _, s := range expected {
		if stored.Status == s {
			stored.Status = next
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeKycRepo) IncrementPageCount(ctx context.Context, docKey uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.docs[docKey]
	if !ok {
		return common.ErrorNotFound
	}
	stored.PageCount++
	return nil
}

func (f *fakeKycRepo) CreateDeclaration(ctx context.Context, dec *models.UboDeclaration) (*models.UboDeclaration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *dec
	f.decs[dec.Key] = &cp
	return dec, nil
}

func (f *fakeKycRepo) FindOneDeclaration(ctx context.Context, customerKey, decKey uuid.UUID) (*models.UboDeclaration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.decs[decKey]
	if !ok || stored.CustomerKey != customerKey {
		return nil, common.ErrorNotFound
	}
	cp := *stored
	cp.Ubos = append([]models.Ubo(nil), stored.Ubos...)
	return &cp, nil
}

func (f *fakeKycRepo) FindAllDeclarations(ctx context.Context, customerKey uuid.UUID, offset, limit int) ([]*models.UboDeclaration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.UboDeclaration
	for _, d := range f.decs {
		if d.CustomerKey == customerKey {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeKycRepo) UpdateDeclarationStatus(ctx context.Context, customerKey, decKey uuid.UUID, expected []models.KycStatus, next models.KycStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.decs[decKey]
	if !ok || stored.CustomerKey != customerKey {
		return common.ErrorNotFound
	}
	for _, s := range expected {
		if stored.Status == s {
			stored.Status = next
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeKycRepo) AddUbo(ctx context.Context, decKey uuid.UUID, ubo *models.Ubo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.decs[decKey]
	if !ok {
		return common.ErrorNotFound
	}
	stored.Ubos = append(stored.Ubos, *ubo)
	return nil
}

type fakeContractsRepo struct {
	mu        sync.Mutex
	masters   map[uuid.UUID]*models.MasterContract
	templates map[uuid.UUID]*models.ContractTemplate
}

func newFakeContractsRepo() *fakeContractsRepo {
	return &fakeContractsRepo{
		masters:   map[uuid.UUID]*models.MasterContract{},
		templates: map[uuid.UUID]*models.ContractTemplate{},
	}
}

func (f *fakeContractsRepo) FindOneMaster(ctx context.Context, key uuid.UUID) (*models.MasterContract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.masters[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *stored
	return &cp, nil
}

func (f *fakeContractsRepo) FindAllMasters(ctx context.Context, activeOnly bool, offset, limit int) ([]*models.MasterContract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.MasterContract
	for _, m := range f.masters {
		if !activeOnly || m.Active {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeContractsRepo) CreateTemplate(ctx context.Context, tpl *models.ContractTemplate) (*models.ContractTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *tpl
	f.templates[tpl.Key] = &cp
	return tpl, nil
}

func (f *fakeContractsRepo) UpdateTemplate(ctx context.Context, tpl *models.ContractTemplate) (*models.ContractTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.templates[tpl.Key]
	if !ok || stored.ProviderKey != tpl.ProviderKey || stored.Status != models.ContractStatusDraft {
		return nil, common.ErrorNotFound
	}
	cp := *tpl
	f.templates[tpl.Key] = &cp
	return tpl, nil
}

func (f *fakeContractsRepo) FindOneTemplate(ctx context.Context, providerKey, key uuid.UUID) (*models.ContractTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.templates[key]
	if !ok || stored.ProviderKey != providerKey {
		return nil, common.ErrorNotFound
	}
	cp := *stored
	return &cp, nil
}

func (f *fakeContractsRepo) FindAllTemplates(ctx context.Context, providerKey uuid.UUID, statuses []models.ContractStatus, offset, limit int) ([]*models.ContractTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ContractTemplate
	for _, t := range f.templates {
		if t.ProviderKey != providerKey {
			continue
		}
		if len(statuses) > 0 {
			match := false
			for _, s := range statuses {
				if t.Status == s {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeContractsRepo) Deactivate(ctx context.Context, providerKey, key uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.templates[key]
	if !ok || stored.ProviderKey != providerKey || stored.Status != models.ContractStatusActive {
		return common.ErrorNotFound
	}
	stored.Status = models.ContractStatusInactive
	return nil
}

func (f *fakeContractsRepo) DeactivateActive(ctx context.Context, providerKey uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.templates {
		if t.ProviderKey == providerKey && t.Status == models.ContractStatusActive {
			t.Status = models.ContractStatusInactive
		}
	}
	return nil
}

func (f *fakeContractsRepo) Publish(ctx context.Context, providerKey, key uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.templates[key]
	if !ok || stored.ProviderKey != providerKey || stored.Status != models.ContractStatusDraft {
		return common.ErrorNotFound
	}
	stored.Status = models.ContractStatusActive
	return nil
}

func (f *fakeContractsRepo) DeleteDraft(ctx context.Context, providerKey, key uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.templates[key]
	if !ok || stored.ProviderKey != providerKey || stored.Status != models.ContractStatusDraft {
		return common.ErrorNotFound
	}
	delete(f.templates, key)
	return nil
}

type fakeAccountsRepo struct {
	mu        sync.Mutex
	byEmail   map[string]*models.Account
	byKey     map[uuid.UUID]*models.Account
	createErr error
}

func newFakeAccountsRepo() *fakeAccountsRepo {
	return &fakeAccountsRepo{
		byEmail: map[string]*models.Account{},
		byKey:   map[uuid.UUID]*models.Account{},
	}
}

func (f *fakeAccountsRepo) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[account.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	cp := *account
	f.byEmail[account.Email] = &cp
	f.byKey[account.Key] = &cp
	return account, nil
}

func (f *fakeAccountsRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *stored
	return &cp, nil
}

func (f *fakeAccountsRepo) GetByKey(ctx context.Context, key uuid.UUID) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byKey[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *stored
	return &cp, nil
}

// --- repository manager fake ---

type fakeRepoManager struct {
	accounts  *fakeAccountsRepo
	drafts    *fakeDraftsRepo
	carts     *fakeCartsRepo
	orders    *fakeOrdersRepo
	payins    *fakePayinsRepo
	kyc       *fakeKycRepo
	contracts *fakeContractsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		accounts:  newFakeAccountsRepo(),
		drafts:    newFakeDraftsRepo(),
		carts:     newFakeCartsRepo(),
		orders:    newFakeOrdersRepo(),
		payins:    newFakePayinsRepo(),
		kyc:       newFakeKycRepo(),
		contracts: newFakeContractsRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Accounts(db dbx.DBTX) accountsrepo.Repository   { return m.accounts }
func (m *fakeRepoManager) Drafts(db dbx.DBTX) draftsrepo.Repository       { return m.drafts }
func (m *fakeRepoManager) Carts(db dbx.DBTX) cartsrepo.Repository         { return m.carts }
func (m *fakeRepoManager) Orders(db dbx.DBTX) ordersrepo.Repository       { return m.orders }
func (m *fakeRepoManager) PayIns(db dbx.DBTX) payinsrepo.Repository       { return m.payins }
func (m *fakeRepoManager) Kyc(db dbx.DBTX) kycrepo.Repository             { return m.kyc }
func (m *fakeRepoManager) Contracts(db dbx.DBTX) contractsrepo.Repository { return m.contracts }
