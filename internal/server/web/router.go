package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/geotrade/marketplace/internal/server/auth"
)

// NewRouter builds the public route table. All role requirements are
// declared here; handlers never check roles themselves.
func NewRouter(h *Handler, secretKey []byte) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	authenticated := Authenticator(secretKey)
	consumer := RequireRole(auth.RoleConsumer)
	provider := RequireRole(auth.RoleProvider)
	helpdesk := RequireRole(auth.RoleHelpdesk)

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints.
		r.Post("/accounts/register", h.register)
		r.Post("/accounts/login", h.login)

		r.Get("/catalogue", h.searchCatalogue)
		r.Get("/catalogue/{assetID}", h.getCatalogueItem)
		r.Get("/ratings/assets/{assetID}", h.getAssetRatings)
		r.Get("/ratings/providers/{providerKey}", h.getProviderRatings)

		// Anonymous carts ride on the signed session header.
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.getCart)
			r.Delete("/", h.clearCart)
			r.Post("/items", h.addCartItem)
			r.Delete("/items/{itemKey}", h.removeCartItem)
		})

		// Authenticated endpoints.
		r.Group(func(r chi.Router) {
			r.Use(authenticated)

			r.Get("/accounts/profile", h.profile)

			r.With(consumer).Post("/ratings/assets/{assetID}", h.rateAsset)
			r.With(consumer).Post("/ratings/providers/{providerKey}", h.rateProvider)

			r.Group(func(r chi.Router) {
				r.Use(consumer)

				r.Post("/checkout", h.doCheckout)
				r.Get("/orders", h.listOrders)
				r.Get("/orders/{orderKey}", h.getOrder)
				r.Post("/orders/{orderKey}/payins/bankwire", h.createBankwirePayIn)
				r.Post("/orders/{orderKey}/payins/card-direct", h.createCardPayIn)
				r.Get("/payins", h.listPayIns)
				r.Get("/payins/{payinKey}", h.getPayIn)

				r.Post("/notebooks", h.startNotebook)
				r.Delete("/notebooks", h.stopNotebook)
				r.Get("/notebooks", h.notebookStatus)
			})

			// Customer verification is scoped to the token's subject; the
			// selected customer type must also be a granted role.
			r.Route("/kyc", func(r chi.Router) {
				r.With(RequireCustomerTypeRole).Post("/documents", h.createKycDocument)
				r.With(RequireCustomerTypeRole).Get("/documents", h.listKycDocuments)
				r.Get("/documents/{docKey}", h.getKycDocument)
				r.Post("/documents/{docKey}/pages", h.addKycPage)
				r.Post("/documents/{docKey}/submit", h.submitKycDocument)

				r.With(provider).Post("/declarations", h.createUboDeclaration)
				r.With(provider).Get("/declarations", h.listUboDeclarations)
				r.With(provider).Get("/declarations/{decKey}", h.getUboDeclaration)
				r.With(provider).Post("/declarations/{decKey}/ubos", h.addUbo)
				r.With(provider).Post("/declarations/{decKey}/submit", h.submitUboDeclaration)
			})

			r.Route("/drafts", func(r chi.Router) {
				r.Use(provider)

				r.Post("/", h.createDraft)
				r.Get("/", h.listDrafts)
				r.Post("/import", h.importDraft)
				r.Get("/{draftKey}", h.getDraft)
				r.Put("/{draftKey}", h.updateDraft)
				r.Delete("/{draftKey}", h.deleteDraft)
				r.Post("/{draftKey}/submit", h.submitDraft)
				r.Post("/{draftKey}/lock", h.lockDraft)
				r.Delete("/{draftKey}/lock", h.releaseDraftLock)
				r.Post("/{draftKey}/resources", h.uploadDraftResource)
				r.Get("/{draftKey}/resources/{resourceKey}", h.downloadDraftResource)
				r.Post("/{draftKey}/review/accept", h.acceptDraftProvider)
				r.Post("/{draftKey}/review/reject", h.rejectDraftProvider)
			})

			r.Route("/contracts", func(r chi.Router) {
				r.Get("/masters", h.listMasterContracts)

				r.Group(func(r chi.Router) {
					r.Use(provider)

					r.Post("/templates", h.createContractTemplate)
					r.Get("/templates", h.listContractTemplates)
					r.Get("/templates/{templateKey}", h.getContractTemplate)
					r.Put("/templates/{templateKey}", h.updateContractTemplate)
					r.Delete("/templates/{templateKey}", h.deleteContractTemplate)
					r.Post("/templates/{templateKey}/publish", h.publishContractTemplate)
					r.Post("/templates/{templateKey}/deactivate", h.deactivateContractTemplate)
					r.Post("/templates/{templateKey}/clone", h.cloneContractTemplate)
				})
			})

			r.Route("/helpdesk", func(r chi.Router) {
				r.Use(helpdesk)

				r.Get("/drafts", h.listHelpdeskDrafts)
				r.Post("/drafts/{publisherKey}/{draftKey}/accept", h.acceptDraftHelpdesk)
				r.Post("/drafts/{publisherKey}/{draftKey}/reject", h.rejectDraftHelpdesk)
				r.Delete("/assets/{assetID}", h.deleteCatalogueAsset)
			})
		})
	})

	return r
}
