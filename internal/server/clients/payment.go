package clients

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/geotrade/marketplace/internal/server/models"
)

// PaymentClient talks to the payment provider. It covers pay-in creation and
// the provider side of customer verification (KYC documents and UBO
// declarations).
type PaymentClient interface {
	CreateBankwirePayIn(ctx context.Context, req *BankwirePayInRequest) (*PayInResult, error)
	CreateCardDirectPayIn(ctx context.Context, req *CardDirectPayInRequest) (*PayInResult, error)

	CreateKycDocument(ctx context.Context, customerKey string) (string, error)
	AddKycPage(ctx context.Context, providerDocID string, page []byte) error
	SubmitKycDocument(ctx context.Context, providerDocID string) error

	CreateUboDeclaration(ctx context.Context, customerKey string) (string, error)
	SubmitUboDeclaration(ctx context.Context, providerDecID string, ubos []models.Ubo) error
}

type BankwirePayInRequest struct {
	ReferenceKey string          `json:"referenceKey"`
	CustomerKey  string          `json:"customerKey"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
}

type CardDirectPayInRequest struct {
	ReferenceKey string          `json:"referenceKey"`
	CustomerKey  string          `json:"customerKey"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	CardID       string          `json:"cardId"`
	ReturnURL    string          `json:"returnUrl"`
}

// PayInResult is the provider's view of a created transaction. A card
// payment that needs 3-D-Secure validation carries the redirect URL and no
// execution timestamp.
type PayInResult struct {
	ProviderID            string                   `json:"providerId"`
	Status                models.TransactionStatus `json:"status"`
	WireReference         string                   `json:"wireReference,omitempty"`
	SecureModeRedirectURL string                   `json:"secureModeRedirectUrl,omitempty"`
	ExecutedOn            *time.Time               `json:"executedOn,omitempty"`
	ResultMessage         string                   `json:"resultMessage,omitempty"`
}

type paymentClient struct {
	httpClient
}

func NewPaymentClient(baseURL string, timeout time.Duration) PaymentClient {
	return &paymentClient{newHTTPClient("payment", baseURL, timeout)}
}

func (c *paymentClient) CreateBankwirePayIn(ctx context.Context, req *BankwirePayInRequest) (*PayInResult, error) {
	var result PayInResult
	if err := c.postJSON(ctx, "/payins/bankwire", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *paymentClient) CreateCardDirectPayIn(ctx context.Context, req *CardDirectPayInRequest) (*PayInResult, error) {
	var result PayInResult
	if err := c.postJSON(ctx, "/payins/card-direct", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type createDocumentRequest struct {
	CustomerKey string `json:"customerKey"`
}

type createDocumentResponse struct {
	ID string `json:"id"`
}

func (c *paymentClient) CreateKycDocument(ctx context.Context, customerKey string) (string, error) {
	var resp createDocumentResponse
	err := c.postJSON(ctx, "/kyc/documents", &createDocumentRequest{CustomerKey: customerKey}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

type addPageRequest struct {
	// Page content, base64-encoded by encoding/json.
	File []byte `json:"file"`
}

func (c *paymentClient) AddKycPage(ctx context.Context, providerDocID string, page []byte) error {
	return c.postJSON(ctx, "/kyc/documents/"+providerDocID+"/pages", &addPageRequest{File: page}, nil)
}

func (c *paymentClient) SubmitKycDocument(ctx context.Context, providerDocID string) error {
	return c.postJSON(ctx, "/kyc/documents/"+providerDocID+"/submit", nil, nil)
}

func (c *paymentClient) CreateUboDeclaration(ctx context.Context, customerKey string) (string, error) {
	var resp createDocumentResponse
	err := c.postJSON(ctx, "/kyc/ubo-declarations", &createDocumentRequest{CustomerKey: customerKey}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

type submitUboDeclarationRequest struct {
	Ubos []uboPayload `json:"ubos"`
}

type uboPayload struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Birthday    string `json:"birthday"`
	Nationality string `json:"nationality"`
	Address     string `json:"address"`
}

func (c *paymentClient) SubmitUboDeclaration(ctx context.Context, providerDecID string, ubos []models.Ubo) error {
	req := submitUboDeclarationRequest{Ubos: make([]uboPayload, 0, len(ubos))}
	for _, u := range ubos {
		req.Ubos = append(req.Ubos, uboPayload{
			FirstName:   u.FirstName,
			LastName:    u.LastName,
			Birthday:    u.Birthday.Format("2006-01-02"),
			Nationality: u.Nationality,
			Address:     u.Address,
		})
	}
	return c.postJSON(ctx, "/kyc/ubo-declarations/"+providerDecID+"/submit", &req, nil)
}
