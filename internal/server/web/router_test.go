package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geotrade/marketplace/internal/common"
	"github.com/geotrade/marketplace/internal/logging"
	"github.com/geotrade/marketplace/internal/msg"
	"github.com/geotrade/marketplace/internal/server/auth"
	"github.com/geotrade/marketplace/internal/server/models"
	"github.com/geotrade/marketplace/internal/server/repositories/drafts"
)

var testSecret = []byte("test-secret")

type testEnv struct {
	accounts     *stubAccounts
	carts        *stubCarts
	checkout     *stubCheckout
	drafts       *stubDrafts
	verification *stubVerification
	server       *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		accounts:     &stubAccounts{},
		carts:        &stubCarts{},
		checkout:     &stubCheckout{},
		drafts:       &stubDrafts{},
		verification: &stubVerification{},
	}

	h := NewHandler(env.accounts, env.carts, env.checkout, nil, env.drafts,
		env.verification, nil, nil, nil, nil, logging.NewNop())
	env.server = httptest.NewServer(NewRouter(h, testSecret))
	t.Cleanup(env.server.Close)

	return env
}

func bearerToken(t *testing.T, roles ...auth.Role) (string, uuid.UUID) {
	t.Helper()
	key := uuid.New()
	token, err := auth.GenerateToken(key.String(), key.String(), "user@example.com",
		roles, testSecret, time.Minute)
	require.NoError(t, err)
	return token, key
}

func doRequest(t *testing.T, method, url, token string, body any, headers map[string]string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func TestBusinessErrorKeepsHTTP200(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.login = func(context.Context, string, string) (string, error) {
		return "", msg.New(msg.CodeInvalidCredentials, "Invalid e-mail or password")
	}

	resp := doRequest(t, http.MethodPost, env.server.URL+"/api/v1/accounts/login", "",
		credentialsRequest{Email: "a@b.c", Password: "whatever"}, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeEnvelope(t, resp)
	assert.False(t, body.Success)
	require.Len(t, body.Messages, 1)
	assert.Equal(t, msg.CodeInvalidCredentials, body.Messages[0].Code)
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	env := newTestEnv(t)

	resp := doRequest(t, http.MethodPost, env.server.URL+"/api/v1/checkout", "", nil, nil)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, decodeEnvelope(t, resp).Success)
}

func TestExpiredTokenIsUnauthorized(t *testing.T) {
	env := newTestEnv(t)

	key := uuid.New()
	token, err := auth.GenerateToken(key.String(), key.String(), "user@example.com",
		[]auth.Role{auth.RoleConsumer}, testSecret, -time.Minute)
	require.NoError(t, err)

	resp := doRequest(t, http.MethodPost, env.server.URL+"/api/v1/checkout", token, nil, nil)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoleChokepoint(t *testing.T) {
	env := newTestEnv(t)
	env.drafts.list = func(context.Context, uuid.UUID, drafts.Query) ([]*models.AssetDraft, error) {
		return nil, nil
	}

	consumerToken, _ := bearerToken(t, auth.RoleUser, auth.RoleConsumer)
	providerToken, _ := bearerToken(t, auth.RoleUser, auth.RoleProvider)

	resp := doRequest(t, http.MethodGet, env.server.URL+"/api/v1/drafts", consumerToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, env.server.URL+"/api/v1/drafts", providerToken, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestKycCustomerTypeMustMatchRole(t *testing.T) {
	env := newTestEnv(t)

	var served int
	env.verification.createDocument = func(_ context.Context, key uuid.UUID, ct models.CustomerType) (*models.KycDocument, error) {
		served++
		return &models.KycDocument{Key: uuid.New(), CustomerKey: key, CustomerType: ct}, nil
	}

	consumerToken, _ := bearerToken(t, auth.RoleUser, auth.RoleConsumer)

	resp := doRequest(t, http.MethodPost,
		env.server.URL+"/api/v1/kyc/documents?type=PROVIDER", consumerToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, served)

	resp = doRequest(t, http.MethodPost,
		env.server.URL+"/api/v1/kyc/documents?type=CONSUMER", consumerToken, nil, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, served)

	providerToken, _ := bearerToken(t, auth.RoleUser, auth.RoleProvider)
	resp = doRequest(t, http.MethodPost,
		env.server.URL+"/api/v1/kyc/documents?type=PROVIDER", providerToken, nil, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 2, served)
}

func TestReadBodyRejectsOversizedUpload(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/upload",
		bytes.NewReader(bytes.Repeat([]byte("a"), 32)))
	rec := httptest.NewRecorder()

	data, ok := readBody(rec, req, 16)
	assert.False(t, ok)
	assert.Nil(t, data)

	var out envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.False(t, out.Success)
	require.Len(t, out.Messages, 2)
	assert.Equal(t, msg.CodeUploadTooLarge, out.Messages[1].Code)
	assert.Equal(t, "file", out.Messages[1].Field)

	req = httptest.NewRequest(http.MethodPost, "/upload",
		bytes.NewReader(bytes.Repeat([]byte("a"), 16)))
	data, ok = readBody(httptest.NewRecorder(), req, 16)
	assert.True(t, ok)
	assert.Len(t, data, 16)
}

func TestCartSessionHeaderRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	var seenToken string
	env.carts.resolve = func(_ context.Context, token string) (*models.Cart, string, error) {
		seenToken = token
		return &models.Cart{Key: uuid.New(), Status: models.CartStatusOpen}, "issued-token", nil
	}

	resp := doRequest(t, http.MethodGet, env.server.URL+"/api/v1/cart", "", nil,
		map[string]string{cartSessionHeader: "client-token"})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "client-token", seenToken)
	assert.Equal(t, "issued-token", resp.Header.Get(cartSessionHeader))
	assert.True(t, decodeEnvelope(t, resp).Success)
}

func TestUnknownOrderIs404(t *testing.T) {
	env := newTestEnv(t)
	env.checkout.order = func(context.Context, uuid.UUID, uuid.UUID) (*models.Order, error) {
		return nil, common.ErrorNotFound
	}

	token, _ := bearerToken(t, auth.RoleUser, auth.RoleConsumer)

	resp := doRequest(t, http.MethodGet,
		env.server.URL+"/api/v1/orders/"+uuid.NewString(), token, nil, nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body := decodeEnvelope(t, resp)
	assert.False(t, body.Success)
	require.Len(t, body.Messages, 1)
	assert.Equal(t, msg.CodeNotFound, body.Messages[0].Code)
}

func TestMalformedKeyBehavesLikeMissingRecord(t *testing.T) {
	env := newTestEnv(t)
	token, _ := bearerToken(t, auth.RoleUser, auth.RoleConsumer)

	resp := doRequest(t, http.MethodGet,
		env.server.URL+"/api/v1/orders/not-a-uuid", token, nil, nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCheckoutUsesTokenIdentity(t *testing.T) {
	env := newTestEnv(t)

	var seenAccount uuid.UUID
	env.checkout.checkout = func(_ context.Context, _ string, accountKey uuid.UUID) (*models.Order, error) {
		seenAccount = accountKey
		return &models.Order{Key: uuid.New()}, nil
	}

	token, accountKey := bearerToken(t, auth.RoleUser, auth.RoleConsumer)

	resp := doRequest(t, http.MethodPost, env.server.URL+"/api/v1/checkout", token, nil,
		map[string]string{cartSessionHeader: "cart-token"})

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, accountKey, seenAccount)
}

func TestRegisterValidatesInput(t *testing.T) {
	env := newTestEnv(t)

	resp := doRequest(t, http.MethodPost, env.server.URL+"/api/v1/accounts/register", "",
		credentialsRequest{Email: "", Password: "short"}, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeEnvelope(t, resp)
	assert.False(t, body.Success)

	fields := map[string]bool{}
	for _, m := range body.Messages {
		if m.Field != "" {
			fields[m.Field] = true
		}
	}
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
}
