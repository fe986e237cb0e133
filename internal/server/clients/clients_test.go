package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geotrade/marketplace/internal/msg"
)

func TestGetJSON_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"id":"a1","title":"Roads"}`))
	}))
	defer srv.Close()

	c := NewCatalogueClient(srv.URL, time.Second)

	item, err := c.FindOne(context.Background(), "a1")
	require.NoError(t, err)

	assert.Equal(t, "Roads", item.Title)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetJSON_DoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewCatalogueClient(srv.URL, time.Second)

	_, err := c.FindOne(context.Background(), "missing")
	require.Error(t, err)

	assert.True(t, IsNotFound(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestRatingsClient_TranslatesUpstreamErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewRatingsClient(srv.URL, time.Second)

	_, err := c.AssetRatings(context.Background(), "missing")
	require.Error(t, err)

	var me *msg.Error
	require.ErrorAs(t, err, &me)
	assert.Equal(t, msg.CodeRatingsService, me.Code)
}

func TestPaymentClient_CardDirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payins/card-direct", r.URL.Path)
		w.Write([]byte(`{"providerId":"p-1","status":"CREATED","secureModeRedirectUrl":"https://3ds"}`))
	}))
	defer srv.Close()

	c := NewPaymentClient(srv.URL, time.Second)

	result, err := c.CreateCardDirectPayIn(context.Background(), &CardDirectPayInRequest{CardID: "c1"})
	require.NoError(t, err)

	assert.Equal(t, "p-1", result.ProviderID)
	assert.Equal(t, "https://3ds", result.SecureModeRedirectURL)
	assert.Nil(t, result.ExecutedOn)
}
