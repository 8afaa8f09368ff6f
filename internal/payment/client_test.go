package payment

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papersbook/storefront/internal/config"
)

func testClient(endpoint string) *Client {
	return NewClient(config.Payment{
		Endpoint:        endpoint,
		CheckoutBaseURL: "https://checkout.example.com/flash_checkout.html",
		MerchantEmail:   "merchant@example.com",
		AppToken:        "token-123",
		AppSecret:       "secret-456",
		Description:     "Book purchase",
		Timeout:         2 * time.Second,
	})
}

func testLinkRequest() LinkRequest {
	return LinkRequest{
		AmountCents: 150000,
		ProductCode: "book-7",
		ProductName: "The Harmattan Letters",
		ImageURL:    "https://img.example.com/cover.jpg",
		SuccessURL:  "https://store.example.com/success?saleId=7",
		FailureURL:  "https://store.example.com/echec?saleId=7",
	}
}

func TestCreateLink_Success(t *testing.T) {
	var gotForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotForm = url.Values(r.MultipartForm.Value)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"body":{"lien_paiement":"https://pay.example.com/l/abc123"}}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	checkoutURL, err := client.CreateLink(context.Background(), testLinkRequest())
	require.NoError(t, err)

	// Amount is sent in whole currency units
	assert.Equal(t, "1500", gotForm.Get("montant"))
	assert.Equal(t, "merchant@example.com", gotForm.Get("email"))
	assert.Equal(t, "token-123", gotForm.Get("token_app"))
	assert.Equal(t, "secret-456", gotForm.Get("pass"))
	assert.Equal(t, "book-7", gotForm.Get("code_produit"))
	assert.Equal(t, "The Harmattan Letters", gotForm.Get("nom_produit"))
	assert.Equal(t, "https://store.example.com/success?saleId=7", gotForm.Get("success_lien"))
	assert.Equal(t, "https://store.example.com/echec?saleId=7", gotForm.Get("echec_lien"))

	// Checkout URL carries the base64-encoded payment link
	encoded := base64.StdEncoding.EncodeToString([]byte("https://pay.example.com/l/abc123"))
	assert.Equal(t, "https://checkout.example.com/flash_checkout.html?d="+url.QueryEscape(encoded), checkoutURL)
}

func TestCreateLink_FractionalAmountRejected(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := testClient(server.URL)
	req := testLinkRequest()
	req.AmountCents = 1050

	_, err := client.CreateLink(context.Background(), req)
	assert.ErrorIs(t, err, ErrFractionalAmount)
	assert.False(t, called, "provider should not be called for a fractional amount")
}

func TestCreateLink_HTMLResponseRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>Something broke</body></html>"))
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.CreateLink(context.Background(), testLinkRequest())
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestCreateLink_EmptyLinkRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"body":{}}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.CreateLink(context.Background(), testLinkRequest())
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestCreateLink_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.CreateLink(context.Background(), testLinkRequest())

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusBadGateway, provErr.StatusCode)
	assert.Contains(t, provErr.Body, "upstream unavailable")
}

func TestCreateLink_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := testClient(server.URL)
	_, err := client.CreateLink(ctx, testLinkRequest())
	assert.Error(t, err)
}
