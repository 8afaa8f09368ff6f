// Package payment integrates the external mobile-money payment-link
// provider. The provider takes a multipart form describing the purchase
// and returns a hosted payment link; the buyer's browser is sent to the
// provider's checkout page with the link base64-encoded in the query
// string, and comes back to us on the success or failure callback URL.
package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/papersbook/storefront/internal/config"
)

const defaultTimeout = 30 * time.Second

// Client talks to the payment-link provider.
type Client struct {
	httpClient *http.Client
	cfg        config.Payment
}

// NewClient creates a new payment provider client.
func NewClient(cfg config.Payment) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		cfg:        cfg,
	}
}

// LinkRequest describes one purchase to create a payment link for.
type LinkRequest struct {
	AmountCents int64
	ProductCode string // Stable identifier echoed back by the provider
	ProductName string
	ImageURL    string
	SuccessURL  string // Where the provider sends the browser on success
	FailureURL  string
}

// linkResponse is the provider's JSON envelope.
type linkResponse struct {
	Body struct {
		PaymentLink string `json:"lien_paiement"`
	} `json:"body"`
}

// CreateLink asks the provider for a payment link and returns the URL of
// the hosted checkout page the browser should be redirected to.
func (c *Client) CreateLink(ctx context.Context, req LinkRequest) (string, error) {
	if req.AmountCents%100 != 0 {
		return "", fmt.Errorf("%w: %d cents", ErrFractionalAmount, req.AmountCents)
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	fields := map[string]string{
		"email":        c.cfg.MerchantEmail,
		"token_app":    c.cfg.AppToken,
		"montant":      strconv.FormatInt(req.AmountCents/100, 10),
		"image_link":   req.ImageURL,
		"description":  c.cfg.Description,
		"pass":         c.cfg.AppSecret,
		"success_lien": req.SuccessURL,
		"echec_lien":   req.FailureURL,
		"code_produit": req.ProductCode,
		"nom_produit":  req.ProductName,
	}
	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return "", fmt.Errorf("failed to build form: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("failed to build form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("payment provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &ProviderError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	// The provider sometimes answers with a raw HTML error page and a 200
	// status. Only a JSON envelope with a payment link counts as success.
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		return "", ErrUnexpectedResponse
	}

	var decoded linkResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	if decoded.Body.PaymentLink == "" {
		return "", ErrUnexpectedResponse
	}

	return c.checkoutURL(decoded.Body.PaymentLink), nil
}

// checkoutURL wraps a raw payment link into the hosted checkout page URL,
// base64-encoding the link as the provider's SDK expects.
func (c *Client) checkoutURL(paymentLink string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(paymentLink))
	return c.cfg.CheckoutBaseURL + "?d=" + url.QueryEscape(encoded)
}
