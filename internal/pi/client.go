// Package pi implements a client for the Pi Network platform REST API.
// Server-side keys authorize payment endpoints; user access tokens
// authorize the /me profile lookup.
package pi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client handles communication with the Pi platform API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new Pi platform client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		// The platform throttles aggressive callers; stay under 10 rps.
		limiter: rate.NewLimiter(rate.Limit(10), 20),
	}
}

// Me resolves a user access token to the platform profile.
func (c *Client) Me(ctx context.Context, accessToken string) (*User, error) {
	body, err := c.do(ctx, http.MethodGet, "/v2/me", "Bearer "+accessToken, nil)
	if err != nil {
		return nil, err
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	if user.UID == "" {
		return nil, fmt.Errorf("platform returned empty uid")
	}

	return &user, nil
}

// GetPayment retrieves a payment by identifier.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	body, err := c.do(ctx, http.MethodGet, "/v2/payments/"+paymentID, "Key "+c.apiKey, nil)
	if err != nil {
		return nil, err
	}

	var payment Payment
	if err := json.Unmarshal(body, &payment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment: %w", err)
	}

	return &payment, nil
}

// ApprovePayment marks the payment as developer-approved.
func (c *Client) ApprovePayment(ctx context.Context, paymentID string) error {
	_, err := c.do(ctx, http.MethodPost, "/v2/payments/"+paymentID+"/approve", "Key "+c.apiKey, nil)
	return err
}

// CompletePayment marks the payment as developer-completed with the
// on-chain transaction id.
func (c *Client) CompletePayment(ctx context.Context, paymentID, txid string) error {
	payload := map[string]string{"txid": txid}
	_, err := c.do(ctx, http.MethodPost, "/v2/payments/"+paymentID+"/complete", "Key "+c.apiKey, payload)
	return err
}

func (c *Client) do(ctx context.Context, method, path, authorization string, payload interface{}) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var bodyReader io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call pi platform: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("pi platform returned status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
