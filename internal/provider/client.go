package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const dateLayout = "2006-01-02"

// Client talks to the Open Finance aggregator. It authenticates with client
// credentials, caches the returned API key and refreshes it once on a 401.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu     sync.Mutex
	apiKey string
}

func NewClient(baseURL, clientID, clientSecret string) *Client {
	return &Client{
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Authenticate exchanges the client credentials for an API key.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	payload := map[string]string{
		"clientId":     c.clientID,
		"clientSecret": c.clientSecret,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("provider auth failed: %s", resp.Status)
	}

	var result struct {
		APIKey string `json:"apiKey"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.APIKey == "" {
		return "", fmt.Errorf("provider auth returned an empty api key")
	}

	c.mu.Lock()
	c.apiKey = result.APIKey
	c.mu.Unlock()

	return result.APIKey, nil
}

// ListAccounts returns every account belonging to the given item.
func (c *Client) ListAccounts(ctx context.Context, itemID string) ([]Account, error) {
	query := url.Values{}
	query.Set("itemId", itemID)

	var accounts []Account
	page := 1
	for {
		query.Set("page", fmt.Sprintf("%d", page))
		var envelope struct {
			Results    []Account `json:"results"`
			Page       int       `json:"page"`
			TotalPages int       `json:"totalPages"`
		}
		if err := c.get(ctx, "/accounts", query, &envelope); err != nil {
			return nil, err
		}
		accounts = append(accounts, envelope.Results...)
		if envelope.TotalPages <= page {
			break
		}
		page++
	}
	return accounts, nil
}

// ListTransactions returns the transactions of a provider account inside the
// [from, to] date window, walking every result page.
func (c *Client) ListTransactions(ctx context.Context, accountID string, from, to time.Time) ([]Transaction, error) {
	query := url.Values{}
	query.Set("accountId", accountID)
	query.Set("from", from.Format(dateLayout))
	query.Set("to", to.Format(dateLayout))

	var transactions []Transaction
	page := 1
	for {
		query.Set("page", fmt.Sprintf("%d", page))
		var envelope struct {
			Results    []Transaction `json:"results"`
			Page       int           `json:"page"`
			TotalPages int           `json:"totalPages"`
		}
		if err := c.get(ctx, "/transactions", query, &envelope); err != nil {
			return nil, err
		}
		transactions = append(transactions, envelope.Results...)
		if envelope.TotalPages <= page {
			break
		}
		page++
	}
	return transactions, nil
}

// ListInstitutions returns the institutions available for linking.
func (c *Client) ListInstitutions(ctx context.Context) ([]Institution, error) {
	var envelope struct {
		Results []Institution `json:"results"`
	}
	if err := c.get(ctx, "/connectors", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Results, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	apiKey, err := c.currentAPIKey(ctx)
	if err != nil {
		return err
	}

	resp, err := c.doGet(ctx, path, query, apiKey)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		// stale key, re-authenticate once
		apiKey, err = c.Authenticate(ctx)
		if err != nil {
			return err
		}
		resp, err = c.doGet(ctx, path, query, apiKey)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider request %s failed: %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) doGet(ctx context.Context, path string, query url.Values, apiKey string) (*http.Response, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", apiKey)
	return c.httpClient.Do(req)
}

func (c *Client) currentAPIKey(ctx context.Context) (string, error) {
	c.mu.Lock()
	apiKey := c.apiKey
	c.mu.Unlock()
	if apiKey != "" {
		return apiKey, nil
	}
	return c.Authenticate(ctx)
}
