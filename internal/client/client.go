// Package client is a small HTTP client for the syscompta API, used by the
// CLI commands.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kbrou/syscompta/internal/ledger"
	"github.com/kbrou/syscompta/internal/store"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) CreateClient(ctx context.Context, name string) (*ledger.Client, error) {
	var result ledger.Client
	if err := c.post(ctx, "/api/v1/clients", map[string]any{"name": name}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListClients(ctx context.Context) ([]ledger.Client, error) {
	var result []ledger.Client
	if err := c.get(ctx, "/api/v1/clients", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetClient(ctx context.Context, id int64) (*ledger.Client, error) {
	var result ledger.Client
	if err := c.get(ctx, fmt.Sprintf("/api/v1/clients/%d", id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Bootstrap re-runs the chart clone and reports how many accounts it created.
func (c *Client) Bootstrap(ctx context.Context, clientID int64) (int, error) {
	var result struct {
		Created int `json:"created"`
	}
	if err := c.post(ctx, fmt.Sprintf("/api/v1/clients/%d/bootstrap", clientID), nil, &result); err != nil {
		return 0, err
	}
	return result.Created, nil
}

func (c *Client) Dashboard(ctx context.Context, clientID int64, year, month int) (*store.DashboardKPIs, error) {
	params := url.Values{}
	if year != 0 {
		params.Set("year", fmt.Sprintf("%d", year))
	}
	if month != 0 {
		params.Set("month", fmt.Sprintf("%d", month))
	}
	var result store.DashboardKPIs
	path := fmt.Sprintf("/api/v1/clients/%d/dashboard?%s", clientID, params.Encode())
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListAccounts(ctx context.Context, clientID int64, postableOnly bool) ([]ledger.Account, error) {
	params := url.Values{}
	if postableOnly {
		params.Set("postable", "true")
	}
	var result []ledger.Account
	path := fmt.Sprintf("/api/v1/clients/%d/accounts?%s", clientID, params.Encode())
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) ListJournals(ctx context.Context, clientID int64) ([]ledger.Journal, error) {
	var result []ledger.Journal
	if err := c.get(ctx, fmt.Sprintf("/api/v1/clients/%d/journals", clientID), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) ListEntries(ctx context.Context, clientID int64, journalID int64, q string) ([]ledger.JournalEntry, error) {
	params := url.Values{}
	if journalID != 0 {
		params.Set("journal_id", fmt.Sprintf("%d", journalID))
	}
	if q != "" {
		params.Set("q", q)
	}
	var result []ledger.JournalEntry
	path := fmt.Sprintf("/api/v1/clients/%d/entries?%s", clientID, params.Encode())
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// NextPiece asks the journal for its suggested next piece number.
func (c *Client) NextPiece(ctx context.Context, clientID, journalID int64) (string, error) {
	var result struct {
		PieceNumber string `json:"piece_number"`
	}
	path := fmt.Sprintf("/api/v1/clients/%d/journals/%d/next-piece", clientID, journalID)
	if err := c.get(ctx, path, &result); err != nil {
		return "", err
	}
	return result.PieceNumber, nil
}

// Ping checks if the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/v1/clients", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.doRequest(req, result)
}

func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doRequest(req, result)
}

type apiError struct {
	Error string `json:"error"`
}

func (c *Client) doRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, string(bodyBytes))
	}

	if result != nil {
		if err := json.Unmarshal(bodyBytes, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
