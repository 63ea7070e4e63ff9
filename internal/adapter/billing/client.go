package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"adpilot/internal/config/configs"
)

// Client talks to the external ledger service. It is consumed on campaign
// status transitions; balances and transaction rows live on the other
// side.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(cfg configs.Billing) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) Balance(ctx context.Context, ownerID int64) (int64, error) {
	var out struct {
		Balance int64 `json:"balance"`
	}
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/api/accounts/%d/balance/", ownerID), nil, &out); err != nil {
		return 0, err
	}
	return out.Balance, nil
}

func (c *Client) Debit(ctx context.Context, ownerID, amount, campaignID int64) error {
	return c.transact(ctx, "deduct", ownerID, amount, campaignID)
}

func (c *Client) Refund(ctx context.Context, ownerID, amount, campaignID int64) error {
	return c.transact(ctx, "refund", ownerID, amount, campaignID)
}

func (c *Client) transact(ctx context.Context, kind string, ownerID, amount, campaignID int64) error {
	payload := map[string]any{
		"type":     kind,
		"amount":   amount,
		"campaign": campaignID,
	}
	return c.call(ctx, http.MethodPost, fmt.Sprintf("/api/accounts/%d/transactions/", ownerID), payload, nil)
}

func (c *Client) call(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("billing %s %s: status=%d body=%s", method, path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
