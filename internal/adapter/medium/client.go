package medium

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"adpilot/internal/config/configs"
	"adpilot/internal/core/domain"
	"adpilot/internal/core/port"
)

// client is the HTTP transport shared by the medium adapters: bearer-token
// auth, JSON bodies, multipart uploads, and a typed RequestError for any
// non-2xx response. The diagnostic client carries an extended timeout for
// the one read path where the remote platform materializes output slowly.
type client struct {
	medium  domain.Medium
	baseURL string
	token   string
	http    *http.Client
	diag    *http.Client
}

func newClient(medium domain.Medium, cfg configs.MediumAPI) *client {
	return &client{
		medium:  medium,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: cfg.Timeout},
		diag:    &http.Client{Timeout: cfg.DiagnosticTimeout},
	}
}

func (c *client) postJSON(ctx context.Context, op, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s %s: encode payload: %w", c.medium, op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(c.http, req, op, out)
}

func (c *client) getJSON(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(c.http, req, op, out)
}

// getJSONDiagnostic is getJSON on the extended-timeout client.
func (c *client) getJSONDiagnostic(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(c.diag, req, op, out)
}

// upload sends a multipart form with one file part plus extra fields.
func (c *client) upload(ctx context.Context, op, path string, file port.File, fields map[string]string) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", file.Name)
	if err != nil {
		return err
	}
	if _, err = part.Write(file.Content); err != nil {
		return err
	}
	for k, v := range fields {
		if err = mw.WriteField(k, v); err != nil {
			return err
		}
	}
	if err = mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(c.http, req, op, nil)
}

func (c *client) do(hc *http.Client, req *http.Request, op string, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", c.medium, op, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &port.RequestError{
			Medium:     c.medium,
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	if out == nil {
		return nil
	}
	if err = json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: invalid json: %w", c.medium, op, err)
	}
	return nil
}
