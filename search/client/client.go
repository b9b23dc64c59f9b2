package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/internal/types"
	searchErrors "github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/errors"
	"github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/models"
)

// Client calls the document search API. It implements the editor's search
// and count ports.
type Client struct {
	baseURL    string
	token      string
	uid        string
	httpClient *http.Client
}

// ClientConfig holds configuration for the search client
type ClientConfig struct {
	BaseURL string
	// Token is sent as a Bearer credential
	Token string
	// UID is sent in the uid header, for servers running with auth disabled
	UID     string
	Timeout time.Duration
}

// NewClient creates a new search client instance
func NewClient(config ClientConfig) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		token:      config.Token,
		uid:        config.UID,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// Search posts the request to /documents/search
func (c *Client) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	var resp models.SearchResponse
	if err := c.do(ctx, http.MethodPost, "/documents/search", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Count posts the request to /documents/search/count
func (c *Client) Count(ctx context.Context, req models.SearchRequest) (int64, error) {
	var resp models.CountResponse
	if err := c.do(ctx, http.MethodPost, "/documents/search/count", req, &resp); err != nil {
		return 0, err
	}
	return resp.Total, nil
}

// Fields fetches the field catalog
func (c *Client) Fields(ctx context.Context) (*models.FieldsResponse, error) {
	var resp models.FieldsResponse
	if err := c.do(ctx, http.MethodGet, "/documents/search/fields", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(types.HeaderContentType, "application/json")
	if c.token != "" {
		req.Header.Set(types.HeaderAuthorization, types.BearerPrefix+c.token)
	}
	if c.uid != "" {
		req.Header.Set(types.HeaderUID, c.uid)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// decodeError maps an error body back onto the search error taxonomy
func decodeError(status int, data []byte) error {
	var body searchErrors.ErrorResponse
	_ = json.Unmarshal(data, &body)

	switch {
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", searchErrors.ErrUnauthorized, body.Error)
	case body.Code == searchErrors.CodeValidationFailed:
		return &searchErrors.ValidationError{Details: body.Details}
	case body.Code == searchErrors.CodeInvalidRequestBody:
		return searchErrors.ErrInvalidRequestBody
	case status == http.StatusNotFound:
		return searchErrors.ErrNotFound
	}
	msg := body.Error
	if msg == "" {
		msg = strings.TrimSpace(string(data))
	}
	return fmt.Errorf("search service returned status %d: %s", status, msg)
}
