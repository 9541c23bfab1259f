package finder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stuimpact/stuimpactweb2/pkg/opportunity"
	"github.com/stuimpact/stuimpactweb2/pkg/search"
)

// Client talks to the portal API. It implements Fetcher.
type Client struct {
	BaseURL string
	httpDo  *http.Client
}

// NewClient builds a client for baseURL (for example
// "https://stuimpact.works/api/v1"). A nil httpClient gets a 15s timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), httpDo: httpClient}
}

// APIError is a non-2xx reply from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

type searchRequest struct {
	Interest string `json:"interest"`
	Grade    string `json:"grade"`
	Location string `json:"location,omitempty"`
	Page     int    `json:"page"`
}

type searchResponse struct {
	Opportunities []opportunity.Opportunity `json:"opportunities"`
}

// FetchPage posts the criteria to /search.
func (c *Client) FetchPage(ctx context.Context, criteria search.Criteria, page int) ([]opportunity.Opportunity, error) {
	if page < 1 {
		page = 1
	}
	var out searchResponse
	err := c.post(ctx, "/search", searchRequest{
		Interest: criteria.InterestQuery(),
		Grade:    criteria.Grade(),
		Location: criteria.LocationHint(),
		Page:     page,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Opportunities == nil {
		return []opportunity.Opportunity{}, nil
	}
	return out.Opportunities, nil
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// SubmitContact posts a message to the contact intake.
func (c *Client) SubmitContact(ctx context.Context, name, email, message string) error {
	return c.post(ctx, "/contact", contactRequest{Name: name, Email: email, Message: message}, nil)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpDo.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(data, resp.Status)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorMessage(body []byte, fallback string) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Message != "" {
			return e.Message
		}
	}
	return fallback
}

// IsValidationFailure reports whether err is the API rejecting the filters.
func IsValidationFailure(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest
}
