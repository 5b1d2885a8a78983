// Package remote submits attendance records to the backend API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"qrattend/internal/attendance"
)

// Client posts attendance records with bearer authentication.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// New creates a client for the given API base URL and bearer token.
func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Submit sends one record to POST /api/attendance/record. Success is judged
// solely by the HTTP status; the body is decoded opportunistically for log
// detail and a non-JSON success body is tolerated.
func (c *Client) Submit(ctx context.Context, rec attendance.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("remote: encode record: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/api/attendance/record", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("remote: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("remote: submit: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg := serverMessage(raw)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("remote: submit rejected (status %d): %s", resp.StatusCode, msg)
}

// serverMessage pulls the "message" field out of an error body, if the body
// happens to be JSON.
func serverMessage(raw []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		log.Printf("remote: response body is not JSON (%d bytes)", len(raw))
		return ""
	}
	return parsed.Message
}
