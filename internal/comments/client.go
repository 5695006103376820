// internal/comments/client.go
//
// Campus – Discussion-service client.
//
// Context
//   The discussion service is a separate deployment that keeps its own user
//   table.  After an account row is committed, the creation pipeline mirrors
//   the new user there with an idempotent PUT.  Provisioning runs last and
//   its failure never unwinds the account; callers surface the error and
//   move on.
//
// Style
//   Two-space sentence spacing, Oxford comma, concise inline notes.
//
//------------------------------------------------------------------------------

package comments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const defaultTimeout = 5 * time.Second

// Client talks to one discussion-service deployment.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New returns a Client for baseURL.  The API key is sent on every request;
// an empty key means the service runs unauthenticated (dev only).
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

type userPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CreateUser upserts the discussion-service record for userID.  The remote
// endpoint is a PUT keyed on the user ID, so retries are safe.
func (c *Client) CreateUser(ctx context.Context, userID int64, username, email string) error {
	payload, err := json.Marshal(userPayload{
		ID:       strconv.FormatInt(userID, 10),
		Username: username,
		Email:    email,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/v1/users/%d", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("comments put user %d: %w", userID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("comments put user %d: status %d: %s",
			userID, resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
