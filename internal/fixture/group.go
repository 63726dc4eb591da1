// Package fixture provisions temporary resources in the upstream system via
// its management API, so scenarios have known data to find. Every fixture
// returns a cleanup func the caller must defer.
package fixture

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNoCredentials is returned when the upstream API key is missing; callers
// (typically tests) skip instead of failing.
var ErrNoCredentials = errors.New("no upstream credentials for fixture setup")

// Group is a temporary named group created for one scenario run.
type Group struct {
	ID   int64
	Name string
}

// Client talks to the upstream management API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient returns a fixture client for the upstream at baseURL.
func NewClient(baseURL, apiKey string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger.With().Str("component", "fixture").Logger(),
	}
}

// CreateGroup creates a group with a unique name and returns it together
// with a cleanup func that deletes it. Cleanup failures are logged, not
// returned: a leftover test group must not fail the scenario that already
// ran.
func (c *Client) CreateGroup(ctx context.Context) (*Group, func(), error) {
	if c.apiKey == "" {
		return nil, nil, ErrNoCredentials
	}

	name := fmt.Sprintf("bench-group-%s", uuid.NewString()[:8])
	body, err := json.Marshal(map[string]string{
		"name":  name,
		"email": name + "@example.com",
	})
	if err != nil {
		return nil, nil, err
	}

	var created struct {
		TeamID int64 `json:"teamId"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/teams", bytes.NewReader(body), &created); err != nil {
		return nil, nil, fmt.Errorf("create group: %w", err)
	}

	group := &Group{ID: created.TeamID, Name: name}
	c.logger.Debug().Int64("id", group.ID).Str("name", group.Name).Msg("group created")

	cleanup := func() {
		// Detached context: cleanup still runs when the scenario's context
		// is already cancelled.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		path := fmt.Sprintf("/api/teams/%d", group.ID)
		if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
			c.logger.Warn().Err(err).Int64("id", group.ID).Msg("failed to delete group")
		}
	}
	return group, cleanup, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, text)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}
