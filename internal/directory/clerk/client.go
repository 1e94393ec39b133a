package clerk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vedran77/chirp/internal/directory"
	"github.com/vedran77/chirp/internal/domain"
)

// Client talks to a Clerk-style user directory API:
// GET {base}/v1/users?user_id=a&user_id=b&limit=100 with a bearer secret.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type userResponse struct {
	ID       string  `json:"id"`
	Username *string `json:"username"`
	ImageURL string  `json:"image_url"`
}

func (c *Client) LookupMany(ctx context.Context, ids []string) (map[string]domain.AuthorProfile, error) {
	if len(ids) == 0 {
		return map[string]domain.AuthorProfile{}, nil
	}
	if len(ids) > directory.MaxBatchSize {
		return nil, fmt.Errorf("directory lookup limited to %d ids, got %d", directory.MaxBatchSize, len(ids))
	}

	params := url.Values{}
	for _, id := range ids {
		params.Add("user_id", id)
	}
	params.Set("limit", strconv.Itoa(directory.MaxBatchSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/users?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building directory request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling user directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user directory returned status %d", resp.StatusCode)
	}

	var users []userResponse
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("decoding directory response: %w", err)
	}

	profiles := make(map[string]domain.AuthorProfile, len(users))
	for _, u := range users {
		profiles[u.ID] = domain.AuthorProfile{
			ID:       u.ID,
			Username: u.Username,
			ImageURL: u.ImageURL,
		}
	}
	return profiles, nil
}
