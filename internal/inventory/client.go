package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// HTTPDoer describes the HTTP client used by the storage source client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client lists files from the storage source's REST API.
type Client struct {
	baseURL    string
	apiKey     string
	linkBase   string
	httpClient HTTPDoer
}

var _ Source = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a storage source client.
func New(baseURL, apiKey, linkBase string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("source base url required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("source api key required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		linkBase:   strings.TrimRight(strings.TrimSpace(linkBase), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type fileEntry struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	MimeType    string      `json:"mimeType"`
	Size        json.Number `json:"size"`
	CreatedTime string      `json:"createdTime"`
}

type listResponse struct {
	Files []fileEntry `json:"files"`
}

// List returns the folder's inventory ordered newest first. Trashed entries
// and subfolders are excluded by the query.
func (c *Client) List(ctx context.Context, folderID string) ([]Item, error) {
	folderID = strings.TrimSpace(folderID)
	if folderID == "" {
		return nil, errors.New("folder id required")
	}

	params := url.Values{}
	params.Set("q", fmt.Sprintf("'%s' in parents and trashed = false and mimeType != 'application/vnd.google-apps.folder'", folderID))
	params.Set("fields", "files(id,name,mimeType,size,createdTime)")
	params.Set("pageSize", "1000")
	params.Set("key", c.apiKey)

	endpoint := c.baseURL + "/files?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list source folder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list source folder: unexpected status %d", resp.StatusCode)
	}

	var payload listResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}

	items := make([]Item, 0, len(payload.Files))
	for _, entry := range payload.Files {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			continue
		}
		item := Item{
			SourceID:      id,
			DisplayName:   DisplayName(entry.Name),
			CanonicalLink: CanonicalLink(c.linkBase, id),
			MimeType:      strings.TrimSpace(entry.MimeType),
		}
		if size, err := entry.Size.Int64(); err == nil {
			item.SizeBytes = size
		}
		if created, err := time.Parse(time.RFC3339, entry.CreatedTime); err == nil {
			item.CreatedAt = created
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}
