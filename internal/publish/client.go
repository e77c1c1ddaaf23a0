package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"steeple/internal/logging"
	"steeple/internal/services"
)

// Result describes a completed upload.
type Result struct {
	ID  string
	URL string
}

// Target accepts prepared assets for publication.
type Target interface {
	Insert(ctx context.Context, metadata Metadata, media io.Reader, size int64) (Result, error)
}

// HTTPDoer matches the subset of *http.Client the upload client needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client uploads assets over the platform's multipart insert endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient HTTPDoer
	logger     *slog.Logger
}

// Option adjusts client construction.
type Option func(*Client)

// WithHTTPClient overrides the transport, primarily for tests.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.httpClient = doer
		}
	}
}

// NewClient builds an upload client for the given endpoint.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		timeout:    timeout,
		httpClient: &http.Client{},
		logger:     logger.With(logging.String(logging.FieldComponent, "publish")),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type insertResponse struct {
	ID string `json:"id"`
}

// Insert uploads the media stream with its metadata and returns the platform
// identifier and watch URL. Rejections from the platform are wrapped with
// services.ErrPublishRejected.
func (c *Client) Insert(ctx context.Context, metadata Metadata, media io.Reader, size int64) (Result, error) {
	metadata.Clamp()
	if metadata.Title == "" {
		return Result{}, services.Wrap(services.ErrValidation, "publish", "insert", "title is required", nil)
	}
	if metadata.CategoryID == "" {
		metadata.CategoryID = defaultCategoryID
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, contentType, err := c.multipartBody(metadata, media)
	if err != nil {
		return Result{}, services.Wrap(services.ErrPublishRejected, "publish", "insert", "failed to encode upload body", err)
	}

	endpoint := c.baseURL + "/videos?uploadType=multipart&part=snippet,status"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return Result{}, services.Wrap(services.ErrPublishRejected, "publish", "insert", "failed to build upload request", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, services.Wrap(services.ErrPublishRejected, "publish", "insert", "upload request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return Result{}, services.Wrap(services.ErrPublishRejected, "publish", "insert",
			fmt.Sprintf("platform returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))), nil)
	}

	var decoded insertResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Result{}, services.Wrap(services.ErrPublishRejected, "publish", "insert", "failed to decode upload response", err)
	}
	if decoded.ID == "" {
		return Result{}, services.Wrap(services.ErrPublishRejected, "publish", "insert", "upload response missing id", nil)
	}

	c.logger.InfoContext(ctx, "upload accepted",
		logging.String("published_id", decoded.ID),
		logging.Int64("size_bytes", size),
		logging.Duration("elapsed", time.Since(started)))

	return Result{ID: decoded.ID, URL: WatchURL(decoded.ID)}, nil
}

// watchURLBase is the public playback prefix; the upload API base is not a
// browsable address.
const watchURLBase = "https://www.youtube.com/watch?v="

// WatchURL builds the public watch link for a published identifier.
func WatchURL(id string) string {
	return watchURLBase + id
}

func (c *Client) multipartBody(metadata Metadata, media io.Reader) (io.Reader, string, error) {
	snippet := map[string]any{
		"snippet": map[string]any{
			"title":       metadata.Title,
			"description": metadata.Description,
			"tags":        metadata.Tags,
			"categoryId":  metadata.CategoryID,
		},
		"status": map[string]any{
			"privacyStatus": metadata.Privacy,
		},
	}
	encoded, err := json.Marshal(snippet)
	if err != nil {
		return nil, "", err
	}

	var preamble bytes.Buffer
	writer := multipart.NewWriter(&preamble)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return nil, "", err
	}
	if _, err := metaPart.Write(encoded); err != nil {
		return nil, "", err
	}

	mediaHeader := textproto.MIMEHeader{}
	mediaHeader.Set("Content-Type", "application/octet-stream")
	if _, err := writer.CreatePart(mediaHeader); err != nil {
		return nil, "", err
	}

	// The media part body streams directly from the reader instead of being
	// buffered; only the multipart framing lives in memory.
	closing := "\r\n--" + writer.Boundary() + "--\r\n"
	body := io.MultiReader(bytes.NewReader(preamble.Bytes()), media, strings.NewReader(closing))
	return body, "multipart/related; boundary=" + writer.Boundary(), nil
}
