package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"steeple/internal/config"
)

const userAgent = "Steeple-Go/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyUploadCompleted(ctx context.Context, title, watchURL string) error
	NotifyRecordFailed(ctx context.Context, title string, attempts int, err error) error
	NotifyErrorsReset(ctx context.Context, count int64) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := cfg.NotificationTimeout()
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyUploadCompleted(ctx context.Context, title, watchURL string) error {
	title = strings.TrimSpace(title)
	message := fmt.Sprintf("Published: %s", title)
	if watchURL = strings.TrimSpace(watchURL); watchURL != "" {
		message = fmt.Sprintf("%s\n%s", message, watchURL)
	}
	data := payload{
		title:    "Steeple - Uploaded",
		message:  message,
		tags:     []string{"steeple", "upload", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRecordFailed(ctx context.Context, title string, attempts int, err error) error {
	title = strings.TrimSpace(title)
	detail := "unknown"
	if err != nil {
		detail = strings.TrimSpace(err.Error())
	}
	data := payload{
		title:    "Steeple - Error",
		message:  fmt.Sprintf("Failed: %s (attempt %d)\n%s", title, attempts, detail),
		tags:     []string{"steeple", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyErrorsReset(ctx context.Context, count int64) error {
	data := payload{
		title:   "Steeple - Maintenance",
		message: fmt.Sprintf("Reset %d errored records for retry", count),
		tags:    []string{"steeple", "maintenance"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Steeple - Test",
		message:  "Notification system test",
		tags:     []string{"steeple", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyUploadCompleted(context.Context, string, string) error  { return nil }
func (noopService) NotifyRecordFailed(context.Context, string, int, error) error { return nil }
func (noopService) NotifyErrorsReset(context.Context, int64) error               { return nil }
func (noopService) TestNotification(context.Context) error                       { return nil }
