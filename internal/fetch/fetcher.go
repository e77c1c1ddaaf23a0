package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"steeple/internal/config"
	"steeple/internal/logging"
	"steeple/internal/services"
	"steeple/internal/textutil"
)

// progressLogInterval is how many bytes pass between progress log lines.
const progressLogInterval = 32 * 1024 * 1024

// Result describes a successfully fetched local asset.
type Result struct {
	Path     string
	Name     string
	Size     int64
	MimeType string
}

// HTTPDoer describes the HTTP client used for candidate downloads.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads assets into the staging directory, trying ordered mirror
// candidates until one returns validated binary content.
type Fetcher struct {
	stagingDir     string
	mirrors        []string
	attemptTimeout time.Duration
	chunkSize      int
	httpClient     HTTPDoer
	logger         *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// New creates a fetcher from configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Fetcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	f := &Fetcher{
		stagingDir:     cfg.Paths.StagingDir,
		mirrors:        append([]string{}, cfg.Fetch.DownloadMirrors...),
		attemptTimeout: cfg.FetchAttemptTimeout(),
		chunkSize:      cfg.Fetch.ChunkSizeKiB * 1024,
		httpClient:     &http.Client{},
		logger:         logger.With(logging.String(logging.FieldComponent, "fetch")),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch resolves a source link into a validated local payload. Candidates are
// tried in order; the first success wins and later candidates are never
// attempted.
func (f *Fetcher) Fetch(ctx context.Context, sourceLink string) (Result, error) {
	sourceID, err := ExtractSourceID(sourceLink)
	if err != nil {
		return Result{}, err
	}

	candidates := f.candidates(sourceID)
	if len(candidates) == 0 {
		return Result{}, services.Wrap(services.ErrFetchExhausted, "fetch", "candidates", "no download mirrors configured", nil)
	}

	logger := logging.WithContext(ctx, f.logger)
	var lastErr error
	for i, candidate := range candidates {
		result, err := f.attempt(ctx, candidate, sourceID)
		if err == nil {
			logger.Info("asset fetched",
				logging.String(logging.FieldEventType, "fetch_complete"),
				logging.Int("candidate", i+1),
				logging.String("file", result.Name),
				logging.String("size", humanize.Bytes(uint64(result.Size))),
			)
			return result, nil
		}
		lastErr = err
		logger.Warn("fetch candidate failed",
			logging.String(logging.FieldEventType, "fetch_candidate_failed"),
			logging.Int("candidate", i+1),
			logging.Int("candidates_total", len(candidates)),
			logging.Error(err),
		)
	}

	return Result{}, services.Wrap(
		services.ErrFetchExhausted,
		"fetch",
		"candidates",
		fmt.Sprintf("all %d candidates failed for %s", len(candidates), sourceID),
		lastErr,
	)
}

func (f *Fetcher) candidates(sourceID string) []string {
	candidates := make([]string, 0, len(f.mirrors))
	for _, mirror := range f.mirrors {
		candidates = append(candidates, mirror+sourceID)
	}
	return candidates
}

func (f *Fetcher) attempt(ctx context.Context, candidateURL, sourceID string) (Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, candidateURL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("build download request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("download %s: %w", candidateURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("download %s: unexpected status %d", candidateURL, resp.StatusCode)
	}

	// Inspect the declared type before touching the body: interstitial
	// quota/consent pages come back as markup with a 200 status.
	mediaType := declaredMediaType(resp)
	if isMarkup(mediaType) {
		return Result{}, fmt.Errorf("download %s: candidate returned %s instead of binary content", candidateURL, mediaType)
	}

	name := assetName(resp, sourceID, mediaType)
	sinkPath := filepath.Join(f.stagingDir, name)
	if err := os.MkdirAll(f.stagingDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("ensure staging directory: %w", err)
	}
	sink, err := os.Create(sinkPath)
	if err != nil {
		return Result{}, fmt.Errorf("create staging sink: %w", err)
	}

	written, streamErr := f.stream(attemptCtx, resp, sink)
	closeErr := sink.Close()
	if streamErr == nil {
		streamErr = closeErr
	}
	if streamErr != nil {
		_ = os.Remove(sinkPath)
		return Result{}, fmt.Errorf("stream %s: %w", candidateURL, streamErr)
	}

	if err := validateSink(sinkPath, written, resp.ContentLength); err != nil {
		_ = os.Remove(sinkPath)
		return Result{}, err
	}

	return Result{Path: sinkPath, Name: name, Size: written, MimeType: mediaType}, nil
}

func (f *Fetcher) stream(ctx context.Context, resp *http.Response, sink *os.File) (int64, error) {
	logger := logging.WithContext(ctx, f.logger)
	var written, lastLogged int64
	for chunk, err := range Chunks(resp.Body, f.chunkSize) {
		if err != nil {
			return written, err
		}
		n, writeErr := sink.Write(chunk)
		written += int64(n)
		if writeErr != nil {
			return written, writeErr
		}
		if written-lastLogged >= progressLogInterval {
			lastLogged = written
			logger.Debug("download progress",
				logging.String("transferred", humanize.Bytes(uint64(written))),
				logging.String("declared", declaredSize(resp.ContentLength)),
			)
		}
	}
	return written, nil
}

// validateSink enforces the post-fetch contract: the file exists, is
// non-empty, and closely matches any declared content length. The tolerance
// absorbs chunked-encoding drift without letting truncated bodies through.
func validateSink(path string, written, declared int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrValidation, "fetch", "validate", "downloaded file missing", err)
	}
	if info.Size() == 0 || written == 0 {
		return services.Wrap(services.ErrValidation, "fetch", "validate", "downloaded file is empty", nil)
	}
	if declared > 0 {
		drift := written - declared
		if drift < 0 {
			drift = -drift
		}
		tolerance := declared / 100
		if tolerance < 1024 {
			tolerance = 1024
		}
		if drift > tolerance {
			return services.Wrap(
				services.ErrValidation,
				"fetch",
				"validate",
				fmt.Sprintf("size mismatch: declared %d bytes, wrote %d bytes", declared, written),
				nil,
			)
		}
	}
	return nil
}

func declaredMediaType(resp *http.Response) string {
	contentType := strings.TrimSpace(resp.Header.Get("Content-Type"))
	if contentType == "" {
		return "application/octet-stream"
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(contentType)
	}
	return mediaType
}

func isMarkup(mediaType string) bool {
	switch mediaType {
	case "text/html", "application/xhtml+xml", "text/xml", "application/xml":
		return true
	default:
		return false
	}
}

func assetName(resp *http.Response, sourceID, mediaType string) string {
	if disposition := resp.Header.Get("Content-Disposition"); disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil && params["filename"] != "" {
			if filename := textutil.SanitizeFileName(filepath.Base(params["filename"])); filename != "" && filename != "." {
				return filename
			}
		}
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return sourceID + exts[0]
	}
	return sourceID
}

func declaredSize(contentLength int64) string {
	if contentLength <= 0 {
		return "unknown"
	}
	return humanize.Bytes(uint64(contentLength))
}
