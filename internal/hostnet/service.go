// Package hostnet exposes outbound HTTP to the frontend through a retrying client.
package hostnet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"pulselogic/internal/buildinfo"
	"pulselogic/internal/capability"
	"pulselogic/internal/domain"
	"pulselogic/internal/logging"
)

var (
	// ErrUnsupportedScheme is returned for URLs other than http and https.
	ErrUnsupportedScheme = errors.New("only http and https URLs are allowed")
	// ErrBodyTooLarge is returned when a response exceeds the configured cap.
	ErrBodyTooLarge = errors.New("response body exceeds limit")
)

// Config tunes the outbound client.
type Config struct {
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	MaxBodyBytes int64
}

// FetchRequest is one HTTP request issued by the frontend.
type FetchRequest struct {
	Method    string            `json:"method"`
	URL       string            `json:"url"`
	Headers   map[string]string `json:"headers,omitempty"`
	Body      string            `json:"body,omitempty"`
	TimeoutMs int               `json:"timeoutMs,omitempty"`
}

// FetchResponse is the buffered response returned to the frontend.
type FetchResponse struct {
	URL        string            `json:"url"`
	Status     int               `json:"status"`
	StatusText string            `json:"statusText"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

// Service implements the network capability.
type Service struct {
	cfg    Config
	client *retryablehttp.Client
}

// New creates a network service using a retrying HTTP client.
func New(cfg Config, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 16 << 20
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		client.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		client.RetryWaitMax = cfg.RetryWaitMax
	}
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = log.Retryable()
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Service{cfg: cfg, client: client}
}

// Init returns the registry initializer for this capability.
func Init(cfg Config, log *logging.Logger) capability.InitFunc {
	return func() (capability.Module, error) {
		return New(cfg, log), nil
	}
}

// Kind identifies the capability.
func (s *Service) Kind() domain.CapabilityKind {
	return domain.CapabilityNetwork
}

// Fetch performs req and buffers the response body.
func (s *Service) Fetch(req FetchRequest) (FetchResponse, error) {
	target, err := checkURL(req.URL)
	if err != nil {
		return FetchResponse{}, err
	}

	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	ctx := context.Background()
	if req.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	var body interface{}
	if req.Body != "" {
		body = []byte(req.Body)
	}
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return FetchResponse{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", userAgent())
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return FetchResponse{}, fmt.Errorf("request %s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.cfg.MaxBodyBytes+1))
	if err != nil {
		return FetchResponse{}, fmt.Errorf("read response: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxBodyBytes {
		return FetchResponse{}, ErrBodyTooLarge
	}

	headers := make(map[string]string, len(resp.Header))
	for key := range resp.Header {
		headers[key] = resp.Header.Get(key)
	}

	return FetchResponse{
		URL:        resp.Request.URL.String(),
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Headers:    headers,
		Body:       string(data),
	}, nil
}

// Download streams sourceURL into destinationPath, replacing it atomically.
func (s *Service) Download(sourceURL string, destinationPath string) (int64, error) {
	target, err := checkURL(sourceURL)
	if err != nil {
		return 0, err
	}
	if !filepath.IsAbs(destinationPath) {
		return 0, fmt.Errorf("destination must be absolute: %q", destinationPath)
	}
	if err := os.MkdirAll(filepath.Dir(destinationPath), 0o755); err != nil {
		return 0, fmt.Errorf("prepare destination directory: %w", err)
	}

	tmpPath := destinationPath + ".download"
	if err := os.Remove(tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("remove stale temp file: %w", err)
	}

	req, err := retryablehttp.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent())

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected HTTP status: %s", resp.Status)
	}

	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create temporary file: %w", err)
	}

	written, copyErr := io.Copy(file, resp.Body)
	closeErr := file.Close()
	if copyErr != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("write destination file: %w", copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("close destination file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destinationPath); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("move downloaded file into place: %w", err)
	}
	return written, nil
}

// checkURL accepts absolute http and https URLs only.
func checkURL(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	switch parsed.Scheme {
	case "http", "https":
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, raw)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("url has no host: %q", raw)
	}
	return parsed.String(), nil
}

func userAgent() string {
	return "PulseLogic/" + buildinfo.Version
}

