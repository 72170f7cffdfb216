package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ideascope/ideascope-backend/internal/logger"
	"github.com/ideascope/ideascope-backend/internal/utils"
)

// ErrEmbeddingUnavailable marks the embedding provider as unreachable or
// erroring. Callers abort the submission check; there is no hash-only
// fallback scoring.
var ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

// EmbeddingClient turns named text fields into vectors. Fields with empty
// text are omitted from the request; the returned map carries one vector per
// field the provider could embed. Papers go through their own endpoint on
// the local service, hence the second method.
type EmbeddingClient interface {
	EmbedFields(ctx context.Context, fields map[string]string) (map[string][]float32, error)
	EmbedPaperFields(ctx context.Context, fields map[string]string) (map[string][]float32, error)
}

// localEmbeddingClient talks to the local embedding microservice:
// POST <base>/api/embeddings with a JSON object of named strings, response
// {"embeddings": {field: [floats]}}.
type localEmbeddingClient struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
	maxRetries int
}

func NewLocalEmbeddingClient(log *logger.Logger) EmbeddingClient {
	baseURL := utils.GetEnv("EMBEDDING_SERVICE_URL", "http://localhost:5000", log)
	timeoutSec := utils.GetEnvAsInt("EMBEDDING_TIMEOUT_SECONDS", 10, log)
	maxRetries := utils.GetEnvAsInt("EMBEDDING_MAX_RETRIES", 2, log)
	return &localEmbeddingClient{
		log:        log.With("service", "EmbeddingClient"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
	}
}

type providerHTTPError struct {
	StatusCode int
	Body       string
}

func (e *providerHTTPError) Error() string {
	return fmt.Sprintf("provider http %d: %s", e.StatusCode, e.Body)
}

func isRetryableHTTP(code int) bool {
	if code == 408 || code == 429 {
		return true
	}
	return code >= 500 && code <= 599
}

func isRetryableErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var httpErr *providerHTTPError
	if errors.As(err, &httpErr) {
		return isRetryableHTTP(httpErr.StatusCode)
	}
	// Transport-level failures (connection refused etc.) come through as
	// url.Error values that unwrap to net errors; anything else is final.
	return false
}

func jitterSleep(base time.Duration) time.Duration {
	// +/- 20%
	if base <= 0 {
		return 0
	}
	j := 0.2
	delta := base.Seconds() * j
	low := base.Seconds() - delta
	high := base.Seconds() + delta
	v := low + rand.Float64()*(high-low)
	return time.Duration(v * float64(time.Second))
}

func (c *localEmbeddingClient) doOnce(ctx context.Context, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &providerHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *localEmbeddingClient) do(ctx context.Context, path string, body any, out any) error {
	backoff := 500 * time.Millisecond

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, path, body)
		if err == nil {
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("embedding decode error: %w; raw=%s", uErr, string(raw))
			}
			return nil
		}

		if !isRetryableErr(err) || attempt == c.maxRetries {
			return err
		}

		sleepFor := backoff
		if resp != nil {
			ra := strings.TrimSpace(resp.Header.Get("Retry-After"))
			if ra != "" {
				if secs, parseErr := strconv.Atoi(ra); parseErr == nil && secs > 0 {
					sleepFor = time.Duration(secs) * time.Second
				}
			}
		}
		if sleepFor > 5*time.Second {
			sleepFor = 5 * time.Second
		}
		sleepFor = jitterSleep(sleepFor)

		c.log.Warn("Embedding request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		time.Sleep(sleepFor)
		backoff *= 2
	}
	return fmt.Errorf("unreachable retry loop")
}

type embeddingsResponse struct {
	Embeddings map[string][]float32 `json:"embeddings"`
}

func (c *localEmbeddingClient) EmbedFields(ctx context.Context, fields map[string]string) (map[string][]float32, error) {
	return c.embedAt(ctx, "/api/embeddings", fields)
}

func (c *localEmbeddingClient) EmbedPaperFields(ctx context.Context, fields map[string]string) (map[string][]float32, error) {
	return c.embedAt(ctx, "/api/paper/embeddings", fields)
}

func (c *localEmbeddingClient) embedAt(ctx context.Context, path string, fields map[string]string) (map[string][]float32, error) {
	req := make(map[string]string, len(fields))
	for name, text := range fields {
		if strings.TrimSpace(text) == "" {
			continue
		}
		req[name] = text
	}
	if len(req) == 0 {
		return map[string][]float32{}, nil
	}

	var resp embeddingsResponse
	if err := c.do(ctx, path, req, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	if resp.Embeddings == nil {
		return nil, fmt.Errorf("%w: response missing embeddings object", ErrEmbeddingUnavailable)
	}
	return resp.Embeddings, nil
}
