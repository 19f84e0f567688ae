// Package client talks to the remote analysis service over HTTP.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mabhi256/medi/internal/analysis"
	"github.com/mabhi256/medi/internal/upload"
)

const (
	AnalyzePath   = "/analyze"
	FileFieldName = "file"

	// Cap on response bodies; the four reports are a few KB in practice
	maxResponseBytes = 8 << 20
)

// Client is an analysis.Service backed by HTTP
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// New returns a client for the service at endpoint (scheme://host[:port][/prefix]).
// A nil httpClient means http.DefaultClient: no timeout, no retries.
func New(endpoint string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// Analyze uploads file as multipart form data and decodes the four reports.
// It returns analysis.ErrRateLimited on 429 and *analysis.ServiceError on any
// other non-2xx answer.
func (c *Client) Analyze(ctx context.Context, file *upload.File) (*analysis.Result, error) {
	reqID := uuid.New().String()
	start := time.Now()

	src, err := file.Open()
	if err != nil {
		c.logger.Error("client.http.open_error", "req_id", reqID, "error", err)
		return nil, fmt.Errorf("open %s: %w", file.Name, err)
	}

	body, contentType := multipartBody(src, file.Name)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+AnalyzePath, body)
	if err != nil {
		body.Close()
		c.logger.Error("client.http.build_request_error", "req_id", reqID, "error", err)
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	c.logger.Info("client.http.request",
		"req_id", reqID,
		"url", req.URL.String(),
		"file", file.Name,
		"size", file.Size,
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("client.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("post %s: %w", AnalyzePath, err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.logger.Warn("client.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	c.logger.Info("client.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, analysis.ErrRateLimited
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		return nil, &analysis.ServiceError{
			Status: resp.StatusCode,
			Detail: extractDetail(raw),
		}
	}

	result, err := decodeResult(raw)
	if err != nil {
		c.logger.Error("client.http.decode_error", "req_id", reqID, "error", err, "bytes", len(raw))
		return nil, err
	}
	return result, nil
}

// Ping checks that the service answers on its root path
func (c *Client) Ping(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/", nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("get /: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Message == "" {
		return strings.TrimSpace(string(raw)), nil
	}
	return body.Message, nil
}

// multipartBody streams src as the single "file" part through a pipe, so the
// upload never sits in memory twice.
func multipartBody(src io.ReadCloser, filename string) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		defer src.Close()

		part, err := mw.CreateFormFile(FileFieldName, filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	return pr, mw.FormDataContentType()
}

// extractDetail returns the "detail" field when it is a JSON string
func extractDetail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err != nil {
		return ""
	}
	return strings.TrimSpace(detail)
}

var errInvalidResult = errors.New("invalid analysis response")

func decodeResult(raw []byte) (*analysis.Result, error) {
	if err := validateResult(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidResult, err)
	}

	var result analysis.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidResult, err)
	}
	return &result, nil
}
