// Package signing is the HTTP client of the credential signing service.
package signing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"claimflow/internal/attestation/models"
	"claimflow/pkg/platform/circuit"
	"claimflow/pkg/platform/sentinel"
)

const (
	signPath   = "/sign"
	revokePath = "/revoke"

	defaultTimeout  = 10 * time.Second
	maxResponseSize = 4 << 20
)

// ErrRejected is returned when the signer refuses a request as invalid.
var ErrRejected = errors.New("signing request rejected")

type revokeRequest struct {
	EntityName string `json:"entityName"`
	EntityID   string `json:"entityId"`
	SignedData string `json:"signedCredential"`
}

// Client calls the signing service over HTTP. Calls are guarded by a
// circuit breaker that only counts unavailability as failure.
type Client struct {
	httpClient *http.Client
	baseURL    string
	breaker    *circuit.Breaker
	logger     *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default instrumented client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(cl *Client) {
		if b != nil {
			cl.breaker = b
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// NewClient builds a client for the signer at baseURL. Requests are traced
// through an otelhttp transport.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("signer base url is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		breaker: circuit.New("signer"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Sign returns the signed document. A v2 signer also returns the credential
// id, read from "id" or "credential.id".
func (c *Client) Sign(ctx context.Context, req models.SignRequest) (*models.SignedCredential, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal sign request: %w", err)
	}
	raw, err := c.post(ctx, signPath, body)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("signer returned invalid json: %w", ErrRejected)
	}

	res := gjson.GetManyBytes(raw, "id", "credential.id")
	id := res[0].String()
	if id == "" {
		id = res[1].String()
	}
	return &models.SignedCredential{ID: id, Raw: raw}, nil
}

// Revoke asks the signer to revoke signedData issued for the entity.
func (c *Client) Revoke(ctx context.Context, entityName, entityID, signedData string) error {
	body, err := json.Marshal(revokeRequest{
		EntityName: entityName,
		EntityID:   entityID,
		SignedData: signedData,
	})
	if err != nil {
		return fmt.Errorf("marshal revoke request: %w", err)
	}
	_, err = c.post(ctx, revokePath, body)
	return err
}

func (c *Client) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	if !c.breaker.Allow() {
		return nil, fmt.Errorf("signer %s: circuit open: %w", path, sentinel.ErrUnavailable)
	}
	raw, err := c.do(ctx, path, body)
	c.record(ctx, err)
	return raw, err
}

func (c *Client) record(ctx context.Context, err error) {
	var change circuit.StateChange
	if errors.Is(err, sentinel.ErrUnavailable) {
		_, change = c.breaker.RecordFailure()
	} else {
		_, change = c.breaker.RecordSuccess()
	}
	switch {
	case change.Opened:
		c.logger.WarnContext(ctx, "signer circuit opened", "breaker", c.breaker.Name(), "error", err)
	case change.Closed:
		c.logger.InfoContext(ctx, "signer circuit closed", "breaker", c.breaker.Name())
	}
}

func (c *Client) do(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError, resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("signer %s: status %d: %w", path, resp.StatusCode, sentinel.ErrUnavailable)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, fmt.Errorf("signer %s: status %d: %s: %w", path, resp.StatusCode, strings.TrimSpace(string(raw)), ErrRejected)
	}
	return raw, nil
}
