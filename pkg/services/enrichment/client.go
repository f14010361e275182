package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/de-tools/changeguard/pkg/adapters"
	"github.com/de-tools/changeguard/pkg/models/api"
	"github.com/de-tools/changeguard/pkg/models/domain"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/rs/zerolog"
)

const (
	DefaultTimeout = 30 * time.Second

	pingPath = "/ping"
	runPath  = "/run"

	maxErrorBody = 512
)

type Config struct {
	Endpoint string
	APIKey   string
	// Timeout bounds a single call; zero means DefaultTimeout.
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	endpoint string
	apiKey   string
	timeout  time.Duration
	http     *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" || cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = cleanhttp.DefaultPooledClient()
	}

	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		timeout:  cfg.Timeout,
		http:     cfg.HTTPClient,
	}, nil
}

// Ping checks that the endpoint is reachable and accepts the API key.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, pingPath, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, redact(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %w", ErrUnavailable, statusError(pingPath, resp))
	}
	return nil
}

func (c *Client) Decorate(ctx context.Context, alert domain.Alert) (domain.DecoratedAlert, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := adapters.MapAlertDomainToApi(alert)
	if err != nil {
		return domain.DecoratedAlert{}, fmt.Errorf("failed to encode alert: %w", err)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.DecoratedAlert{}, fmt.Errorf("failed to encode alert: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, runPath+"?includeInputRequest=false&mode=test", bytes.NewReader(body))
	if err != nil {
		return domain.DecoratedAlert{}, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("logical_id", alert.LogicalID).
		Str("policy_id", alert.PolicyID).
		Msg("decorating alert")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.DecoratedAlert{}, fmt.Errorf("%w: %v", ErrUnavailable, redact(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.DecoratedAlert{}, statusError(runPath, resp)
	}

	var decorated api.DecoratedAlert
	if err := json.NewDecoder(resp.Body).Decode(&decorated); err != nil {
		return domain.DecoratedAlert{}, fmt.Errorf("failed to decode enrichment response: %w", err)
	}
	return adapters.MapDecoratedAlertApiToDomain(decorated), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build enrichment request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("x-dassana-cache", "false")
	return req, nil
}

func statusError(path string, resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

// redact drops the request URL from transport errors; only the cause is kept.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
