package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/de-tools/changeguard/pkg/models/api"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL  = "https://api.github.com"
	DefaultRetryMax = 3
)

var ErrNotConfigured = errors.New("github repository, pull request and token are required")

type Config struct {
	BaseURL     string
	Repository  string // owner/name
	PullRequest string
	Token       string
	RetryMax    int
}

func (c Config) Validate() error {
	if c.Repository == "" || c.PullRequest == "" || c.Token == "" {
		return ErrNotConfigured
	}
	return nil
}

type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github returned status %d: %s", e.StatusCode, e.Body)
}

// Commenter posts pull request comments through the issues API.
type Commenter struct {
	cfg    Config
	client *retryablehttp.Client
}

func NewCommenter(cfg Config, logger zerolog.Logger) (*Commenter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.Logger = leveledLogger{logger: logger}
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Commenter{cfg: cfg, client: client}, nil
}

func (c *Commenter) URL() string {
	return fmt.Sprintf("%s/repos/%s/issues/%s/comments", c.cfg.BaseURL, c.cfg.Repository, c.cfg.PullRequest)
}

func (c *Commenter) Post(ctx context.Context, body string) error {
	payload, err := json.Marshal(api.IssueComment{Body: body})
	if err != nil {
		return fmt.Errorf("failed to encode comment: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.URL(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build comment request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "token "+c.cfg.Token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post comment to %s#%s: %w", c.cfg.Repository, c.cfg.PullRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	var created api.IssueComment
	if err := json.NewDecoder(resp.Body).Decode(&created); err == nil {
		zerolog.Ctx(ctx).Info().
			Str("repository", c.cfg.Repository).
			Str("pull_request", c.cfg.PullRequest).
			Str("url", created.HTMLURL).
			Msg("comment posted")
	}
	return nil
}

// WriterCommenter prints the comment instead of posting it.
type WriterCommenter struct {
	W io.Writer
}

func (c WriterCommenter) Post(_ context.Context, body string) error {
	_, err := fmt.Fprintln(c.W, body)
	return err
}

type leveledLogger struct {
	logger zerolog.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}
