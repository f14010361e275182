package enrichment

import (
	"context"
	"errors"
	"fmt"

	"github.com/de-tools/changeguard/pkg/models/domain"
)

var (
	ErrNotConfigured = errors.New("enrichment endpoint is not configured")
	ErrUnavailable   = errors.New("enrichment service is unavailable")
)

// Decorator attaches risk context to a single alert.
type Decorator interface {
	Decorate(ctx context.Context, alert domain.Alert) (domain.DecoratedAlert, error)
}

// StatusError reports a non-success response. It never carries credentials.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("enrichment %s returned status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("enrichment %s returned status %d: %s", e.Path, e.StatusCode, e.Body)
}

// AlertError identifies the alert whose decoration failed.
type AlertError struct {
	Index     int
	LogicalID string
	PolicyID  string
	Err       error
}

func (e *AlertError) Error() string {
	return fmt.Sprintf("failed to decorate alert #%d (%s, %s): %v", e.Index, e.LogicalID, e.PolicyID, e.Err)
}

func (e *AlertError) Unwrap() error {
	return e.Err
}
