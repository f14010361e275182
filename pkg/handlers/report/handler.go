package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/de-tools/changeguard/pkg/models/api"
	"github.com/de-tools/changeguard/pkg/services/cloudformation"
	"github.com/de-tools/changeguard/pkg/services/enrichment"
	"github.com/de-tools/changeguard/pkg/services/pipeline"
	"github.com/de-tools/changeguard/pkg/services/scanner"
	"github.com/rs/zerolog"
)

const maxRequestBody = 10 << 20

type Pinger interface {
	Ping(ctx context.Context) error
}

type Settings struct {
	Region        string
	EditorBaseURL string
	Concurrency   int
}

type Handler struct {
	decorator enrichment.Decorator
	pinger    Pinger
	settings  Settings
}

func NewHandler(decorator enrichment.Decorator, pinger Pinger, settings Settings) *Handler {
	return &Handler{
		decorator: decorator,
		pinger:    pinger,
		settings:  settings,
	}
}

// CreateReport renders both reports for a posted change set and checkov report.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var req api.ReportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Region == "" {
		req.Region = h.settings.Region
	}

	p := pipeline.New(
		cloudformation.StaticSource{ChangeSet: req.ChangeSet},
		scanner.StaticSource(req.Checkov),
		cloudformation.StaticAccount(req.Account),
		h.decorator,
		nil,
		pipeline.Options{
			Region:        req.Region,
			EditorBaseURL: h.settings.EditorBaseURL,
			Concurrency:   h.settings.Concurrency,
		},
	)

	result, err := p.Report(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create report")
		writeError(ctx, w, statusFor(err), err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, api.ReportResponse{
		Modified: result.Modified,
		Created:  result.Created,
		Alerts:   result.Alerts,
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.pinger != nil {
		if err := h.pinger.Ping(ctx); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("health check failed")
			writeJSON(ctx, w, http.StatusServiceUnavailable, api.Health{Status: err.Error()})
			return
		}
	}
	writeJSON(ctx, w, http.StatusOK, api.Health{Status: "ok"})
}

func statusFor(err error) int {
	var stageErr *pipeline.StageError
	if !errors.As(err, &stageErr) {
		return http.StatusInternalServerError
	}
	switch stageErr.Stage {
	case pipeline.StageChangeSet, pipeline.StageScan:
		return http.StatusBadRequest
	case pipeline.StageEnrichment:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	writeJSON(ctx, w, status, api.ErrorResponse{Error: err.Error()})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(ctx).Error().
			Err(err).
			Msg("failed to encode response")
	}
}
