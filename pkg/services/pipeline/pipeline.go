package pipeline

import (
	"context"
	"fmt"

	"github.com/de-tools/changeguard/pkg/models/domain"
	"github.com/de-tools/changeguard/pkg/services/changeset"
	"github.com/de-tools/changeguard/pkg/services/enrichment"
	"github.com/de-tools/changeguard/pkg/services/report"
	"github.com/rs/zerolog"
)

type Stage string

const (
	StageAccount    Stage = "account"
	StageChangeSet  Stage = "change set"
	StageScan       Stage = "policy scan"
	StageEnrichment Stage = "enrichment"
	StageRender     Stage = "render"
	StageComment    Stage = "comment"
)

type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

type ChangeSource interface {
	Changes(ctx context.Context) ([]domain.ResourceChange, error)
}

type FindingSource interface {
	Findings(ctx context.Context) ([]domain.Finding, error)
}

type AccountResolver interface {
	Account(ctx context.Context) (string, error)
}

type Commenter interface {
	Post(ctx context.Context, body string) error
}

type Options struct {
	Region        string
	EditorBaseURL string
	CommentTitle  string
	Concurrency   int
}

type Pipeline struct {
	changes   ChangeSource
	findings  FindingSource
	account   AccountResolver
	decorator enrichment.Decorator
	commenter Commenter
	opts      Options
}

func New(
	changes ChangeSource,
	findings FindingSource,
	account AccountResolver,
	decorator enrichment.Decorator,
	commenter Commenter,
	opts Options,
) *Pipeline {
	return &Pipeline{
		changes:   changes,
		findings:  findings,
		account:   account,
		decorator: decorator,
		commenter: commenter,
		opts:      opts,
	}
}

// Analysis is everything derived from the change set before enrichment.
type Analysis struct {
	Settings   domain.RunSettings
	Classified changeset.Classified
	Alerts     []domain.Alert
	Joined     int
	Findings   int
}

type Result struct {
	Modified string
	Created  string
	Body     string
	Alerts   int
	// CommentErr is set when the reports were produced but could not be posted.
	CommentErr error
}

// Analyze fetches the change set and scan findings and synthesizes alerts for
// modified resources.
func (p *Pipeline) Analyze(ctx context.Context) (*Analysis, error) {
	logger := zerolog.Ctx(ctx)

	account, err := p.account.Account(ctx)
	if err != nil {
		return nil, &StageError{Stage: StageAccount, Err: err}
	}
	settings := domain.RunSettings{Account: account, Region: p.opts.Region, EditorBaseURL: p.opts.EditorBaseURL}

	changes, err := p.changes.Changes(ctx)
	if err != nil {
		return nil, &StageError{Stage: StageChangeSet, Err: err}
	}

	classified := changeset.Classify(changes)
	if classified.Skipped > 0 {
		logger.Debug().Int("skipped", classified.Skipped).Msg("ignoring changes that neither modify nor create resources")
	}

	findings, err := p.findings.Findings(ctx)
	if err != nil {
		return nil, &StageError{Stage: StageScan, Err: err}
	}
	joined := changeset.Join(findings, classified)
	if dropped := len(findings) - joined; dropped > 0 {
		logger.Debug().Int("dropped", dropped).Msg("findings without a changed resource")
	}

	alerts := changeset.Synthesize(classified.Modified, settings.Account, settings.Region)

	logger.Info().
		Int("changes", len(changes)).
		Int("modified", classified.Modified.Len()).
		Int("created", classified.Created.Len()).
		Int("findings", joined).
		Int("alerts", len(alerts)).
		Msg("change set analyzed")

	return &Analysis{
		Settings:   settings,
		Classified: classified,
		Alerts:     alerts,
		Joined:     joined,
		Findings:   len(findings),
	}, nil
}

// Render builds both reports and the comment body from already decorated alerts.
func (p *Pipeline) Render(analysis *Analysis, decorated []domain.DecoratedAlert) (*Result, error) {
	renderer := report.NewRenderer(analysis.Settings.EditorBaseURL)
	result := &Result{
		Modified: renderer.RenderModified(decorated, analysis.Classified.Modified),
		Created:  renderer.RenderCreated(analysis.Classified.Created),
		Alerts:   len(decorated),
	}

	body, err := report.CommentBody(p.opts.CommentTitle, result.Modified, result.Created)
	if err != nil {
		return nil, &StageError{Stage: StageRender, Err: err}
	}
	result.Body = body
	return result, nil
}

// Report runs every stage up to rendering. No report is produced if any alert
// fails to decorate.
func (p *Pipeline) Report(ctx context.Context) (*Result, error) {
	analysis, err := p.Analyze(ctx)
	if err != nil {
		return nil, err
	}

	decorated, err := enrichment.DecorateAll(ctx, p.decorator, analysis.Alerts, p.opts.Concurrency)
	if err != nil {
		return nil, &StageError{Stage: StageEnrichment, Err: err}
	}

	return p.Render(analysis, decorated)
}

// Run produces the reports and hands the comment to the commenter. A comment
// failure is returned together with the rendered result.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	result, err := p.Report(ctx)
	if err != nil {
		return nil, err
	}

	if err := p.commenter.Post(ctx, result.Body); err != nil {
		result.CommentErr = &StageError{Stage: StageComment, Err: err}
		return result, result.CommentErr
	}
	return result, nil
}
