package scanner

import (
	"context"
	"fmt"
	"os"

	"github.com/de-tools/changeguard/pkg/adapters"
	"github.com/de-tools/changeguard/pkg/models/domain"
	"github.com/rs/zerolog"
)

const checkovBinary = "checkov"

type CheckovOptions struct {
	TemplatePath string
	// ExtraArgs are appended after the fixed arguments, e.g. --skip-check.
	ExtraArgs []string
	Runner    Runner
}

// Checkov scans a template with the checkov CLI.
type Checkov struct {
	opts CheckovOptions
}

func NewCheckov(opts CheckovOptions) *Checkov {
	if opts.Runner == nil {
		opts.Runner = OSRunner{}
	}
	return &Checkov{opts: opts}
}

func (c *Checkov) Findings(ctx context.Context) ([]domain.Finding, error) {
	logger := zerolog.Ctx(ctx)

	if _, err := c.opts.Runner.LookPath(checkovBinary); err != nil {
		return nil, fmt.Errorf("checkov not found in PATH: %w", err)
	}

	args := append([]string{"-f", c.opts.TemplatePath, "--output", "json"}, c.opts.ExtraArgs...)
	out, runErr := c.opts.Runner.Run(ctx, checkovBinary, args...)

	// checkov exits non-zero whenever a check fails; the report is still on stdout.
	reports, err := adapters.ParseCheckovReports(out)
	if err != nil {
		if runErr != nil {
			return nil, fmt.Errorf("checkov scan failed: %w", runErr)
		}
		return nil, fmt.Errorf("checkov scan failed: %w", err)
	}

	findings := adapters.MapCheckovApiToDomain(reports)
	logger.Info().
		Str("template", c.opts.TemplatePath).
		Int("failed_checks", len(findings)).
		Msg("checkov scan completed")
	return findings, nil
}

// FileSource reads a saved checkov JSON report.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Findings(_ context.Context) ([]domain.Finding, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkov report %q: %w", s.path, err)
	}
	reports, err := adapters.ParseCheckovReports(data)
	if err != nil {
		return nil, err
	}
	return adapters.MapCheckovApiToDomain(reports), nil
}

// StaticSource serves raw checkov JSON already in memory.
type StaticSource []byte

func (s StaticSource) Findings(_ context.Context) ([]domain.Finding, error) {
	reports, err := adapters.ParseCheckovReports(s)
	if err != nil {
		return nil, err
	}
	return adapters.MapCheckovApiToDomain(reports), nil
}
