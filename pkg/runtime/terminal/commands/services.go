package commands

import (
	"context"
	"fmt"

	"github.com/de-tools/changeguard/pkg/services/cloudformation"
	"github.com/de-tools/changeguard/pkg/services/config"
	"github.com/de-tools/changeguard/pkg/services/enrichment"
	"github.com/de-tools/changeguard/pkg/services/github"
	"github.com/de-tools/changeguard/pkg/services/pipeline"
	"github.com/de-tools/changeguard/pkg/services/scanner"
	"github.com/rs/zerolog"
)

type EnrichmentClient interface {
	enrichment.Decorator
	Ping(ctx context.Context) error
}

// Services builds the external collaborators of a run.
type Services interface {
	Enrichment(cfg *config.Config) (EnrichmentClient, error)
	ChangeSet(ctx context.Context, cfg *config.Config) (pipeline.ChangeSource, pipeline.AccountResolver, error)
	Checkov(cfg *config.Config) pipeline.FindingSource
	Commenter(cfg *config.Config, logger zerolog.Logger) (pipeline.Commenter, error)
}

type DefaultServices struct{}

func (DefaultServices) Enrichment(cfg *config.Config) (EnrichmentClient, error) {
	return enrichment.NewClient(cfg.EnrichmentConfig())
}

func (DefaultServices) ChangeSet(ctx context.Context, cfg *config.Config) (pipeline.ChangeSource, pipeline.AccountResolver, error) {
	if err := cfg.ValidateChangeSet(); err != nil {
		return nil, nil, err
	}

	awsCfg, err := cloudformation.LoadConfig(ctx, cfg.AWSProfile, cfg.Region)
	if err != nil {
		return nil, nil, err
	}

	return cloudformation.NewSourceFromConfig(cfg.ChangeSetSettings(), *awsCfg),
		cloudformation.NewAccountResolverFromConfig(*awsCfg),
		nil
}

func (DefaultServices) Checkov(cfg *config.Config) pipeline.FindingSource {
	return scanner.NewCheckov(scanner.CheckovOptions{
		TemplatePath: cfg.Template,
		ExtraArgs:    cfg.Checkov.Args,
	})
}

func (DefaultServices) Commenter(cfg *config.Config, logger zerolog.Logger) (pipeline.Commenter, error) {
	commenter, err := github.NewCommenter(cfg.GitHubConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("cannot post the comment: %w (use --dry-run to print it instead)", err)
	}
	return commenter, nil
}
