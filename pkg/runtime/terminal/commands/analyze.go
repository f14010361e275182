package commands

import (
	"fmt"

	"github.com/de-tools/changeguard/pkg/runtime/terminal/export"
	"github.com/de-tools/changeguard/pkg/services/cloudformation"
	"github.com/de-tools/changeguard/pkg/services/github"
	"github.com/de-tools/changeguard/pkg/services/pipeline"
	"github.com/de-tools/changeguard/pkg/services/scanner"
	"github.com/spf13/cobra"
)

type AnalyzeCmd struct {
	changeSetPath string
	checkovPath   string
	account       string
	dryRun        bool
	rt            *Runtime
}

func NewAnalyzeCmd(rt *Runtime) *cobra.Command {
	ac := &AnalyzeCmd{rt: rt}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze template changes and comment on the pull request",
		Args:  cobra.NoArgs,
		RunE:  ac.run,
	}

	cmd.Flags().String("stack", "", "Stack to create the change set against")
	cmd.Flags().String("bucket", "", "Bucket the template is uploaded to")
	cmd.Flags().String("template", "", "Path to the CloudFormation template (default template.yaml)")
	cmd.Flags().String("template-key", "", "Object key of the uploaded template (default template file name)")
	cmd.Flags().Bool("cleanup", false, "Delete the change set once it has been described")
	cmd.Flags().Int("concurrency", 0, "Maximum concurrent enrichment calls (default 4)")
	cmd.Flags().String("editor-url", "", "Base URL of the alert context links")

	cmd.Flags().StringVar(&ac.changeSetPath, "change-set", "", "Read a saved DescribeChangeSet response instead of creating a change set")
	cmd.Flags().StringVar(&ac.checkovPath, "checkov", "", "Read a saved checkov JSON report instead of running checkov")
	cmd.Flags().StringVar(&ac.account, "account", "", "Account id stamped on alerts (default resolved through STS)")
	cmd.Flags().BoolVar(&ac.dryRun, "dry-run", false, "Print the comment instead of posting it")

	return cmd
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	rt := ac.rt

	client, err := rt.enrichmentClient(cmd)
	if err != nil {
		return err
	}

	var commenter pipeline.Commenter = github.WriterCommenter{W: cmd.OutOrStdout()}
	if !ac.dryRun {
		if commenter, err = rt.Services.Commenter(rt.Config, rt.Logger); err != nil {
			return err
		}
	}

	var (
		changes pipeline.ChangeSource
		account pipeline.AccountResolver
	)
	if ac.changeSetPath != "" {
		changes = cloudformation.NewFileSource(ac.changeSetPath)
		account = cloudformation.StaticAccount(ac.account)
	} else {
		if changes, account, err = rt.Services.ChangeSet(ctx, rt.Config); err != nil {
			return err
		}
		if ac.account != "" {
			account = cloudformation.StaticAccount(ac.account)
		}
	}

	var findings pipeline.FindingSource
	if ac.checkovPath != "" {
		findings = scanner.NewFileSource(ac.checkovPath)
	} else {
		findings = rt.Services.Checkov(rt.Config)
	}

	p := pipeline.New(changes, findings, account, client, commenter, pipeline.Options{
		Region:        rt.Config.Region,
		EditorBaseURL: rt.Config.EditorURL,
		CommentTitle:  rt.Config.CommentTitle,
		Concurrency:   rt.Config.Enrichment.Concurrency,
	})

	result, err := p.Run(ctx)
	if result == nil {
		return err
	}
	if ac.dryRun {
		return err
	}

	summary := export.Summary{
		Alerts:   result.Alerts,
		Modified: result.Modified,
		Created:  result.Created,
		Target:   fmt.Sprintf("%s#%s", rt.Config.GitHub.Repository, rt.Config.GitHub.PullRequest),
		Posted:   result.CommentErr == nil,
	}
	if reportErr := rt.Reporter.Handle(&summary); reportErr != nil {
		rt.Logger.Error().Err(reportErr).Msg("failed to print summary")
	}
	return err
}
