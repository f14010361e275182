package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/de-tools/changeguard/pkg/adapters"
	"github.com/de-tools/changeguard/pkg/models/api"
	"github.com/de-tools/changeguard/pkg/models/domain"
	"github.com/de-tools/changeguard/pkg/services/cloudformation"
	"github.com/de-tools/changeguard/pkg/services/pipeline"
	"github.com/de-tools/changeguard/pkg/services/scanner"
	"github.com/spf13/cobra"
)

type RenderCmd struct {
	changeSetPath string
	checkovPath   string
	decoratedPath string
	account       string
	rt            *Runtime
}

// NewRenderCmd renders the comment from saved inputs without calling any service.
func NewRenderCmd(rt *Runtime) *cobra.Command {
	rc := &RenderCmd{rt: rt}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the change analysis comment from saved inputs",
		Args:  cobra.NoArgs,
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.changeSetPath, "change-set", "", "Saved DescribeChangeSet response")
	cmd.Flags().StringVar(&rc.checkovPath, "checkov", "", "Saved checkov JSON report")
	cmd.Flags().StringVar(&rc.decoratedPath, "decorated", "", "Saved enrichment responses, one per alert in synthesis order")
	cmd.Flags().StringVar(&rc.account, "account", "", "Account id stamped on alerts")
	cmd.Flags().String("editor-url", "", "Base URL of the alert context links")

	_ = cmd.MarkFlagRequired("change-set")
	_ = cmd.MarkFlagRequired("checkov")

	return cmd
}

func (rc *RenderCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	p := pipeline.New(
		cloudformation.NewFileSource(rc.changeSetPath),
		scanner.NewFileSource(rc.checkovPath),
		cloudformation.StaticAccount(rc.account),
		nil,
		nil,
		pipeline.Options{
			Region:        rc.rt.Config.Region,
			EditorBaseURL: rc.rt.Config.EditorURL,
			CommentTitle:  rc.rt.Config.CommentTitle,
		},
	)

	analysis, err := p.Analyze(ctx)
	if err != nil {
		return err
	}

	decorated, err := loadDecorated(rc.decoratedPath)
	if err != nil {
		return err
	}
	if rc.decoratedPath != "" && len(decorated) != len(analysis.Alerts) {
		return fmt.Errorf("%s holds %d decorated alerts but the change set yields %d",
			rc.decoratedPath, len(decorated), len(analysis.Alerts))
	}

	result, err := p.Render(analysis, decorated)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), result.Body)
	return err
}

func loadDecorated(path string) ([]domain.DecoratedAlert, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read decorated alerts: %w", err)
	}

	var responses []api.DecoratedAlert
	if err := json.Unmarshal(data, &responses); err != nil {
		return nil, fmt.Errorf("failed to parse decorated alerts %s: %w", path, err)
	}

	decorated := make([]domain.DecoratedAlert, 0, len(responses))
	for _, response := range responses {
		decorated = append(decorated, adapters.MapDecoratedAlertApiToDomain(response))
	}
	return decorated, nil
}
