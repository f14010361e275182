package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewPingCmd(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the enrichment service is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := rt.enrichmentClient(cmd); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enrichment service at %s is reachable\n", rt.Config.Enrichment.Endpoint)
			return nil
		},
	}
}
