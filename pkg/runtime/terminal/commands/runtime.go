package commands

import (
	"github.com/de-tools/changeguard/pkg/runtime/terminal/export"
	"github.com/de-tools/changeguard/pkg/services/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Runtime is shared by every command and filled in before a command runs.
type Runtime struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Services Services
	Reporter *export.Reporter
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"region":       "region",
	"aws-profile":  "aws_profile",
	"profile":      "enrichment.profile",
	"credentials":  "enrichment.credentials",
	"endpoint":     "enrichment.endpoint",
	"concurrency":  "enrichment.concurrency",
	"editor-url":   "editor_url",
	"stack":        "stack_name",
	"bucket":       "bucket",
	"template":     "template",
	"template-key": "template_key",
	"cleanup":      "cleanup",
}

// Overrides collects the configuration keys set explicitly on the command line.
func Overrides(cmd *cobra.Command) map[string]any {
	overrides := make(map[string]any)
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			overrides[key] = f.Value.String()
		}
	}
	return overrides
}

// enrichmentClient resolves credentials, validates them and checks that the
// endpoint answers before anything else is touched.
func (rt *Runtime) enrichmentClient(cmd *cobra.Command) (EnrichmentClient, error) {
	if err := rt.Config.ResolveCredentials(); err != nil {
		return nil, err
	}
	if err := rt.Config.Validate(); err != nil {
		return nil, err
	}

	client, err := rt.Services.Enrichment(rt.Config)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(cmd.Context()); err != nil {
		return nil, err
	}
	return client, nil
}
