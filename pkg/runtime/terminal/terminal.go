package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/changeguard/pkg/runtime/terminal/commands"
	"github.com/de-tools/changeguard/pkg/runtime/terminal/export"
	"github.com/de-tools/changeguard/pkg/services/config"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	runtime    *commands.Runtime
	logOutput  io.Writer
	configPath string
	debug      bool
	rootCmd    *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Services  commands.Services
	Output    io.Writer
	LogOutput io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}
	if opts.Services == nil {
		opts.Services = commands.DefaultServices{}
	}

	cli := &CLI{
		runtime: &commands.Runtime{
			Services: opts.Services,
			Reporter: export.NewReporter(opts.Output),
		},
		logOutput: opts.LogOutput,
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	return cli
}

func (cli *CLI) Execute(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "changeguard",
		Short:             "CloudFormation change analysis with policy risk context",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: cli.setup,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&cli.configPath, "config", "c", "", "Path to the configuration file")
	flags.BoolVar(&cli.debug, "debug", false, "Enable debug logging")
	flags.String("region", "", "AWS region (default us-west-2)")
	flags.String("aws-profile", "", "AWS shared config profile")
	flags.String("credentials", "", "Path to the enrichment credentials file")
	flags.String("profile", "", "Enrichment credentials profile")
	flags.String("endpoint", "", "Enrichment service endpoint")

	cmd.AddCommand(commands.NewAnalyzeCmd(cli.runtime))
	cmd.AddCommand(commands.NewRenderCmd(cli.runtime))
	cmd.AddCommand(commands.NewPingCmd(cli.runtime))

	return cmd
}

func (cli *CLI) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cli.configPath, commands.Overrides(cmd))
	if err != nil {
		return err
	}

	logger := NewLogger(cli.logOutput, cfg.LogLevel, cli.debug)
	cli.runtime.Config = cfg
	cli.runtime.Logger = logger

	cmd.SetContext(logger.WithContext(cmd.Context()))
	return nil
}
