// Package commands implements the compliance-audit command line application.
package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vbtn/compliance-audit/internal/cli"
	"github.com/vbtn/compliance-audit/internal/constants"
)

// App represents the application.
type App struct {
	cmd   *cobra.Command
	viper *viper.Viper

	config appConfig
}

// appConfig holds the command line configuration for the application.
type appConfig struct {
	Verbosity int
	JSONLogs  bool

	Collect collectConfig
	Publish publishConfig
}

// New registers commands and returns a new App.
func New() (*App, error) {
	a := App{}

	a.cmd = &cobra.Command{
		Use:           constants.CmdName,
		Short:         "Collect compliance artifacts and publish ledger summaries",
		Long: "Compliance audit runner. The collect command gathers inbound mail, SMS and " +
			"device inventory into a dated run workspace; the publish command posts summarized " +
			"ledger data to Coupa, PIEE and SAM.gov, gated on enterprise identifiers.",
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Required flags are normally validated only after this hook; check
			// them here so their absence still counts as a usage error.
			if err := cmd.ValidateRequiredFlags(); err != nil {
				return err
			}

			// Command parsing has been successful. Returns to not print usage anymore.
			a.cmd.SilenceUsage = true
			cli.SetSlog(a.config.Verbosity, a.config.JSONLogs)

			return cli.InitViperConfig(a.cmd, a.viper)
		},
	}
	a.viper = viper.New()
	a.cmd.CompletionOptions.HiddenDefaultCmd = true

	a.cmd.PersistentFlags().CountVarP(&a.config.Verbosity, "verbose", "v", "issue INFO (-v), DEBUG (-vv)")
	a.cmd.PersistentFlags().BoolVar(&a.config.JSONLogs, "json-logs", false, "enable JSON formatted logs")
	cli.InstallConfigFlag(a.cmd)

	installCollectCmd(&a)
	installPublishCmd(&a)

	if err := a.viper.BindPFlags(a.cmd.PersistentFlags()); err != nil {
		return nil, err
	}

	return &a, nil
}

// Run executes the command and associated process, returning an error if any.
func (a App) Run() error {
	return a.cmd.Execute()
}

// UsageError returns if the error is a command parsing or runtime one.
func (a App) UsageError() bool {
	return !a.cmd.SilenceUsage
}

// RootCmd returns the root command.
func (a App) RootCmd() cobra.Command {
	return *a.cmd
}
