package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/ubuntu/decorate"

	"github.com/vbtn/compliance-audit/internal/auditlog"
	"github.com/vbtn/compliance-audit/internal/collector"
	"github.com/vbtn/compliance-audit/internal/config"
	"github.com/vbtn/compliance-audit/internal/constants"
	"github.com/vbtn/compliance-audit/internal/mailclient"
	"github.com/vbtn/compliance-audit/internal/report"
	"github.com/vbtn/compliance-audit/internal/smsclient"
	"github.com/vbtn/compliance-audit/internal/uploader"
	"github.com/vbtn/compliance-audit/internal/workspace"
)

type collectConfig struct {
	OutputDir string
	Targets   []string
	Since     string
}

func installCollectCmd(app *App) {
	collectCmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect compliance artifacts into a dated run workspace",
		Long: `Collect inbound mail, SMS and mobile-device inventory into a date-keyed run
workspace under the output directory, and write its index document.

Sources without configuration are skipped. Re-running for an already
processed start date overwrites that date's files.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if app.config.Collect.Since == "" {
				return nil
			}
			if _, err := time.Parse(time.DateOnly, app.config.Collect.Since); err != nil {
				app.cmd.SilenceUsage = false
				return fmt.Errorf("invalid --since date %q, use YYYY-MM-DD", app.config.Collect.Since)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.Info("Running collect command")
			return app.collectRun()
		},
	}

	collectCmd.Flags().StringVarP(&app.config.Collect.OutputDir, "output-dir", "o", "", "directory to create run workspaces under")
	collectCmd.Flags().StringSliceVarP(&app.config.Collect.Targets, "targets", "t", nil, "comma-separated target recipient addresses to retain mail for")
	collectCmd.Flags().StringVar(&app.config.Collect.Since, "since", "", "start date (YYYY-MM-DD) to pull from; defaults to the current UTC date")

	for _, flag := range []string{"output-dir", "targets"} {
		if err := collectCmd.MarkFlagRequired(flag); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", flag, err))
		}
	}
	if err := collectCmd.MarkFlagDirname("output-dir"); err != nil {
		panic(fmt.Sprintf("failed to mark output-dir flag as directory: %v", err))
	}

	app.cmd.AddCommand(collectCmd)
}

// collectRun runs the collection pipeline.
func (a *App) collectRun() (err error) {
	defer decorate.OnError(&err, "collection run failed")

	cfg, err := config.Load(a.viper)
	if err != nil {
		return err
	}

	since := time.Now().UTC().Truncate(24 * time.Hour)
	if a.config.Collect.Since != "" {
		// Format validated in PreRunE.
		since, err = time.Parse(time.DateOnly, a.config.Collect.Since)
		if err != nil {
			return err
		}
	}

	ws, err := workspace.Create(a.config.Collect.OutputDir, since)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log := auditlog.New(ws, constants.CollectLogFileName)
	log.Printf("Starting collection run %s from %s", runID, since.Format(time.DateOnly))

	ctx := context.Background()
	runner := collector.NewRunner(log, a.buildCollectors(cfg, log)...)
	results := runner.CollectAll(ctx, ws, since)

	idx := collector.BuildIndex(runID, since, time.Now(), results)
	if err := report.WriteIndex(ws, idx); err != nil {
		return err
	}
	log.Printf("Wrote %s", constants.IndexFileName)

	a.archiveIndex(ctx, cfg, log, ws)

	log.Printf("Collection run %s done", runID)
	return nil
}

// buildCollectors assembles the collectors whose configuration is present.
// Absence of configuration is a deliberate skip, not an error.
func (a *App) buildCollectors(cfg config.Config, log *auditlog.Log) []collector.Collector {
	var collectors []collector.Collector

	if cfg.Mail.Configured() {
		targets := a.config.Collect.Targets
		if cfg.HPFaxEmail != "" {
			targets = append(append([]string{}, targets...), cfg.HPFaxEmail)
		}
		open := func(ctx context.Context) (collector.Mailbox, error) {
			return mailclient.Dial(cfg.Mail)
		}
		collectors = append(collectors, collector.NewMail(open, targets))
	} else {
		log.Printf("Skipping mail: host or user not set")
	}

	if cfg.SMS.Configured() {
		collectors = append(collectors, collector.NewSMS(smsclient.New(cfg.SMS), cfg.SMS.Numbers))
	} else {
		log.Printf("Skipping sms: credentials not set")
	}

	if cfg.Devices.Configured() {
		collectors = append(collectors, collector.NewDevices(cfg.Devices))
	} else {
		log.Printf("Skipping devices: API URL or key not set")
	}

	return collectors
}

// archiveIndex uploads the index best-effort; failure is logged, never fatal.
func (a *App) archiveIndex(ctx context.Context, cfg config.Config, log *auditlog.Log, ws string) {
	up := uploader.New(cfg.Archive)
	if !up.Configured() {
		slog.Info("Archive endpoint not configured, skipping index upload")
		return
	}

	if err := up.Upload(ctx, filepath.Join(ws, constants.IndexFileName)); err != nil {
		log.Printf("Archive upload failed: %v", err)
		return
	}
	log.Printf("Archive upload done")
}
