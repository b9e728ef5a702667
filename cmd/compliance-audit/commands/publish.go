package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/ubuntu/decorate"

	"github.com/vbtn/compliance-audit/internal/auditlog"
	"github.com/vbtn/compliance-audit/internal/config"
	"github.com/vbtn/compliance-audit/internal/constants"
	"github.com/vbtn/compliance-audit/internal/identity"
	"github.com/vbtn/compliance-audit/internal/ledger"
	"github.com/vbtn/compliance-audit/internal/publisher"
	"github.com/vbtn/compliance-audit/internal/report"
)

type publishConfig struct {
	InputDir        string
	IdentifiersFile string
}

func installPublishCmd(app *App) {
	publishCmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish summarized ledger data to Coupa, PIEE and SAM.gov",
		Long: `Publish summarized ledger data from the input directory to every configured
target, gated by the presence of required enterprise identifiers.

Targets without both an endpoint URL and an API key are recorded as skipped.
The run exits 3 when required identifiers (UEI, CAGE_CODE) are missing, and 0
otherwise regardless of individual target outcomes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.publishRun()
		},
	}

	publishCmd.Flags().StringVarP(&app.config.Publish.InputDir, "input", "i", "", "directory produced by the processing stage, holding ledger.csv")
	publishCmd.Flags().StringVar(&app.config.Publish.IdentifiersFile, "identifiers", "", "optional TOML file overriding enterprise identifiers from the environment")

	if err := publishCmd.MarkFlagRequired("input"); err != nil {
		panic(fmt.Sprintf("failed to mark input flag as required: %v", err))
	}
	if err := publishCmd.MarkFlagDirname("input"); err != nil {
		panic(fmt.Sprintf("failed to mark input flag as directory: %v", err))
	}

	app.cmd.AddCommand(publishCmd)
}

// publishRun runs the publish pipeline.
func (a *App) publishRun() (err error) {
	defer decorate.OnError(&err, "publish run failed")

	cfg, err := config.Load(a.viper)
	if err != nil {
		return err
	}

	inputDir := a.config.Publish.InputDir
	if err := os.MkdirAll(inputDir, 0750); err != nil {
		return fmt.Errorf("failed to create input directory: %v", err)
	}

	log := auditlog.New(inputDir, constants.PublishLogFileName)
	runID := uuid.NewString()
	runTS := time.Now().UTC().Format(time.RFC3339)

	enterprise := cfg.Enterprise
	if a.config.Publish.IdentifiersFile != "" {
		enterprise, err = identity.LoadFile(a.config.Publish.IdentifiersFile, enterprise)
		if err != nil {
			return err
		}
	}

	// The gate runs before any target is attempted. Required and recommended
	// tiers stay separate: only the former is fatal.
	if err := enterprise.Validate(); err != nil {
		var missingErr *identity.MissingIdentifiersError
		if errors.As(err, &missingErr) {
			log.Printf("Missing required enterprise identifiers: %s. Aborting integrations.", strings.Join(missingErr.Missing, ", "))
			if werr := report.WriteGateFailure(inputDir, missingErr.Missing, runTS); werr != nil {
				return errors.Join(err, werr)
			}
		}
		return err
	}
	if missing := enterprise.MissingRecommended(); len(missing) > 0 {
		log.Printf("Warning: recommended enterprise identifiers missing: %s. Reports will proceed but may be incomplete.", strings.Join(missing, ", "))
	}

	rows, err := ledger.Load(inputDir)
	if err != nil {
		return err
	}
	log.Printf("Loaded %d ledger rows", len(rows))

	clearing, err := ledger.LoadClearing(inputDir)
	if err != nil {
		return err
	}
	if clearing != nil {
		log.Printf("Clearing report present")
	}

	pub := publisher.New(log, cfg)
	results := pub.PublishAll(context.Background(), publisher.Run{
		TS:         runTS,
		Ledger:     rows,
		Enterprise: enterprise,
	})

	rep := report.PublishReport{
		RunID:      runID,
		RunTS:      runTS,
		Counts:     report.Counts{LedgerRows: len(rows)},
		Enterprise: enterprise,
		Results:    results,
	}
	if err := report.WritePublish(inputDir, rep); err != nil {
		return err
	}
	log.Printf("Wrote %s", constants.PublishReportFileName)

	return nil
}
