// Main package for the compliance-audit command line tool.
package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/vbtn/compliance-audit/cmd/compliance-audit/commands"
	"github.com/vbtn/compliance-audit/internal/constants"
	"github.com/vbtn/compliance-audit/internal/identity"
)

func main() {
	slog.SetLogLoggerLevel(constants.DefaultLogLevel)

	a, err := commands.New()
	if err != nil {
		os.Exit(1)
	}

	os.Exit(run(a))
}

type app interface {
	Run() error
	UsageError() bool
}

func run(a app) int {
	if err := a.Run(); err != nil {
		slog.Error(err.Error())

		var missingErr *identity.MissingIdentifiersError
		if errors.As(err, &missingErr) {
			return constants.ExitMissingIdentifiers
		}
		if a.UsageError() {
			return constants.ExitUsage
		}
		return 1
	}

	return 0
}
