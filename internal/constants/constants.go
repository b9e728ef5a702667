// Package constants defines the constants shared across the application.
package constants

import "log/slog"

const (
	// CmdName is the name of the command line tool.
	CmdName = "compliance-audit"

	// DefaultLogLevel is the default log level selected without any verbosity flags.
	DefaultLogLevel = slog.LevelWarn

	// DailyFolder is the folder under the output directory holding the run workspaces.
	DailyFolder = "daily"

	// RunFolderPrefix is the prefix of a run workspace directory, followed by the ISO start date.
	RunFolderPrefix = "from-"

	// IndexFileName is the collection index written at the root of a run workspace.
	IndexFileName = "index.json"

	// SMSFileName is the flattened SMS artifact written in a run workspace.
	SMSFileName = "sms.json"

	// DevicesFileName is the device inventory artifact written in a run workspace.
	DevicesFileName = "devices.json"

	// MailSummaryFileName is the retained mail summary artifact written in a run workspace.
	MailSummaryFileName = "emails.json"

	// PublishReportFileName is the publish pipeline report written in the input directory.
	PublishReportFileName = "integrations_report.json"

	// LedgerFileName is the ledger consumed by the publish pipeline.
	LedgerFileName = "ledger.csv"

	// ClearingReportPath is the optional clearing report, relative to the input directory.
	ClearingReportPath = "clearing/clearing_report.json"

	// CollectLogFileName is the audit log of the collection pipeline.
	CollectLogFileName = "audit.log"

	// PublishLogFileName is the audit log of the publish pipeline.
	PublishLogFileName = "integrations.log"

	// PayloadSource identifies this system in outbound payloads.
	PayloadSource = "compliance-audit"
)

// Exit codes documented for schedulers wrapping the tool.
const (
	// ExitUsage is returned on command parsing or argument validation errors.
	ExitUsage = 2

	// ExitMissingIdentifiers is returned when required enterprise identifiers are absent.
	ExitMissingIdentifiers = 3
)
