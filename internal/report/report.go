// Package report serializes the final aggregate of a run to its well-known
// file path. Exactly one top-level document is written per run: the
// collection index, the publish report, or the gate's error document. Any
// prior file at that path is overwritten.
package report

import (
	"path/filepath"

	"github.com/vbtn/compliance-audit/internal/constants"
	"github.com/vbtn/compliance-audit/internal/fileutils"
	"github.com/vbtn/compliance-audit/internal/identity"
	"github.com/vbtn/compliance-audit/internal/publisher"
)

// CollectionIndex summarizes one collection run.
// Counts reflect the literal number of records retained after filtering.
type CollectionIndex struct {
	RunID        string `json:"run_id"`
	RunFrom      string `json:"run_from"`
	GeneratedTS  string `json:"generated_ts"`
	EmailsCount  int    `json:"emails_count"`
	SMSCount     int    `json:"sms_count"`
	DevicesCount int    `json:"devices_count"`
}

// Counts holds the input counts of a publish run.
type Counts struct {
	LedgerRows int `json:"ledger_rows"`
}

// PublishReport summarizes one publish run. It is only ever written in full,
// after the identifier gate has passed.
type PublishReport struct {
	RunID      string                      `json:"run_id"`
	RunTS      string                      `json:"run_ts"`
	Counts     Counts                      `json:"counts"`
	Enterprise identity.Identifiers        `json:"enterprise"`
	Results    map[string]publisher.Result `json:"results"`
}

// GateFailure is the minimal error document written when the identifier gate
// rejects the run. It is mutually exclusive with PublishReport within a run.
type GateFailure struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing"`
	RunTS   string   `json:"run_ts"`
}

// WriteIndex writes the collection index into the run workspace.
func WriteIndex(workspaceDir string, idx CollectionIndex) error {
	return fileutils.WriteJSON(filepath.Join(workspaceDir, constants.IndexFileName), idx)
}

// WritePublish writes the publish report into the input directory.
func WritePublish(dir string, r PublishReport) error {
	return fileutils.WriteJSON(filepath.Join(dir, constants.PublishReportFileName), r)
}

// WriteGateFailure writes the identifier gate error document in place of the
// publish report.
func WriteGateFailure(dir string, missing []string, runTS string) error {
	doc := GateFailure{
		Error:   "missing_identifiers",
		Missing: missing,
		RunTS:   runTS,
	}
	return fileutils.WriteJSON(filepath.Join(dir, constants.PublishReportFileName), doc)
}
