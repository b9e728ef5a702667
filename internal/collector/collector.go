// Package collector is the implementation of the source collector component.
// A collector fetches raw records from one external evidentiary source for a
// time window, persists the artifacts into the run workspace, and reports a
// count. Collectors fail independently: one source's failure never aborts
// its siblings or the run.
package collector

import (
	"context"
	"log/slog"
	"time"

	"github.com/vbtn/compliance-audit/internal/auditlog"
	"github.com/vbtn/compliance-audit/internal/report"
)

// Source names, used as result keys and in log lines.
const (
	SourceMail    = "mail"
	SourceSMS     = "sms"
	SourceDevices = "devices"
)

// Result is the per-source outcome of a collection.
type Result struct {
	// Count is the number of records retained after filtering.
	Count int

	// FetchError is set when the source fetch itself failed; the persisted
	// artifact then holds a structured error object instead of a record list,
	// so "no records" and "fetch failed" stay distinguishable.
	FetchError string
}

// Collector fetches records for a time window into the run workspace.
type Collector interface {
	Name() string
	Collect(ctx context.Context, workspaceDir string, since time.Time) (Result, error)
}

// Runner iterates collectors sequentially, isolating their failures.
type Runner struct {
	collectors []Collector
	log        *auditlog.Log
}

// NewRunner returns a Runner over the given collectors.
// Sources whose configuration is absent should simply not be passed in; the
// caller records those as skips.
func NewRunner(log *auditlog.Log, collectors ...Collector) Runner {
	return Runner{collectors: collectors, log: log}
}

// CollectAll runs every collector in program order. A collector error is
// caught, logged with its source context, and reduced to an empty Result;
// the remaining collectors still run.
func (r Runner) CollectAll(ctx context.Context, workspaceDir string, since time.Time) map[string]Result {
	results := make(map[string]Result, len(r.collectors))

	for _, c := range r.collectors {
		slog.Debug("Collecting source", "source", c.Name())
		res, err := c.Collect(ctx, workspaceDir, since)
		if err != nil {
			r.log.Printf("%s collection failed: %v", c.Name(), err)
			res = Result{}
		} else if res.FetchError != "" {
			r.log.Printf("%s fetch failed: %s", c.Name(), res.FetchError)
		} else {
			r.log.Printf("%s collected %d records", c.Name(), res.Count)
		}
		results[c.Name()] = res
	}

	return results
}

// BuildIndex reduces the collection results to the run's index document.
// Missing sources count 0; a failed device fetch counts 0, never negative.
func BuildIndex(runID string, from, generated time.Time, results map[string]Result) report.CollectionIndex {
	return report.CollectionIndex{
		RunID:        runID,
		RunFrom:      from.Format(time.DateOnly),
		GeneratedTS:  generated.UTC().Format(time.RFC3339),
		EmailsCount:  results[SourceMail].Count,
		SMSCount:     results[SourceSMS].Count,
		DevicesCount: results[SourceDevices].Count,
	}
}
