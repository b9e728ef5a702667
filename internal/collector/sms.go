package collector

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/vbtn/compliance-audit/internal/constants"
	"github.com/vbtn/compliance-audit/internal/fileutils"
)

// OperationalNumber is always collected in addition to any configured
// numbers. Fixed business requirement, not a configurable default.
const OperationalNumber = "2704018770"

// Message is one SMS record as listed by the provider.
type Message struct {
	SID      string `json:"sid"`
	From     string `json:"from"`
	To       string `json:"to"`
	Body     string `json:"body"`
	DateSent string `json:"date_sent"`
}

// MessageLister is the SMS provider collaborator: lists messages sent to a
// number since a date.
type MessageLister interface {
	ListSince(ctx context.Context, to string, since time.Time) ([]Message, error)
}

// SMSCollector flattens messages across all collected numbers into one
// sequence persisted to sms.json.
type SMSCollector struct {
	lister  MessageLister
	numbers []string
}

// NewSMS returns an SMS collector over the configured numbers plus the
// operational number.
func NewSMS(lister MessageLister, numbers []string) *SMSCollector {
	withOps := numbers
	found := false
	for _, n := range numbers {
		if n == OperationalNumber {
			found = true
			break
		}
	}
	if !found {
		withOps = append(append([]string{}, numbers...), OperationalNumber)
	}

	return &SMSCollector{lister: lister, numbers: withOps}
}

// Name implements Collector.
func (c *SMSCollector) Name() string { return SourceSMS }

// Collect lists messages for each number since the date and writes the full
// flattened collection to sms.json.
func (c *SMSCollector) Collect(ctx context.Context, workspaceDir string, since time.Time) (Result, error) {
	all := []Message{}
	for _, num := range c.numbers {
		msgs, err := c.lister.ListSince(ctx, num, since)
		if err != nil {
			return Result{}, fmt.Errorf("failed to list messages for %s: %v", num, err)
		}
		all = append(all, msgs...)
	}

	if err := fileutils.WriteJSON(filepath.Join(workspaceDir, constants.SMSFileName), all); err != nil {
		return Result{}, fmt.Errorf("failed to write sms artifact: %v", err)
	}

	return Result{Count: len(all)}, nil
}
