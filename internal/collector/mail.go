package collector

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vbtn/compliance-audit/internal/constants"
	"github.com/vbtn/compliance-audit/internal/fileutils"
)

// RawMessage is one fetched message with its provider-assigned unique id.
type RawMessage struct {
	UID uint32
	Raw []byte
}

// Mailbox is the mail retrieval collaborator: an authenticated session on the
// inbox, searchable by calendar date.
type Mailbox interface {
	// SearchSince returns the uids of messages received since the given
	// calendar date. Date granularity, not timestamp.
	SearchSince(since time.Time) ([]uint32, error)
	// Fetch returns the full raw content of the given messages.
	Fetch(uids []uint32) ([]RawMessage, error)
	Close() error
}

// MailboxFactory opens an authenticated Mailbox session.
type MailboxFactory func(ctx context.Context) (Mailbox, error)

// MailSummary is the retained per-message summary written to emails.json.
type MailSummary struct {
	UID     uint32   `json:"uid"`
	Subject string   `json:"subject"`
	From    string   `json:"from"`
	To      []string `json:"to"`
	Date    string   `json:"date"`
}

// MailCollector retains only messages addressed to one of the target
// recipients, persisting each verbatim by uid.
type MailCollector struct {
	open    MailboxFactory
	targets map[string]struct{}
}

// NewMail returns a mail collector. Target matching is case-insensitive.
func NewMail(open MailboxFactory, targets []string) *MailCollector {
	set := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		set[t] = struct{}{}
	}
	return &MailCollector{open: open, targets: set}
}

// Name implements Collector.
func (c *MailCollector) Name() string { return SourceMail }

// Collect searches the inbox since the given date, fetches each match, and
// retains messages whose recipient list intersects the target set. Retained
// messages are persisted verbatim as <uid>.eml and summarized in emails.json.
func (c *MailCollector) Collect(ctx context.Context, workspaceDir string, since time.Time) (Result, error) {
	mb, err := c.open(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open mailbox: %v", err)
	}
	defer func() {
		if err := mb.Close(); err != nil {
			slog.Warn("Failed to close mailbox", "error", err)
		}
	}()

	uids, err := mb.SearchSince(since)
	if err != nil {
		return Result{}, fmt.Errorf("mailbox search failed: %v", err)
	}

	msgs, err := mb.Fetch(uids)
	if err != nil {
		return Result{}, fmt.Errorf("mailbox fetch failed: %v", err)
	}

	summaries := []MailSummary{}
	for _, m := range msgs {
		summary, ok := c.retain(m)
		if !ok {
			continue
		}

		path := filepath.Join(workspaceDir, fmt.Sprintf("%d.eml", m.UID))
		if err := os.WriteFile(path, m.Raw, 0640); err != nil {
			return Result{}, fmt.Errorf("failed to persist message %d: %v", m.UID, err)
		}
		summaries = append(summaries, summary)
	}

	if err := fileutils.WriteJSON(filepath.Join(workspaceDir, constants.MailSummaryFileName), summaries); err != nil {
		return Result{}, fmt.Errorf("failed to write mail summary: %v", err)
	}

	return Result{Count: len(summaries)}, nil
}

// retain parses the message headers and decides whether to keep the message.
// Unparseable messages are dropped with a warning rather than failing the source.
func (c *MailCollector) retain(m RawMessage) (MailSummary, bool) {
	parsed, err := mail.ReadMessage(bytes.NewReader(m.Raw))
	if err != nil {
		slog.Warn("Failed to parse message headers, dropping", "uid", m.UID, "error", err)
		return MailSummary{}, false
	}

	addrs, err := parsed.Header.AddressList("To")
	if err != nil {
		slog.Debug("Failed to parse To header, dropping", "uid", m.UID, "error", err)
		return MailSummary{}, false
	}

	var recipients []string
	matched := false
	for _, a := range addrs {
		addr := strings.ToLower(a.Address)
		recipients = append(recipients, addr)
		if _, ok := c.targets[addr]; ok {
			matched = true
		}
	}
	if !matched {
		return MailSummary{}, false
	}

	return MailSummary{
		UID:     m.UID,
		Subject: parsed.Header.Get("Subject"),
		From:    parsed.Header.Get("From"),
		To:      recipients,
		Date:    parsed.Header.Get("Date"),
	}, true
}
