// Package mailclient implements the Mailbox collaborator over IMAP.
package mailclient

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/emersion/go-imap"
	imapclient "github.com/emersion/go-imap/client"

	"github.com/vbtn/compliance-audit/internal/collector"
	"github.com/vbtn/compliance-audit/internal/config"
)

// IMAP is an authenticated IMAP session on the inbox.
type IMAP struct {
	c *imapclient.Client
}

// Dial connects over TLS, authenticates, and selects the inbox read-only.
func Dial(cfg config.Mail) (*IMAP, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	c, err := imapclient.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %v", addr, err)
	}

	if err := c.Login(cfg.User, cfg.Password); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("login failed for %s: %v", cfg.User, err)
	}

	if _, err := c.Select("INBOX", true); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("failed to select inbox: %v", err)
	}

	return &IMAP{c: c}, nil
}

// SearchSince implements collector.Mailbox. IMAP SINCE has calendar date
// granularity, matching the collection window contract.
func (m *IMAP) SearchSince(since time.Time) ([]uint32, error) {
	criteria := imap.NewSearchCriteria()
	criteria.Since = since

	uids, err := m.c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("search failed: %v", err)
	}
	return uids, nil
}

// Fetch implements collector.Mailbox, returning each message's full raw content.
func (m *IMAP) Fetch(uids []uint32) ([]collector.RawMessage, error) {
	if len(uids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- m.c.UidFetch(seqset, items, messages)
	}()

	var out []collector.RawMessage
	for msg := range messages {
		body := msg.GetBody(section)
		if body == nil {
			slog.Warn("Message fetched without body section", "uid", msg.Uid)
			continue
		}
		raw, err := io.ReadAll(body)
		if err != nil {
			slog.Warn("Failed to read message body", "uid", msg.Uid, "error", err)
			continue
		}
		out = append(out, collector.RawMessage{UID: msg.Uid, Raw: raw})
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetch failed: %v", err)
	}
	return out, nil
}

// Close logs out of the session.
func (m *IMAP) Close() error {
	return m.c.Logout()
}
