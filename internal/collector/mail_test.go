package collector_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbtn/compliance-audit/internal/collector"
)

type fakeMailbox struct {
	messages  []collector.RawMessage
	searchErr error
	fetchErr  error

	closed bool
}

func (m *fakeMailbox) SearchSince(since time.Time) ([]uint32, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	uids := make([]uint32, 0, len(m.messages))
	for _, msg := range m.messages {
		uids = append(uids, msg.UID)
	}
	return uids, nil
}

func (m *fakeMailbox) Fetch(uids []uint32) ([]collector.RawMessage, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.messages, nil
}

func (m *fakeMailbox) Close() error {
	m.closed = true
	return nil
}

func rawMessage(uid uint32, to, subject string) collector.RawMessage {
	raw := fmt.Sprintf("From: sender@example.com\r\nTo: %s\r\nSubject: %s\r\nDate: Fri, 14 Mar 2025 09:26:53 +0000\r\n\r\nbody\r\n", to, subject)
	return collector.RawMessage{UID: uid, Raw: []byte(raw)}
}

func TestMailCollect(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		mailbox *fakeMailbox
		targets []string

		wantCount int
		wantUIDs  []uint32
		wantErr   bool
	}{
		"Retains only messages addressed to a target": {
			mailbox: &fakeMailbox{messages: []collector.RawMessage{
				rawMessage(1, "vendor@x.com", "kept"),
				rawMessage(2, "unrelated@y.com", "dropped"),
			}},
			targets:   []string{"vendor@x.com"},
			wantCount: 1,
			wantUIDs:  []uint32{1},
		},
		"Target matching is case-insensitive": {
			mailbox: &fakeMailbox{messages: []collector.RawMessage{
				rawMessage(7, "Vendor@X.COM", "kept"),
			}},
			targets:   []string{"VENDOR@x.com"},
			wantCount: 1,
			wantUIDs:  []uint32{7},
		},
		"Recipient list intersection": {
			mailbox: &fakeMailbox{messages: []collector.RawMessage{
				rawMessage(3, "other@y.com, vendor@x.com", "kept"),
			}},
			targets:   []string{"vendor@x.com"},
			wantCount: 1,
			wantUIDs:  []uint32{3},
		},
		"No matches yields empty summary": {
			mailbox: &fakeMailbox{messages: []collector.RawMessage{
				rawMessage(4, "unrelated@y.com", "dropped"),
			}},
			targets:   []string{"vendor@x.com"},
			wantCount: 0,
		},
		"Unparseable message is dropped, not fatal": {
			mailbox: &fakeMailbox{messages: []collector.RawMessage{
				{UID: 5, Raw: []byte("not a mail message")},
				rawMessage(6, "vendor@x.com", "kept"),
			}},
			targets:   []string{"vendor@x.com"},
			wantCount: 1,
			wantUIDs:  []uint32{6},
		},
		"Search error": {
			mailbox: &fakeMailbox{searchErr: fmt.Errorf("search failed")},
			targets: []string{"vendor@x.com"},
			wantErr: true,
		},
		"Fetch error": {
			mailbox: &fakeMailbox{fetchErr: fmt.Errorf("fetch failed")},
			targets: []string{"vendor@x.com"},
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ws := t.TempDir()
			open := func(ctx context.Context) (collector.Mailbox, error) {
				return tc.mailbox, nil
			}

			c := collector.NewMail(open, tc.targets)
			res, err := c.Collect(context.Background(), ws, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantCount, res.Count)
			assert.True(t, tc.mailbox.closed, "mailbox session should be closed")

			// Retained messages are persisted verbatim by uid.
			for _, uid := range tc.wantUIDs {
				_, err := os.Stat(filepath.Join(ws, fmt.Sprintf("%d.eml", uid)))
				assert.NoError(t, err, "expected %d.eml to be persisted", uid)
			}

			data, err := os.ReadFile(filepath.Join(ws, "emails.json"))
			require.NoError(t, err, "summary artifact should always be written")
			var summaries []collector.MailSummary
			require.NoError(t, json.Unmarshal(data, &summaries))
			assert.Len(t, summaries, tc.wantCount)
		})
	}
}

func TestMailCollectOpenFailure(t *testing.T) {
	t.Parallel()

	open := func(ctx context.Context) (collector.Mailbox, error) {
		return nil, fmt.Errorf("connection refused")
	}

	c := collector.NewMail(open, []string{"vendor@x.com"})
	_, err := c.Collect(context.Background(), t.TempDir(), time.Now())
	require.Error(t, err)
}
