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

type fakeLister struct {
	byNumber map[string][]collector.Message
	errFor   map[string]error

	listed []string
}

func (l *fakeLister) ListSince(ctx context.Context, to string, since time.Time) ([]collector.Message, error) {
	l.listed = append(l.listed, to)
	if err := l.errFor[to]; err != nil {
		return nil, err
	}
	return l.byNumber[to], nil
}

func TestSMSCollect(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		numbers  []string
		byNumber map[string][]collector.Message
		errFor   map[string]error

		wantCount  int
		wantListed []string
		wantErr    bool
	}{
		"Flattens across numbers": {
			numbers: []string{"5551234567"},
			byNumber: map[string][]collector.Message{
				"5551234567": {
					{SID: "s1", To: "5551234567", Body: "one"},
					{SID: "s2", To: "5551234567", Body: "two"},
				},
				collector.OperationalNumber: {
					{SID: "s3", To: collector.OperationalNumber, Body: "ops"},
				},
			},
			wantCount:  3,
			wantListed: []string{"5551234567", collector.OperationalNumber},
		},
		"Operational number is always included": {
			numbers:    []string{},
			wantCount:  0,
			wantListed: []string{collector.OperationalNumber},
		},
		"Operational number is not duplicated": {
			numbers:    []string{collector.OperationalNumber},
			wantListed: []string{collector.OperationalNumber},
		},
		"Provider error aborts the source": {
			numbers: []string{"5551234567"},
			errFor:  map[string]error{"5551234567": fmt.Errorf("provider error")},
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ws := t.TempDir()
			lister := &fakeLister{byNumber: tc.byNumber, errFor: tc.errFor}

			c := collector.NewSMS(lister, tc.numbers)
			res, err := c.Collect(context.Background(), ws, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantCount, res.Count)
			assert.Equal(t, tc.wantListed, lister.listed, "each number should be listed exactly once, ops number last when appended")

			data, err := os.ReadFile(filepath.Join(ws, "sms.json"))
			require.NoError(t, err, "sms artifact should always be written")
			var msgs []collector.Message
			require.NoError(t, json.Unmarshal(data, &msgs))
			assert.Len(t, msgs, tc.wantCount)
		})
	}
}

