package ledger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbtn/compliance-audit/internal/ledger"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		csv    string
		noFile bool

		want    []ledger.Row
		wantErr bool
	}{
		"Absent file yields empty ledger": {
			noFile: true,
		},
		"Empty file yields empty ledger": {
			csv: "",
		},
		"Header only": {
			csv: "message_id,from,amount,currency,subject\n",
		},
		"Rows in file order": {
			csv: "message_id,from,amount,currency,subject\n" +
				"m1,vendor@x.com,10.50,USD,Invoice 1\n" +
				"m2,vendor@y.com,,USD,Invoice 2\n",
			want: []ledger.Row{
				{MessageID: "m1", From: "vendor@x.com", Amount: "10.50", Currency: "USD", Subject: "Invoice 1"},
				{MessageID: "m2", From: "vendor@y.com", Amount: "", Currency: "USD", Subject: "Invoice 2"},
			},
		},
		"Reordered and extra columns are addressed by name": {
			csv: "subject,extra,amount,message_id,from,currency\n" +
				"Invoice 1,x,3,m1,vendor@x.com,EUR\n",
			want: []ledger.Row{
				{MessageID: "m1", From: "vendor@x.com", Amount: "3", Currency: "EUR", Subject: "Invoice 1"},
			},
		},
		"Missing columns yield empty fields": {
			csv:  "message_id\nm1\n",
			want: []ledger.Row{{MessageID: "m1"}},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			if !tc.noFile {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "ledger.csv"), []byte(tc.csv), 0600), "Setup: failed to write ledger")
			}

			got, err := ledger.Load(dir)
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAmountValue(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		amount string

		want float64
	}{
		"Plain number":      {amount: "10.50", want: 10.50},
		"Whitespace padded": {amount: " 3 ", want: 3},
		"Blank":             {amount: "", want: 0},
		"Non-numeric":       {amount: "n/a", want: 0},
		"Negative":          {amount: "-2.5", want: -2.5},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			r := ledger.Row{Amount: tc.amount}
			assert.InDelta(t, tc.want, r.AmountValue(), 0.0001)
		})
	}
}

func TestLoadClearing(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content string
		noFile  bool

		wantNil bool
		wantErr bool
	}{
		"Absent file yields nil": {
			noFile:  true,
			wantNil: true,
		},
		"Valid document": {
			content: `{"cleared": true}`,
		},
		"Invalid JSON": {
			content: "{",
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			if !tc.noFile {
				require.NoError(t, os.MkdirAll(filepath.Join(dir, "clearing"), 0750), "Setup: failed to create clearing dir")
				require.NoError(t, os.WriteFile(filepath.Join(dir, "clearing", "clearing_report.json"), []byte(tc.content), 0600), "Setup: failed to write clearing report")
			}

			got, err := ledger.LoadClearing(dir)
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			if tc.wantNil {
				assert.Nil(t, got)
				return
			}
			assert.NotNil(t, got)
		})
	}
}
