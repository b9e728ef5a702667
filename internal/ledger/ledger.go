// Package ledger reads the flat ledger and clearing report produced by the
// processing stage. The hand-off between stages is a directory contract:
// ledger.csv with header-named columns, and an optional clearing report at a
// fixed relative path.
package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vbtn/compliance-audit/internal/constants"
	"github.com/vbtn/compliance-audit/internal/fileutils"
)

// Row is one record of the ledger. Rows are kept in file order; the order
// carries no meaning downstream.
type Row struct {
	MessageID string `json:"message_id"`
	From      string `json:"from"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Subject   string `json:"subject"`
}

// AmountValue returns the numeric amount of the row.
// Blank or unparseable amounts are coerced to 0 rather than failing the row.
func (r Row) AmountValue() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(r.Amount), 64)
	if err != nil {
		return 0
	}
	return v
}

// Load reads ledger.csv from dir. An absent file yields an empty ledger, not
// an error.
func Load(dir string) ([]Row, error) {
	path := filepath.Join(dir, constants.LedgerFileName)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %v", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger header: %v", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var rows []Row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read ledger row: %v", err)
		}

		rows = append(rows, Row{
			MessageID: field(record, "message_id"),
			From:      field(record, "from"),
			Amount:    field(record, "amount"),
			Currency:  field(record, "currency"),
			Subject:   field(record, "subject"),
		})
	}

	return rows, nil
}

// LoadClearing reads the optional clearing report from dir. It is currently
// consumed only for its existence; the document is reserved for future
// payload enrichment. An absent file yields nil, not an error.
func LoadClearing(dir string) (map[string]any, error) {
	path := filepath.Join(dir, filepath.FromSlash(constants.ClearingReportPath))
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open clearing report: %v", err)
	}
	defer f.Close()

	var doc map[string]any
	if err := fileutils.ParseJSON(f, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse clearing report: %v", err)
	}
	return doc, nil
}
