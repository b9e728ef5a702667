package publisher

import "github.com/vbtn/compliance-audit/internal/identity"

// pieeTarget posts aggregate counts and the sum of amounts plus the
// enterprise block; no line items.
type pieeTarget struct{}

type pieePayload struct {
	ReportTS    string               `json:"report_ts"`
	Enterprise  identity.Identifiers `json:"enterprise"`
	ItemsCount  int                  `json:"items_count"`
	TotalAmount float64              `json:"total_amount"`
}

func (pieeTarget) Name() string { return "piee" }

func (pieeTarget) Payload(run Run) any {
	var total float64
	for _, r := range run.Ledger {
		// Missing or unparseable amounts contribute 0 instead of failing the row.
		total += r.AmountValue()
	}

	return pieePayload{
		ReportTS:    run.TS,
		Enterprise:  run.Enterprise,
		ItemsCount:  len(run.Ledger),
		TotalAmount: total,
	}
}
