package publisher

import (
	"github.com/vbtn/compliance-audit/internal/constants"
	"github.com/vbtn/compliance-audit/internal/identity"
)

// coupaTarget posts a per-row minimal summary plus the enterprise block.
type coupaTarget struct{}

type coupaItem struct {
	MessageID string `json:"message_id"`
	Vendor    string `json:"vendor"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Subject   string `json:"subject"`
}

type coupaPayload struct {
	SummaryTS  string               `json:"summary_ts"`
	Source     string               `json:"source"`
	Enterprise identity.Identifiers `json:"enterprise"`
	Items      []coupaItem          `json:"items"`
}

func (coupaTarget) Name() string { return "coupa" }

func (coupaTarget) Payload(run Run) any {
	items := make([]coupaItem, 0, len(run.Ledger))
	for _, r := range run.Ledger {
		items = append(items, coupaItem{
			MessageID: r.MessageID,
			Vendor:    r.From,
			Amount:    r.Amount,
			Currency:  r.Currency,
			Subject:   r.Subject,
		})
	}

	return coupaPayload{
		SummaryTS:  run.TS,
		Source:     constants.PayloadSource,
		Enterprise: run.Enterprise,
		Items:      items,
	}
}
