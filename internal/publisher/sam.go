package publisher

// samTarget posts the flattened enterprise identifiers and the row count;
// SAM.gov receives no line items.
type samTarget struct{}

type samPayload struct {
	UEI               string `json:"uei"`
	CAGE              string `json:"cage"`
	DoDAACContracting string `json:"dodaac_contracting"`
	DoDAACFunding     string `json:"dodaac_funding"`
	PayingDoDAAC      string `json:"paying_dodaac"`
	FEDSTRIP          string `json:"fedstrip"`
	FinanceUnitID     string `json:"finance_unitid"`
	CAGCode           string `json:"cag_code"`
	BACodes           string `json:"ba_codes"`
	SCFCode           string `json:"scf_code"`
	DistrictCD        string `json:"district_cd"`
	EPS               string `json:"eps"`
	Items             int    `json:"items"`
	Timestamp         string `json:"timestamp"`
}

func (samTarget) Name() string { return "sam" }

func (samTarget) Payload(run Run) any {
	ids := run.Enterprise
	return samPayload{
		UEI:               ids.UEI,
		CAGE:              ids.CAGE,
		DoDAACContracting: ids.DoDAACContracting,
		DoDAACFunding:     ids.DoDAACFunding,
		PayingDoDAAC:      ids.PayingDoDAAC,
		FEDSTRIP:          ids.FEDSTRIP,
		FinanceUnitID:     ids.FinanceUnitID,
		CAGCode:           ids.CAGCode,
		BACodes:           ids.BACodes,
		SCFCode:           ids.SCFCode,
		DistrictCD:        ids.DistrictCD,
		EPS:               ids.EPS,
		Items:             len(run.Ledger),
		Timestamp:         run.TS,
	}
}
