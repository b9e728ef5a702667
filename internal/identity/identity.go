// Package identity implements the enterprise identifier gate.
// Enterprise identifiers are organization-level registration and compliance
// codes required by procurement counterparties. They are sourced once at
// process start and are immutable for the duration of a run.
package identity

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ubuntu/decorate"
)

// Identifiers is the fixed set of enterprise identifiers included in outbound payloads.
type Identifiers struct {
	UEI               string `json:"uei"                toml:"uei"                mapstructure:"uei"`
	CAGE              string `json:"cage"               toml:"cage"               mapstructure:"cage"`
	DoDAACContracting string `json:"dodaac_contracting" toml:"dodaac_contracting" mapstructure:"dodaac_contracting"`
	DoDAACFunding     string `json:"dodaac_funding"     toml:"dodaac_funding"     mapstructure:"dodaac_funding"`
	PayingDoDAAC      string `json:"paying_dodaac"      toml:"paying_dodaac"      mapstructure:"paying_dodaac"`
	FEDSTRIP          string `json:"fedstrip"           toml:"fedstrip"           mapstructure:"fedstrip"`
	FinanceUnitID     string `json:"finance_unitid"     toml:"finance_unitid"     mapstructure:"finance_unitid"`
	CAGCode           string `json:"cag_code"           toml:"cag_code"           mapstructure:"cag_code"`
	BACodes           string `json:"ba_codes"           toml:"ba_codes"           mapstructure:"ba_codes"`
	SCFCode           string `json:"scf_code"           toml:"scf_code"           mapstructure:"scf_code"`
	DistrictCD        string `json:"district_cd"        toml:"district_cd"        mapstructure:"district_cd"`
	EPS               string `json:"eps"                toml:"eps"                mapstructure:"eps"`
}

// MissingIdentifiersError is returned when required enterprise identifiers are
// absent. The publish pipeline must not attempt any target when it is raised.
type MissingIdentifiersError struct {
	Missing []string
}

func (e *MissingIdentifiersError) Error() string {
	return fmt.Sprintf("missing required enterprise identifiers: %s", strings.Join(e.Missing, ", "))
}

// Validate checks the required identifiers, UEI and CAGE_CODE.
// It returns a *MissingIdentifiersError naming exactly the absent ones, or nil.
//
// Recommended identifiers are advisory only, see MissingRecommended.
func (ids Identifiers) Validate() error {
	var missing []string
	if ids.UEI == "" {
		missing = append(missing, "UEI")
	}
	if ids.CAGE == "" {
		missing = append(missing, "CAGE_CODE")
	}

	if len(missing) > 0 {
		return &MissingIdentifiersError{Missing: missing}
	}
	return nil
}

// MissingRecommended returns the names of absent recommended identifiers.
// Their absence never affects the exit status; callers log a warning naming them.
func (ids Identifiers) MissingRecommended() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"dodaac_contracting", ids.DoDAACContracting},
		{"paying_dodaac", ids.PayingDoDAAC},
		{"fedstrip", ids.FEDSTRIP},
		{"finance_unitid", ids.FinanceUnitID},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// LoadFile reads identifiers from a TOML file and overlays every non-empty
// field over base. The file never blanks a value set in the environment.
func LoadFile(path string, base Identifiers) (ids Identifiers, err error) {
	defer decorate.OnError(&err, "could not load identifiers file %s", path)

	var file Identifiers
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return Identifiers{}, err
	}

	ids = base
	for _, f := range []struct {
		src string
		dst *string
	}{
		{file.UEI, &ids.UEI},
		{file.CAGE, &ids.CAGE},
		{file.DoDAACContracting, &ids.DoDAACContracting},
		{file.DoDAACFunding, &ids.DoDAACFunding},
		{file.PayingDoDAAC, &ids.PayingDoDAAC},
		{file.FEDSTRIP, &ids.FEDSTRIP},
		{file.FinanceUnitID, &ids.FinanceUnitID},
		{file.CAGCode, &ids.CAGCode},
		{file.BACodes, &ids.BACodes},
		{file.SCFCode, &ids.SCFCode},
		{file.DistrictCD, &ids.DistrictCD},
		{file.EPS, &ids.EPS},
	} {
		if f.src != "" {
			*f.dst = f.src
		}
	}

	return ids, nil
}
