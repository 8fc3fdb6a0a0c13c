package billaudit

import "strings"

// FindSectionMetrics reads labeled amounts out of narrative lines, normally
// the INSURANCE section. Each line feeds at most one metric, keyword order
// decides which, and later lines overwrite earlier ones.
func FindSectionMetrics(lines []string) FinancialMetrics {
	var m FinancialMetrics
	for _, line := range lines {
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "total billed"):
			m.TotalBilled = ExtractMoney(line)
		case strings.Contains(lower, "insurance paid"):
			m.InsurancePaid = ExtractMoney(line)
		case strings.Contains(lower, "patient owes"):
			m.PatientOwes = ExtractMoney(line)
		case strings.Contains(lower, "potential overcharge"),
			strings.Contains(lower, "savings opportunity"):
			m.PotentialSavings = ExtractMoney(line)
		}
	}
	return m
}

// ResolveMetrics fills any metric the narrative left at zero from the raw
// bill totals, and the savings metric from the local estimate. The narrative
// value always wins when present.
func ResolveMetrics(sections SectionSet, rawBill string, localEstimate float64) FinancialMetrics {
	m := FindSectionMetrics(sections[SectionInsurance])
	totals := ParseBillTotals(rawBill)
	if m.TotalBilled == 0 {
		m.TotalBilled = totals.TotalBilled
	}
	if m.InsurancePaid == 0 {
		m.InsurancePaid = totals.InsurancePaid
	}
	if m.PatientOwes == 0 {
		m.PatientOwes = totals.PatientResponsibility
	}
	if m.PotentialSavings == 0 {
		m.PotentialSavings = localEstimate
	}
	return m
}

// CombineFlags merges locally detected flags into the narrative FLAGS lines.
// When the narrative produced none, the local flags stand in as bullets.
// Otherwise a local flag is appended only if its text does not already
// appear somewhere in the narrative flags.
func CombineFlags(narrative, local []string) []string {
	if len(narrative) == 0 {
		combined := make([]string, 0, len(local))
		for _, flag := range local {
			combined = append(combined, "- "+flag)
		}
		return combined
	}
	combined := append([]string(nil), narrative...)
	joined := strings.Join(narrative, " ")
	for _, flag := range local {
		if !strings.Contains(joined, flag) {
			combined = append(combined, "- "+flag)
		}
	}
	return combined
}
