package billaudit

import (
	"regexp"
	"strings"
)

var facilityFeePattern = regexp.MustCompile(`(?i)facility fee:\s*\$?([\d,]+)`)

const (
	duplicateLabPanelEstimate = 650.0
	facilityFeeThreshold      = 1500.0
	facilityFeeEstimateCap    = 400.0
	facilityFeeEstimateRate   = 0.2
	largeBillThreshold        = 3500.0
	largeBillEstimate         = 150.0
)

// EstimateLocalRisk scans raw bill text for three known anomaly patterns,
// independent of any narrative: a doubled lab panel, an outsized facility
// fee, and an overall bill large enough to warrant manual audit. It returns
// the summed dollar estimate and the triggered flag strings in check order.
func EstimateLocalRisk(rawBill string) (float64, []string) {
	var flags []string
	lower := strings.ToLower(rawBill)
	risk := 0.0

	if strings.Contains(lower, "lab panel") &&
		(strings.Contains(lower, "x2") || strings.Contains(lower, "×2")) {
		risk += duplicateLabPanelEstimate
		flags = append(flags, "Possible duplicate lab panel charge detected.")
	}

	if m := facilityFeePattern.FindStringSubmatch(rawBill); m != nil {
		fee := ExtractMoney(m[1])
		if fee >= facilityFeeThreshold {
			risk += min(facilityFeeEstimateCap, fee*facilityFeeEstimateRate)
			flags = append(flags, "Facility fee appears unusually high for the listed visit context.")
		}
	}

	if totals := ParseBillTotals(rawBill); totals.TotalBilled >= largeBillThreshold {
		risk += largeBillEstimate
		flags = append(flags, "Overall bill size is high enough to justify a manual audit.")
	}

	return risk, flags
}

// ParseBillTotals pulls the three labeled amounts out of raw bill text.
// Later matching lines overwrite earlier ones, mirroring how corrected
// totals usually appear last on a statement.
func ParseBillTotals(rawBill string) BillTotals {
	var totals BillTotals
	for _, line := range strings.Split(rawBill, "\n") {
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "total billed"):
			totals.TotalBilled = ExtractMoney(line)
		case strings.Contains(lower, "insurance paid"):
			totals.InsurancePaid = ExtractMoney(line)
		case strings.Contains(lower, "patient responsibility"),
			strings.Contains(lower, "patient owes"):
			totals.PatientResponsibility = ExtractMoney(line)
		}
	}
	return totals
}
