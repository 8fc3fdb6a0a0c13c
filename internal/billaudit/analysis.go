package billaudit

// BuildAnalysis turns a generated narrative plus the raw bill into a fully
// resolved Analysis. The narrative drives the sections, rows, and flags; the
// raw bill supplies fallback totals and the local heuristic signals.
func BuildAnalysis(narrative, rawBill string) Analysis {
	localEstimate, localFlags := EstimateLocalRisk(rawBill)
	return buildAnalysis(narrative, rawBill, localEstimate, localFlags)
}

// BuildLocalAnalysis produces the degraded Analysis used when no narrative
// could be generated. Everything comes from the raw bill: totals become the
// metrics, the heuristic flags become the flag records, and the score uses
// only local signals.
func BuildLocalAnalysis(rawBill string) Analysis {
	localEstimate, localFlags := EstimateLocalRisk(rawBill)
	return buildLocalAnalysis(rawBill, localEstimate, localFlags)
}

func buildAnalysis(narrative, rawBill string, localEstimate float64, localFlags []string) Analysis {
	sections := SegmentNarrative(narrative)
	metrics := ResolveMetrics(sections, rawBill, localEstimate)
	rows := ParseItemizedRows(sections[SectionItemized])

	combined := CombineFlags(sections[SectionFlags], localFlags)
	flags := make([]FlagRecord, 0, len(combined))
	for _, raw := range combined {
		flags = append(flags, ClassifyFlag(raw))
	}

	score := ComputeRiskScore(sections, localFlags)
	return Analysis{
		Narrative:     narrative,
		Sections:      sections,
		Metrics:       metrics,
		Rows:          rows,
		Flags:         flags,
		RiskScore:     score,
		RiskLevel:     RiskLevelFor(score),
		LocalEstimate: localEstimate,
		LocalFlags:    localFlags,
		Mode:          ModeComplete,
	}
}

func buildLocalAnalysis(rawBill string, localEstimate float64, localFlags []string) Analysis {
	totals := ParseBillTotals(rawBill)

	combined := CombineFlags(nil, localFlags)
	flags := make([]FlagRecord, 0, len(combined))
	for _, raw := range combined {
		flags = append(flags, ClassifyFlag(raw))
	}

	score := ComputeLocalRiskScore(localFlags)
	return Analysis{
		Sections: SegmentNarrative(""),
		Metrics: FinancialMetrics{
			TotalBilled:      totals.TotalBilled,
			InsurancePaid:    totals.InsurancePaid,
			PatientOwes:      totals.PatientResponsibility,
			PotentialSavings: localEstimate,
		},
		Flags:         flags,
		RiskScore:     score,
		RiskLevel:     RiskLevelFor(score),
		LocalEstimate: localEstimate,
		LocalFlags:    localFlags,
		Mode:          ModeDegraded,
	}
}
