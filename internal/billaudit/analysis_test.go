package billaudit

import "testing"

func TestBuildAnalysisSampleRun(t *testing.T) {
	a := BuildAnalysis(sampleNarrative, SampleBill)

	if a.Mode != ModeComplete {
		t.Errorf("Mode = %q, want %q", a.Mode, ModeComplete)
	}
	if a.Narrative != sampleNarrative {
		t.Error("raw narrative not preserved")
	}
	want := FinancialMetrics{TotalBilled: 4000, InsurancePaid: 2200, PatientOwes: 1800, PotentialSavings: 650}
	if a.Metrics != want {
		t.Errorf("Metrics = %+v, want %+v", a.Metrics, want)
	}
	if len(a.Rows) != 2 {
		t.Fatalf("Rows = %d, want 2", len(a.Rows))
	}
	if a.Rows[1].Category != "Lab panel" || a.Rows[1].Amount != "$650" {
		t.Errorf("unexpected second row: %+v", a.Rows[1])
	}

	// Two narrative flags plus three local ones none of which repeat
	// narrative text.
	if len(a.Flags) != 5 {
		t.Fatalf("Flags = %d, want 5: %+v", len(a.Flags), a.Flags)
	}
	if a.Flags[0].Severity != "critical" {
		t.Errorf("first flag severity = %q, want critical", a.Flags[0].Severity)
	}
	if a.Flags[2].Severity != SeverityReview {
		t.Errorf("local flag severity = %q, want %q", a.Flags[2].Severity, SeverityReview)
	}

	// 22 critical + 8 moderate + 16 local cap + 8 duplicate + 8 savings
	// tier - 12 reassuring summary.
	if a.RiskScore != 50 {
		t.Errorf("RiskScore = %d, want 50", a.RiskScore)
	}
	if a.RiskLevel != RiskMedium {
		t.Errorf("RiskLevel = %q, want %q", a.RiskLevel, RiskMedium)
	}
	if diff(a.LocalEstimate, 1160) > 1e-9 {
		t.Errorf("LocalEstimate = %v, want 1160", a.LocalEstimate)
	}
}

func TestBuildAnalysisEmptyNarrativeStillResolves(t *testing.T) {
	a := BuildAnalysis("", SampleBill)
	if a.Metrics.TotalBilled != 4000 {
		t.Errorf("TotalBilled = %v, want fallback 4000", a.Metrics.TotalBilled)
	}
	if a.Metrics.PotentialSavings != 1160 {
		t.Errorf("PotentialSavings = %v, want local 1160", a.Metrics.PotentialSavings)
	}
	if len(a.Flags) != 3 {
		t.Errorf("Flags = %d, want the 3 local bullets", len(a.Flags))
	}
	if a.Mode != ModeComplete {
		t.Errorf("Mode = %q, an empty narrative alone does not degrade the run", a.Mode)
	}
}

func TestBuildLocalAnalysis(t *testing.T) {
	a := BuildLocalAnalysis(SampleBill)

	if a.Mode != ModeDegraded {
		t.Errorf("Mode = %q, want %q", a.Mode, ModeDegraded)
	}
	if a.Narrative != "" {
		t.Errorf("Narrative = %q, want empty", a.Narrative)
	}
	want := FinancialMetrics{TotalBilled: 4000, InsurancePaid: 2200, PatientOwes: 1800, PotentialSavings: 1160}
	if a.Metrics != want {
		t.Errorf("Metrics = %+v, want %+v", a.Metrics, want)
	}
	if len(a.Flags) != 3 || len(a.LocalFlags) != 3 {
		t.Fatalf("Flags = %d, LocalFlags = %d, want 3 and 3", len(a.Flags), len(a.LocalFlags))
	}
	for _, f := range a.Flags {
		if f.Severity != SeverityReview {
			t.Errorf("flag %q severity = %q, want %q", f.Raw, f.Severity, SeverityReview)
		}
	}

	// 16 capped local points + 8 duplicate bonus.
	if a.RiskScore != 24 {
		t.Errorf("RiskScore = %d, want 24", a.RiskScore)
	}
	if a.RiskLevel != RiskLow {
		t.Errorf("RiskLevel = %q, want %q", a.RiskLevel, RiskLow)
	}
}

func TestBuildLocalAnalysisCleanBill(t *testing.T) {
	a := BuildLocalAnalysis(SampleBillClean)
	if a.RiskScore != 0 {
		t.Errorf("RiskScore = %d, want 0 for a clean bill", a.RiskScore)
	}
	if len(a.Flags) != 0 {
		t.Errorf("Flags = %+v, want none", a.Flags)
	}
	if a.Metrics.TotalBilled != 320 || a.Metrics.PatientOwes != 100 {
		t.Errorf("Metrics = %+v", a.Metrics)
	}
	if a.Metrics.PotentialSavings != 0 {
		t.Errorf("PotentialSavings = %v, want 0", a.Metrics.PotentialSavings)
	}
}

func TestBuildAnalysisSectionsAlwaysComplete(t *testing.T) {
	for _, a := range []Analysis{
		BuildAnalysis(sampleNarrative, SampleBill),
		BuildAnalysis("", ""),
		BuildLocalAnalysis(SampleBill),
	} {
		for _, name := range SectionNames {
			if _, ok := a.Sections[name]; !ok {
				t.Errorf("mode %s: missing section key %s", a.Mode, name)
			}
		}
	}
}
