package billaudit

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// BuildReport renders one analysis as a standalone markdown report. The same
// renderer serves both modes; a degraded run announces itself and swaps the
// missing phone script for the built-in fallback.
func BuildReport(a Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# BillGuard Analysis Report\n\n")
	fmt.Fprintf(&b, "- Risk: **%s** · Score: %d/100 · %s\n", a.RiskLevel.Label(), a.RiskScore, a.RiskLevel.Note())
	fmt.Fprintf(&b, "- Mode: %s\n", a.Mode)
	fmt.Fprintf(&b, "- Date: %s\n\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "%s\n\n", Disclaimer)

	if a.Mode == ModeDegraded {
		fmt.Fprintf(&b, "> Fallback audit: potential savings opportunity of %s based on local pattern checks.\n\n", FormatCurrency(a.Metrics.PotentialSavings))
		fmt.Fprintf(&b, "This report comes from local pattern checks alone, without the generated audit narrative. Re-run the full analysis for a complete audit.\n\n")
	} else {
		fmt.Fprintf(&b, "> You could save up to %s if the flagged issues are corrected.\n\n", FormatCurrency(a.Metrics.PotentialSavings))
	}

	fmt.Fprintf(&b, "## Financial Impact\n\n")
	fmt.Fprintf(&b, "| Metric | Amount |\n|---|---|\n")
	fmt.Fprintf(&b, "| Total Billed | %s |\n", FormatCurrency(a.Metrics.TotalBilled))
	fmt.Fprintf(&b, "| Insurance Paid | %s |\n", FormatCurrency(a.Metrics.InsurancePaid))
	fmt.Fprintf(&b, "| Patient Owes | %s |\n", FormatCurrency(a.Metrics.PatientOwes))
	fmt.Fprintf(&b, "| Potential Savings | %s |\n\n", FormatCurrency(a.Metrics.PotentialSavings))
	if a.Metrics.PotentialSavings > 0 {
		fmt.Fprintf(&b, "Estimated contestable amount: %s\n\n", FormatCurrency(a.Metrics.PotentialSavings))
	}

	fmt.Fprintf(&b, "## Summary\n\n")
	switch {
	case len(a.Sections[SectionSummary]) > 0:
		fmt.Fprintf(&b, "%s\n\n", sanitizeLine(joinCleanLines(a.Sections[SectionSummary])))
	case a.Mode == ModeDegraded:
		fmt.Fprintf(&b, "Local scan only. %d pattern check(s) triggered on this bill.\n\n", len(a.LocalFlags))
	default:
		fmt.Fprintf(&b, "No explicit summary section was returned. Review the raw narrative in the appendix.\n\n")
	}

	fmt.Fprintf(&b, "## Itemized Breakdown\n\n")
	if len(a.Rows) > 0 {
		fmt.Fprintf(&b, "| Category | Amount | Explanation |\n|---|---|---|\n")
		for _, row := range a.Rows {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", sanitizeCell(row.Category), sanitizeCell(row.Amount), sanitizeCell(row.Explanation))
		}
		b.WriteString("\n")
	} else {
		fmt.Fprintf(&b, "No itemized rows were parsed.\n\n")
	}

	fmt.Fprintf(&b, "## Red Flags\n\n")
	if len(a.Flags) == 0 {
		fmt.Fprintf(&b, "No major red flags were identified, but the bill should still be reviewed for payer-specific rules.\n\n")
	}
	for _, f := range a.Flags {
		fmt.Fprintf(&b, "- **%s** %s\n", f.Severity, sanitizeLine(f.Title))
		if f.Detail != "" && f.Detail != f.Title {
			fmt.Fprintf(&b, "  - Detail: %s\n", sanitizeLine(f.Detail))
		}
		if f.Explainer != "" && f.Explainer != f.Detail {
			fmt.Fprintf(&b, "  - Why it matters: %s\n", sanitizeLine(f.Explainer))
		}
	}
	if len(a.Flags) > 0 {
		b.WriteString("\n")
	}

	appendNarrativeSection(&b, "Dispute Guidance", a.Sections[SectionGuidance], "No dispute guidance was parsed.")
	appendNarrativeSection(&b, "Action Plan", a.Sections[SectionActionPlan], "No action plan was parsed.")
	appendNarrativeSection(&b, "Dispute Letter", a.Sections[SectionDisputeLetter], "No dispute letter was parsed.")

	fmt.Fprintf(&b, "## Phone Script\n\n")
	switch {
	case len(a.Sections[SectionPhoneScript]) > 0:
		for _, line := range a.Sections[SectionPhoneScript] {
			fmt.Fprintf(&b, "%s\n", line)
		}
		b.WriteString("\n")
	case a.Mode == ModeDegraded:
		fmt.Fprintf(&b, "%s\n\n", PatientScript)
	default:
		fmt.Fprintf(&b, "No phone script was parsed.\n\n")
	}

	fmt.Fprintf(&b, "## Compliance References\n\n")
	for _, ref := range ComplianceRefs {
		fmt.Fprintf(&b, "- %s\n", ref)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Appendix\n\n")
	fmt.Fprintf(&b, "### Parsed Metrics (JSON)\n\n```json\n%s\n```\n", prettyJSON(a.Metrics))
	if strings.TrimSpace(a.Narrative) != "" {
		fmt.Fprintf(&b, "\n### Raw Narrative\n\n```text\n%s\n```\n", a.Narrative)
	}
	return b.String()
}

func appendNarrativeSection(b *strings.Builder, title string, lines []string, fallback string) {
	fmt.Fprintf(b, "## %s\n\n", title)
	if len(lines) == 0 {
		fmt.Fprintf(b, "%s\n\n", fallback)
		return
	}
	for _, line := range lines {
		fmt.Fprintf(b, "%s\n", line)
	}
	b.WriteString("\n")
}

func joinCleanLines(lines []string) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, bulletPrefix.ReplaceAllString(line, ""))
	}
	return strings.Join(parts, " ")
}

func prettyJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func sanitizeLine(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	if s == "" {
		return "-"
	}
	return s
}

func sanitizeCell(s string) string {
	return sanitizeLine(strings.ReplaceAll(s, "|", "/"))
}
