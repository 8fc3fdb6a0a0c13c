package console

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestApplyPrintLayoutHooksAddsPageBreakBeforeAppendix(t *testing.T) {
	in := "<h2>Red Flags</h2><p>x</p><h2>Appendix</h2><p>y</p>"
	out := applyPrintLayoutHooks(in)
	if !strings.Contains(out, `<h2 data-page-break-before="true">Appendix</h2>`) {
		t.Fatalf("expected page-break injection, got: %s", out)
	}
}

func TestApplyPrintLayoutHooksNoopWhenHeadingMissing(t *testing.T) {
	in := "<h2>Red Flags</h2><p>x</p>"
	out := applyPrintLayoutHooks(in)
	if out != in {
		t.Fatalf("expected no change when heading absent, got: %s", out)
	}
}

func TestBuildBadgeHTML(t *testing.T) {
	report := "- Risk: **Medium Risk** · Score: 50/100 · Some issues worth reviewing\n"
	got := buildBadgeHTML(report)
	if !strings.Contains(got, "risk-medium") {
		t.Errorf("badge = %q, want a risk-medium class", got)
	}
	if !strings.Contains(got, "Medium Risk · 50/100") {
		t.Errorf("badge = %q, want the score label", got)
	}
	if buildBadgeHTML("no badge line here") != "" {
		t.Error("expected an empty badge when the report has no risk line")
	}
}

func TestBuildMetaHTML(t *testing.T) {
	report := "# BillGuard Analysis Report\n\n- Date: 2026-08-25T10:30:00Z\n"
	got := buildMetaHTML(report)
	if !strings.Contains(got, "<strong>BillGuard</strong>") {
		t.Errorf("meta = %q", got)
	}
	if !strings.Contains(got, "<strong>Date:</strong>") || !strings.Contains(got, "August") {
		t.Errorf("meta = %q, want a formatted date", got)
	}

	if strings.Contains(buildMetaHTML("no date line"), "<strong>Date:</strong>") {
		t.Error("expected no date block when the report has no date line")
	}
}

func TestBuildHTMLInlinesStylesheetAndConvertsMarkdown(t *testing.T) {
	webDir := t.TempDir()
	css := "body{color:#123456;}"
	if err := os.WriteFile(filepath.Join(webDir, "style.css"), []byte(css), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewChromiumPDFRenderer(webDir, "")
	report := "# BillGuard Analysis Report\n\n" +
		"- Risk: **Low Risk** · Score: 5/100 · Bill appears reasonable\n\n" +
		"| Item | Amount |\n| --- | --- |\n| Total Billed | $320 |\n"
	htmlDoc, err := r.buildHTML(report)
	if err != nil {
		t.Fatalf("buildHTML: %v", err)
	}
	if !strings.Contains(htmlDoc, css) {
		t.Error("expected the stylesheet to be inlined")
	}
	if !strings.Contains(htmlDoc, "<h1>BillGuard Analysis Report</h1>") {
		t.Error("expected the markdown title to convert to an h1")
	}
	if !strings.Contains(htmlDoc, "<table>") {
		t.Error("expected the pipe table to convert via GFM")
	}
	if !strings.Contains(htmlDoc, "risk-low") {
		t.Error("expected the risk badge derived from the report")
	}
}

func TestBuildHTMLMissingStylesheet(t *testing.T) {
	r := NewChromiumPDFRenderer(t.TempDir(), "")
	if _, err := r.buildHTML("# report"); err == nil {
		t.Fatal("expected an error when style.css is missing")
	}
}

func TestNewChromiumPDFRendererChromePathOverride(t *testing.T) {
	r := NewChromiumPDFRenderer(t.TempDir(), "/opt/custom/chrome")
	if r.chromePath != "/opt/custom/chrome" {
		t.Fatalf("chromePath = %q, want the override", r.chromePath)
	}
}
