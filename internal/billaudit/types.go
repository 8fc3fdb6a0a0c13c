package billaudit

import "time"

const Disclaimer = "Informational only. Not medical or legal advice. " +
	"Always verify with your provider or insurer."

const (
	DefaultModel = "claude-sonnet-4-6"
	MaxBillChars = 100000
)

// Section names recognized by the narrative segmenter. The set is closed:
// anything else on a heading line is treated as content or discarded.
const (
	SectionSummary       = "SUMMARY"
	SectionItemized      = "ITEMIZED"
	SectionInsurance     = "INSURANCE"
	SectionFlags         = "FLAGS"
	SectionGuidance      = "GUIDANCE"
	SectionActionPlan    = "ACTION_PLAN"
	SectionDisputeLetter = "DISPUTE_LETTER"
	SectionPhoneScript   = "PHONE_SCRIPT"
)

var SectionNames = []string{
	SectionSummary,
	SectionItemized,
	SectionInsurance,
	SectionFlags,
	SectionGuidance,
	SectionActionPlan,
	SectionDisputeLetter,
	SectionPhoneScript,
}

// SectionSet maps every recognized section name to its ordered content
// lines. All eight keys are always present after segmentation.
type SectionSet map[string][]string

type ItemizedRow struct {
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Explanation string `json:"explanation"`
}

type FinancialMetrics struct {
	TotalBilled      float64 `json:"total_billed"`
	InsurancePaid    float64 `json:"insurance_paid"`
	PatientOwes      float64 `json:"patient_owes"`
	PotentialSavings float64 `json:"potential_savings"`
}

// BillTotals holds the three line-labeled amounts parsed straight from raw
// bill text, used by the local heuristics and as the metrics fallback tier.
type BillTotals struct {
	TotalBilled           float64 `json:"total_billed"`
	InsurancePaid         float64 `json:"insurance_paid"`
	PatientResponsibility float64 `json:"patient_responsibility"`
}

type FlagRecord struct {
	Raw       string `json:"raw"`
	Severity  string `json:"severity"`
	Title     string `json:"title"`
	Detail    string `json:"detail"`
	Explainer string `json:"explainer"`
}

type AnalysisMode string

const (
	ModeComplete AnalysisMode = "COMPLETE"
	ModeDegraded AnalysisMode = "DEGRADED"
)

type RiskLevel string

const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
)

type RequestMetadata struct {
	SourceFilename   string `json:"source_filename,omitempty"`
	ExtractionMethod string `json:"extraction_method,omitempty"`
	Truncated        bool   `json:"truncated,omitempty"`
}

type RequestEnvelope struct {
	BillText      string          `json:"bill_text"`
	InsuranceText string          `json:"insurance_text,omitempty"`
	Model         string          `json:"model,omitempty"`
	Metadata      RequestMetadata `json:"metadata,omitempty"`
}

type RunMetadata struct {
	RunID              string       `json:"run_id"`
	Mode               AnalysisMode `json:"mode"`
	StagesExecuted     []string     `json:"stages_executed"`
	StageFailed        string       `json:"stage_failed,omitempty"`
	GenerationAttempts int          `json:"generation_attempts"`
	GenerationError    string       `json:"generation_error,omitempty"`
	SourceFilename     string       `json:"source_filename,omitempty"`
	ExtractionMethod   string       `json:"extraction_method,omitempty"`
	InputTruncated     bool         `json:"input_truncated"`
	StartedAt          time.Time    `json:"started_at"`
	CompletedAt        time.Time    `json:"completed_at"`
}

// Analysis is the full structured result handed to presentation layers.
type Analysis struct {
	Narrative     string           `json:"narrative,omitempty"`
	Sections      SectionSet       `json:"sections"`
	Metrics       FinancialMetrics `json:"metrics"`
	Rows          []ItemizedRow    `json:"itemized_rows"`
	Flags         []FlagRecord     `json:"flags"`
	RiskScore     int              `json:"risk_score"`
	RiskLevel     RiskLevel        `json:"risk_level"`
	LocalEstimate float64          `json:"local_estimate"`
	LocalFlags    []string         `json:"local_flags"`
	Mode          AnalysisMode     `json:"mode"`
}

type ResponseEnvelope struct {
	Analysis       Analysis    `json:"analysis"`
	ReportMarkdown string      `json:"report_markdown"`
	RunMetadata    RunMetadata `json:"run_metadata"`
	Disclaimer     string      `json:"disclaimer"`
}
