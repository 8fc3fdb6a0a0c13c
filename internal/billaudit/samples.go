package billaudit

// Sample documents for demos and tests. The amounts are chosen so the local
// heuristics and the risk scorer behave predictably: the demo bill trips all
// three local checks, the clean bill trips none, and the high-risk bill
// carries a large CT charge on top of a doubled lab panel.

const SampleBill = `Visit: Chest pain evaluation
Facility fee: $1,800
CPT 71045: $800 (chest X-ray)
CPT 93000: $450 (ECG)
Lab panel: $650 ×2
Medication: $300
Total billed: $4,000
Insurance paid: $2,200
Patient responsibility: $1,800`

const SampleBillClean = `Visit: Primary care follow-up
Office visit CPT 99214: $280
Blood pressure check: $40
Total billed: $320
Insurance paid: $220
Patient responsibility: $100`

const SampleBillHighRisk = `Visit: Emergency room abdominal pain evaluation
Facility fee: $2,400
CPT 74176: $3,200 (CT abdomen/pelvis)
Lab panel: $780 ×2
IV hydration: $950
Medication: $425
Total billed: $7,755
Insurance paid: $3,100
Patient responsibility: $4,655`

const SampleEOB = `Insurance explanation of benefits
Claim status: Processed
Allowed amount: $2,900
Insurance paid: $2,200
Patient responsibility: $700
Notes:
- One lab panel allowed
- Facility fee subject to review
- Patient may be balance billed for non-covered amounts`

const SampleEOBClean = `Insurance explanation of benefits
Claim status: Processed
Allowed amount: $280
Insurance paid: $220
Patient responsibility: $100`

const SampleEOBHighRisk = `Insurance explanation of benefits
Claim status: Processed
Allowed amount: $3,800
Insurance paid: $3,100
Patient responsibility: $700
Notes:
- CT scan allowed
- Only one lab panel allowed
- IV hydration requires itemized review`

// PatientScript is the ready-made phone script surfaced when a degraded run
// has no generated script to offer.
const PatientScript = "Hello, I reviewed this bill and I need an itemized explanation of each charge, especially any repeated lab fees and the facility fee. " +
	"Please confirm whether any charges were duplicated, explain how my patient responsibility was calculated, and send a corrected statement if errors are found."

// ComplianceRefs are the regulatory touchpoints printed at the bottom of
// every report.
var ComplianceRefs = []string{
	"HIPAA privacy: Avoid entering real patient identifiers during demos.",
	"EU AI Act transparency: AI-generated guidance should be clearly labeled and reviewable.",
	"Consumer protection: Billing flags are informational, not legal or medical advice.",
}

// SampleDocument is one named bill and insurance pairing offered by the
// console for one-click demos.
type SampleDocument struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Bill      string `json:"bill"`
	Insurance string `json:"insurance"`
}

// SampleDocuments returns the built-in demo pairings in display order.
func SampleDocuments() []SampleDocument {
	return []SampleDocument{
		{Key: "demo", Label: "Demo Bill", Bill: SampleBill, Insurance: SampleEOB},
		{Key: "clean", Label: "Clean Bill", Bill: SampleBillClean, Insurance: SampleEOBClean},
		{Key: "high-risk", Label: "High-Risk Bill", Bill: SampleBillHighRisk, Insurance: SampleEOBHighRisk},
	}
}
