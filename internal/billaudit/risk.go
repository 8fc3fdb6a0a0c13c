package billaudit

import (
	"regexp"
	"strings"
)

// Score weights are deliberate policy, tuned so severity keywords dominate
// and the capped local-heuristic volume can never reach high risk on its
// own. A reassuring summary pulls the score down but never below the floor.
const (
	pointsCritical  = 22
	pointsImportant = 14
	pointsModerate  = 8
	pointsLow       = 4
	pointsUnlabeled = 6

	localFlagPoints = 8
	localFlagCap    = 16

	duplicateBonus = 8
	disputeBonus   = 6

	savingsLargePoints  = 15
	savingsMediumPoints = 8
	savingsSmallPoints  = 3

	reassuringCredit = 12

	scoreFloor   = 5
	scoreCeiling = 95
)

var savingsScanPattern = regexp.MustCompile(`\$\s*([\d,]+)`)

// ComputeRiskScore combines narrative flag severities, local heuristic
// volume, duplicate/denial keyword signals, and the stated savings magnitude
// into one bounded score. Additive and order-independent except for the
// final clamp to [5, 95].
func ComputeRiskScore(sections SectionSet, localFlags []string) int {
	score := 0
	for _, line := range sections[SectionFlags] {
		score += severityPoints(line)
	}
	score += min(len(localFlags)*localFlagPoints, localFlagCap)

	all := make([]string, 0, len(sections[SectionFlags])+len(localFlags))
	all = append(all, sections[SectionFlags]...)
	all = append(all, localFlags...)
	if anyContains(all, "duplicate") {
		score += duplicateBonus
	}
	if anyContains(all, "balance bill") || anyContains(all, "denied") {
		score += disputeBonus
	}

	score += savingsSignal(strings.Join(sections[SectionInsurance], " "))

	summary := strings.ToLower(strings.Join(sections[SectionSummary], " "))
	if strings.Contains(summary, "mostly clean") || strings.Contains(summary, "mostly reasonable") {
		score -= reassuringCredit
	}

	return clampScore(score, scoreFloor)
}

// ComputeLocalRiskScore scores the no-narrative path from local heuristic
// flags alone. The floor drops to 0 so a clean bill can score risk-free
// when no narrative ever weighed in.
func ComputeLocalRiskScore(localFlags []string) int {
	score := min(len(localFlags)*localFlagPoints, localFlagCap)
	if anyContains(localFlags, "duplicate") {
		score += duplicateBonus
	}
	if anyContains(localFlags, "balance bill") || anyContains(localFlags, "denied") {
		score += disputeBonus
	}
	return clampScore(score, 0)
}

func severityPoints(line string) int {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "critical"):
		return pointsCritical
	case strings.Contains(lower, "important"), strings.Contains(lower, "significant"):
		return pointsImportant
	case strings.Contains(lower, "moderate"):
		return pointsModerate
	case strings.Contains(lower, "low"), strings.Contains(lower, "worth asking"):
		return pointsLow
	default:
		return pointsUnlabeled
	}
}

// savingsSignal scans the insurance text from the first "potential" forward
// for a dollar amount and weights it by magnitude.
func savingsSignal(insuranceText string) int {
	lower := strings.ToLower(insuranceText)
	idx := strings.Index(lower, "potential")
	if idx < 0 {
		return 0
	}
	m := savingsScanPattern.FindStringSubmatch(lower[idx:])
	if m == nil {
		return 0
	}
	amount := ExtractMoney(m[1])
	switch {
	case amount > 1000:
		return savingsLargePoints
	case amount > 250:
		return savingsMediumPoints
	case amount > 0:
		return savingsSmallPoints
	default:
		return 0
	}
}

func anyContains(lines []string, needle string) bool {
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), needle) {
			return true
		}
	}
	return false
}

func clampScore(score, floor int) int {
	if score < floor {
		return floor
	}
	if score > scoreCeiling {
		return scoreCeiling
	}
	return score
}

// RiskLevelFor maps a score to its display tier.
func RiskLevelFor(score int) RiskLevel {
	switch {
	case score >= 60:
		return RiskHigh
	case score >= 30:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Label returns the badge heading for a risk tier.
func (l RiskLevel) Label() string {
	switch l {
	case RiskHigh:
		return "High Risk"
	case RiskMedium:
		return "Medium Risk"
	default:
		return "Low Risk"
	}
}

// Note returns the one-line badge description for a risk tier.
func (l RiskLevel) Note() string {
	switch l {
	case RiskHigh:
		return "Multiple billing concerns detected"
	case RiskMedium:
		return "Some issues worth reviewing"
	default:
		return "Bill appears reasonable"
	}
}
