package billaudit

import (
	"regexp"
	"strings"
)

// SeverityReview is assigned when no severity keyword matches.
const SeverityReview = "review"

// Keyword order is priority order: when a flag mentions several severities,
// the first match in this list wins.
var severityKeywords = []string{
	"critical",
	"important",
	"significant",
	"moderate",
	"low",
	"worth asking",
}

const (
	maxTitleWords     = 9
	maxDetailWords    = 18
	maxExplainerWords = 34
)

var (
	flagNumberPrefix   = regexp.MustCompile(`(?i)^flag\s*#?\d+\s*[—–:-]\s*`)
	bracketTagPrefix   = regexp.MustCompile(`^\[[A-Z0-9 _-]+\]\s*:?\s*`)
	severityWordPrefix = regexp.MustCompile(`(?i)^(?:critical|important|significant|moderate|low|worth asking)\s*[—–:-]\s*`)
	sentenceBoundary   = regexp.MustCompile(`[.!?](?:\s+|$)`)
)

// FlagSeverity returns the first severity keyword contained in the text,
// scanning the priority list in order, or SeverityReview when none match.
func FlagSeverity(text string) string {
	lower := strings.ToLower(text)
	for _, kw := range severityKeywords {
		if strings.Contains(lower, kw) {
			return kw
		}
	}
	return SeverityReview
}

// SummarizeFlag produces a short title for one flag statement: leading
// bullet markers, "Flag N —" prefixes, bracketed all-caps tags, and severity
// keyword prefixes are stripped, then the text up to the first colon or
// sentence boundary is kept, capped at nine words.
func SummarizeFlag(text string) string {
	clean := cleanFlagText(text)
	if i := strings.Index(clean, ":"); i >= 0 {
		clean = strings.TrimSpace(clean[:i])
	}
	if sents := splitSentences(clean); len(sents) > 0 {
		clean = sents[0]
	}
	return truncateWords(clean, maxTitleWords)
}

// ConciseFlagDetail produces a one-line detail: the first sentence after the
// first colon (the whole cleaned text when there is no colon), capped at
// eighteen words.
func ConciseFlagDetail(text string) string {
	rest := afterColon(cleanFlagText(text))
	if sents := splitSentences(rest); len(sents) > 0 {
		rest = sents[0]
	}
	return truncateWords(rest, maxDetailWords)
}

// ShortFlagExplainer produces a slightly longer rendering: up to the first
// two sentences after the first colon, capped at thirty-four words.
func ShortFlagExplainer(text string) string {
	rest := afterColon(cleanFlagText(text))
	sents := splitSentences(rest)
	if len(sents) > 2 {
		sents = sents[:2]
	}
	return truncateWords(strings.Join(sents, " "), maxExplainerWords)
}

// ClassifyFlag bundles the severity and all three renderings for one raw
// flag line.
func ClassifyFlag(text string) FlagRecord {
	return FlagRecord{
		Raw:       text,
		Severity:  FlagSeverity(text),
		Title:     SummarizeFlag(text),
		Detail:    ConciseFlagDetail(text),
		Explainer: ShortFlagExplainer(text),
	}
}

func cleanFlagText(text string) string {
	s := strings.TrimSpace(text)
	s = bulletPrefix.ReplaceAllString(s, "")
	s = flagNumberPrefix.ReplaceAllString(s, "")
	s = bracketTagPrefix.ReplaceAllString(s, "")
	s = severityWordPrefix.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func afterColon(clean string) string {
	i := strings.Index(clean, ":")
	if i < 0 {
		return clean
	}
	rest := strings.TrimSpace(clean[i+1:])
	if rest == "" {
		return clean
	}
	return rest
}

func splitSentences(text string) []string {
	var out []string
	rest := strings.TrimSpace(text)
	for rest != "" {
		loc := sentenceBoundary.FindStringIndex(rest)
		if loc == nil {
			out = append(out, rest)
			break
		}
		out = append(out, strings.TrimSpace(rest[:loc[1]]))
		rest = strings.TrimSpace(rest[loc[1]:])
	}
	return out
}

func truncateWords(text string, max int) string {
	words := strings.Fields(text)
	if len(words) <= max {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:max], " ") + "…"
}
