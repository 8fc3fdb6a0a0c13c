package billaudit

import "strings"

// SegmentNarrative splits a narrative into the fixed set of named sections.
// A line whose trimmed, colon-stripped, uppercased form equals a recognized
// name becomes the current section and is itself discarded. Non-blank lines
// are appended under the current section; lines seen before any heading are
// dropped. Unrecognized headings are treated as plain content, so narratives
// that omit sections or invent new ones degrade instead of erroring.
func SegmentNarrative(narrative string) SectionSet {
	sections := make(SectionSet, len(SectionNames))
	for _, name := range SectionNames {
		sections[name] = []string{}
	}

	current := ""
	for _, line := range strings.Split(narrative, "\n") {
		stripped := strings.TrimSpace(line)
		heading := strings.ToUpper(strings.TrimRight(stripped, ":"))
		if _, ok := sections[heading]; ok {
			current = heading
			continue
		}
		if current != "" && stripped != "" {
			sections[current] = append(sections[current], stripped)
		}
	}
	return sections
}
