package billaudit

import (
	"reflect"
	"testing"
)

const sampleNarrative = `SUMMARY
- The bill is mostly reasonable but two items deserve attention.

ITEMIZED
- Facility fee | $1,800 | Standard ER facility charge
- Lab panel | $650 | Appears twice on the bill

INSURANCE
- Total billed: $4,000
- Insurance paid: $2,200
- Patient owes: $1,800
- Potential overcharge / savings opportunity: $650

FLAGS
- CRITICAL: Duplicate lab panel charge of $650 detected on the same date of service.
- Moderate: Facility fee is high for this visit type.

GUIDANCE
- Call the billing office and request an itemized statement.

ACTION_PLAN
- Step 1: Request itemized bill.

DISPUTE_LETTER
- Dear Billing Department, I am writing to dispute charges on my account.

PHONE_SCRIPT
- Hello, I have a question about duplicate charges on my bill.
`

func TestSegmentNarrativeAllKeysPresent(t *testing.T) {
	inputs := []string{
		"",
		"no headings at all\njust text",
		sampleNarrative,
		"FLAGS\n- one flag",
	}
	for _, in := range inputs {
		got := SegmentNarrative(in)
		if len(got) != len(SectionNames) {
			t.Fatalf("SegmentNarrative(%.20q): %d keys, want %d", in, len(got), len(SectionNames))
		}
		for _, name := range SectionNames {
			if _, ok := got[name]; !ok {
				t.Errorf("SegmentNarrative(%.20q): missing key %s", in, name)
			}
		}
	}
}

func TestSegmentNarrativeContentPlacement(t *testing.T) {
	got := SegmentNarrative(sampleNarrative)

	if len(got[SectionItemized]) != 2 {
		t.Fatalf("ITEMIZED lines = %d, want 2", len(got[SectionItemized]))
	}
	if got[SectionItemized][0] != "- Facility fee | $1,800 | Standard ER facility charge" {
		t.Errorf("unexpected first itemized line: %q", got[SectionItemized][0])
	}
	if len(got[SectionFlags]) != 2 {
		t.Errorf("FLAGS lines = %d, want 2", len(got[SectionFlags]))
	}
	if len(got[SectionPhoneScript]) != 1 {
		t.Errorf("PHONE_SCRIPT lines = %d, want 1", len(got[SectionPhoneScript]))
	}
}

func TestSegmentNarrativeHeadingForms(t *testing.T) {
	in := "summary:\n- lower with colon\nFlags::\n- double colon\n"
	got := SegmentNarrative(in)
	if len(got[SectionSummary]) != 1 || got[SectionSummary][0] != "- lower with colon" {
		t.Errorf("SUMMARY = %v", got[SectionSummary])
	}
	if len(got[SectionFlags]) != 1 || got[SectionFlags][0] != "- double colon" {
		t.Errorf("FLAGS = %v", got[SectionFlags])
	}
}

func TestSegmentNarrativeDropsPreamble(t *testing.T) {
	in := "Here is my analysis of your bill.\nIt looks fine.\nSUMMARY\n- all good\n"
	got := SegmentNarrative(in)
	if want := []string{"- all good"}; !reflect.DeepEqual(got[SectionSummary], want) {
		t.Errorf("SUMMARY = %v, want %v", got[SectionSummary], want)
	}
	for _, name := range SectionNames[1:] {
		if len(got[name]) != 0 {
			t.Errorf("%s should be empty, got %v", name, got[name])
		}
	}
}

func TestSegmentNarrativeUnrecognizedHeadingIsContent(t *testing.T) {
	in := "SUMMARY\n- fine\nEXTRAS\n- this stays under summary\n"
	got := SegmentNarrative(in)
	want := []string{"- fine", "EXTRAS", "- this stays under summary"}
	if !reflect.DeepEqual(got[SectionSummary], want) {
		t.Errorf("SUMMARY = %v, want %v", got[SectionSummary], want)
	}
}
