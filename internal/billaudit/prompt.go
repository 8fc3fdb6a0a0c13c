package billaudit

import (
	"fmt"
	"strings"
)

const analysisSystemPrompt = "You are a world-class medical billing advocate. " +
	"Reason carefully, stay patient-safe, and produce clear structured output."

const chatSystemPrompt = "You are BillGuard AI, a medical billing advocate helping a patient understand their bill. " +
	"Be concise, specific, and patient-friendly. Give actionable next steps when relevant."

// chatPrimer is the assistant turn injected after the context message so the
// conversation opens from an already-analyzed state.
const chatPrimer = "I've analyzed your bill and I'm ready to help with any questions."

const analysisPersona = `You are BillGuard AI, an expert medical bill auditor for patients. Your job is to reason carefully, translate billing language into plain English, spot anomalies, and produce actionable dispute guidance.

Analyze the provider bill and any insurance explanation of benefits below. Be skeptical, patient-first, and specific. Compare the two when possible. If something might be legitimate but still worth asking about, say that clearly.`

const analysisTasks = `Tasks:
1. Translate every code and item into plain English.
2. Itemize all charges with category, amount, and explanation.
3. Flag possible issues such as duplicates, unusual amounts, inconsistencies, missing context, payer/provider mismatches, or charges that deserve clarification.
4. Break down the finances: total billed, insurance paid, patient owes, and estimated potential overcharge or savings opportunity.
5. Generate a short dispute script the patient can use by phone or secure message.
6. If the insurance explanation of benefits conflicts with the provider bill, call that out clearly.
7. Lay out a numbered action plan, a formal dispute letter, and a phone script the patient can read verbatim.`

const analysisStructure = `Return plain text only using this exact section structure and headings:
SUMMARY
- ...

ITEMIZED
- Category | Amount | Explanation

INSURANCE
- Total billed: ...
- Insurance paid: ...
- Patient owes: ...
- Potential overcharge / savings opportunity: ...

FLAGS
- ...

GUIDANCE
- ...

ACTION_PLAN
- ...

DISPUTE_LETTER
- ...

PHONE_SCRIPT
- ...`

const noInsuranceProvided = "No insurance explanation of benefits was provided."

// BuildPrompt assembles the analysis prompt for one bill. An empty or
// whitespace-only insurance context is replaced with an explicit statement
// so the narrative never guesses at a missing document.
func BuildPrompt(rawBill, insuranceContext string) string {
	insuranceBlock := strings.TrimSpace(insuranceContext)
	if insuranceBlock == "" {
		insuranceBlock = noInsuranceProvided
	}
	return fmt.Sprintf(
		"%s\n\n%s\n\n%s\n\nBill input:\n%s\n\nInsurance / EOB input:\n%s",
		analysisPersona,
		analysisTasks,
		analysisStructure,
		rawBill,
		insuranceBlock,
	)
}

// BuildChatContext packs the bill, the insurance document, and the prior
// analysis into the single user message that opens every follow-up chat.
func BuildChatContext(billText, insuranceText, analysisText string) string {
	ins := insuranceText
	if ins == "" {
		ins = "None provided"
	}
	return fmt.Sprintf(
		"The patient's medical bill:\n%s\n\nThe patient's insurance explanation of benefits:\n%s\n\nPrevious BillGuard AI analysis:\n%s",
		billText,
		ins,
		analysisText,
	)
}
