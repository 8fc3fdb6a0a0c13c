package billaudit

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one message in a follow-up conversation.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest carries everything needed to answer one follow-up question
// about an analyzed bill. History holds prior turns only, question is the
// new one.
type ChatRequest struct {
	BillText      string     `json:"bill_text"`
	InsuranceText string     `json:"insurance_text"`
	AnalysisText  string     `json:"analysis_text"`
	History       []ChatTurn `json:"history"`
	Question      string     `json:"question"`
}

var ErrEmptyQuestion = errors.New("question must not be empty")

// BuildChatTurns assembles the message list for one follow-up question:
// the context message, the fixed primer, the prior history, then the new
// question.
func BuildChatTurns(billText, insuranceText, analysisText string, history []ChatTurn, question string) []ChatTurn {
	turns := make([]ChatTurn, 0, len(history)+3)
	turns = append(turns,
		ChatTurn{Role: RoleUser, Content: BuildChatContext(billText, insuranceText, analysisText)},
		ChatTurn{Role: RoleAssistant, Content: chatPrimer},
	)
	turns = append(turns, history...)
	turns = append(turns, ChatTurn{Role: RoleUser, Content: question})
	return turns
}

// AnswerQuestion runs one follow-up chat turn through the caller and
// returns the trimmed reply.
func AnswerQuestion(ctx context.Context, caller NarrativeCaller, model string, req ChatRequest) (string, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	turns := BuildChatTurns(req.BillText, req.InsuranceText, req.AnalysisText, req.History, question)
	reply, err := caller.ChatReply(ctx, model, turns)
	if err != nil {
		return "", fmt.Errorf("chat reply: %w", err)
	}
	return strings.TrimSpace(reply), nil
}
