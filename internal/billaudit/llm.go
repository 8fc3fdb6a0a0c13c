package billaudit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	analysisMaxTokens     = 1400
	chatMaxTokens         = 600
	generationTemperature = 0.2

	maxGenerationAttempts = 3
)

type llmFailureClass int

const (
	failureNone llmFailureClass = iota
	failureEmpty
	failureTimeout
	failureRateLimit
	failureServer
	failureClient
)

// NarrativeCaller produces the structured analysis narrative and follow-up
// chat replies. Implementations must be safe for concurrent use.
type NarrativeCaller interface {
	GenerateNarrative(ctx context.Context, model, prompt string) (string, error)
	ChatReply(ctx context.Context, model string, turns []ChatTurn) (string, error)
}

type AnthropicCaller struct {
	messages AnthropicMessager
}

type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type AnthropicClientCreator func(apiKey string) AnthropicMessager

func defaultAnthropicCreator(apiKey string) AnthropicMessager {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &c.Messages
}

var newAnthropicClient AnthropicClientCreator = defaultAnthropicCreator

func NewAnthropicCallerFromEnv() (*AnthropicCaller, error) {
	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not configured")
	}
	return &AnthropicCaller{messages: newAnthropicClient(apiKey)}, nil
}

func (a *AnthropicCaller) GenerateNarrative(ctx context.Context, model, prompt string) (string, error) {
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(resolveModel(model)),
		MaxTokens:   analysisMaxTokens,
		System:      []anthropic.TextBlockParam{{Text: analysisSystemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(generationTemperature),
	})
	if err != nil {
		return "", err
	}
	return concatTextBlocks(resp), nil
}

func (a *AnthropicCaller) ChatReply(ctx context.Context, model string, turns []ChatTurn) (string, error) {
	msgs := make([]anthropic.MessageParam, 0, len(turns))
	for _, turn := range turns {
		block := anthropic.NewTextBlock(turn.Content)
		if turn.Role == RoleAssistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(block))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(block))
		}
	}
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(resolveModel(model)),
		MaxTokens:   chatMaxTokens,
		System:      []anthropic.TextBlockParam{{Text: chatSystemPrompt}},
		Messages:    msgs,
		Temperature: anthropic.Float(generationTemperature),
	})
	if err != nil {
		return "", err
	}
	return concatTextBlocks(resp), nil
}

func resolveModel(model string) string {
	if strings.TrimSpace(model) == "" {
		return DefaultModel
	}
	return model
}

func concatTextBlocks(resp *anthropic.Message) string {
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

// GenerationExecutor runs one narrative generation with bounded retries.
// Only transport failures that look transient are retried; an empty reply
// counts as one of them since the model occasionally returns nothing under
// load.
type GenerationExecutor struct {
	caller NarrativeCaller
}

func NewGenerationExecutor(caller NarrativeCaller) *GenerationExecutor {
	return &GenerationExecutor{caller: caller}
}

func (e *GenerationExecutor) Generate(ctx context.Context, model, prompt string) (string, int, error) {
	attempts := 0
	for attempt := 1; attempt <= maxGenerationAttempts; attempt++ {
		attempts = attempt
		raw, err := e.caller.GenerateNarrative(ctx, model, prompt)
		if err != nil {
			class := classifyTransportError(err)
			if retryableClass(class) && attempt < maxGenerationAttempts {
				time.Sleep(backoffDelay(attempt))
				continue
			}
			return "", attempts, fmt.Errorf("generation transport failure: %w", err)
		}

		narrative := stripCodeFences(raw)
		if narrative == "" {
			if attempt < maxGenerationAttempts {
				continue
			}
			return "", attempts, errors.New("generation failed: empty narrative")
		}
		return narrative, attempts, nil
	}
	return "", attempts, errors.New("generation failed after retries")
}

func retryableClass(class llmFailureClass) bool {
	return class == failureTimeout || class == failureRateLimit || class == failureServer
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
	}
	return s
}

func classifyTransportError(err error) llmFailureClass {
	msg := strings.ToLower(err.Error())
	if errors.Is(err, context.DeadlineExceeded) {
		return failureTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return failureTimeout
	}
	switch {
	case strings.Contains(msg, "429"):
		return failureRateLimit
	case strings.Contains(msg, " 5") || strings.Contains(msg, "status code: 5") || strings.Contains(msg, "server error"):
		return failureServer
	case strings.Contains(msg, " 4") || strings.Contains(msg, "status code: 4"):
		return failureClient
	default:
		return failureServer
	}
}

func backoffDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 1 * time.Second
	}
	return 2 * time.Second
}
