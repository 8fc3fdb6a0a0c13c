package billaudit

import (
	"context"
	"errors"
	"testing"
)

type fakeCaller struct {
	responses []string
	errs      []error
	i         int

	chatReply string
	chatErr   error
	lastModel string
	lastTurns []ChatTurn
	prompts   []string
}

func (f *fakeCaller) GenerateNarrative(_ context.Context, model, prompt string) (string, error) {
	f.lastModel = model
	f.prompts = append(f.prompts, prompt)
	idx := f.i
	f.i++
	if idx < len(f.errs) && f.errs[idx] != nil {
		return "", f.errs[idx]
	}
	if idx < len(f.responses) {
		return f.responses[idx], nil
	}
	return "", nil
}

func (f *fakeCaller) ChatReply(_ context.Context, model string, turns []ChatTurn) (string, error) {
	f.lastModel = model
	f.lastTurns = turns
	return f.chatReply, f.chatErr
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct{ in, want string }{
		{"SUMMARY\n- plain text passes through", "SUMMARY\n- plain text passes through"},
		{"```text\nSUMMARY\n- fenced\n```", "SUMMARY\n- fenced"},
		{"```\nSUMMARY\n- bare fence\n```", "SUMMARY\n- bare fence"},
		{"```text```", "text"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := stripCodeFences(tc.in); got != tc.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBackoffDelay(t *testing.T) {
	if backoffDelay(1).Seconds() != 1 {
		t.Fatal("attempt 1 should be 1s")
	}
	if backoffDelay(2).Seconds() != 2 {
		t.Fatal("attempt 2 should be 2s")
	}
}

func TestClassifyTransportError(t *testing.T) {
	cases := []struct {
		err  error
		want llmFailureClass
	}{
		{context.DeadlineExceeded, failureTimeout},
		{errors.New("status code: 429 too many requests"), failureRateLimit},
		{errors.New("status code: 500 upstream error"), failureServer},
		{errors.New("status code: 400 bad request"), failureClient},
		{errors.New("connection reset by peer"), failureServer},
	}
	for _, tc := range cases {
		if got := classifyTransportError(tc.err); got != tc.want {
			t.Errorf("classifyTransportError(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestRetryableClass(t *testing.T) {
	for class, want := range map[llmFailureClass]bool{
		failureTimeout:   true,
		failureRateLimit: true,
		failureServer:    true,
		failureClient:    false,
		failureEmpty:     false,
	} {
		if got := retryableClass(class); got != want {
			t.Errorf("retryableClass(%v) = %v, want %v", class, got, want)
		}
	}
}

func TestResolveModel(t *testing.T) {
	if got := resolveModel(""); got != DefaultModel {
		t.Errorf("resolveModel(\"\") = %q, want %q", got, DefaultModel)
	}
	if got := resolveModel("claude-opus-4-1"); got != "claude-opus-4-1" {
		t.Errorf("explicit model overridden: %q", got)
	}
}

func TestNewAnthropicCallerFromEnvMissingKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := NewAnthropicCallerFromEnv(); err == nil {
		t.Fatal("expected error without ANTHROPIC_API_KEY")
	}
}

func TestGenerationExecutorRetryThenSuccess(t *testing.T) {
	caller := &fakeCaller{
		responses: []string{"", sampleNarrative},
		errs:      []error{errors.New("status code: 500")},
	}
	exec := NewGenerationExecutor(caller)
	narrative, attempts, err := exec.Generate(context.Background(), "", "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	if narrative != sampleNarrative {
		t.Errorf("unexpected narrative: %.40q", narrative)
	}
}

func TestGenerationExecutorNonRetryableFailsFast(t *testing.T) {
	caller := &fakeCaller{errs: []error{errors.New("status code: 400 invalid request")}}
	exec := NewGenerationExecutor(caller)
	_, attempts, err := exec.Generate(context.Background(), "", "prompt")
	if err == nil {
		t.Fatal("expected transport error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 for a client error", attempts)
	}
}

func TestGenerationExecutorEmptyRepliesExhaust(t *testing.T) {
	caller := &fakeCaller{responses: []string{"", "   ", "```\n```"}}
	exec := NewGenerationExecutor(caller)
	_, attempts, err := exec.Generate(context.Background(), "", "prompt")
	if err == nil {
		t.Fatal("expected error after persistent empty replies")
	}
	if attempts != maxGenerationAttempts {
		t.Errorf("attempts = %d, want %d", attempts, maxGenerationAttempts)
	}
}
