package billaudit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	StageLocalScan  = "local_scan"
	StageGeneration = "generation"
	StageAssembly   = "assembly"
)

var ErrEmptyBill = errors.New("bill text must not be empty")

type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

type StageProgressFn func(stage, message string)

// Pipeline drives one bill analysis: a local heuristic scan, a narrative
// generation with bounded retries, then deterministic assembly. A generation
// failure degrades the run to the local-only analysis instead of failing it;
// the only hard error is an empty bill.
type Pipeline struct {
	exec *GenerationExecutor
}

func NewPipeline(caller NarrativeCaller) *Pipeline {
	return &Pipeline{exec: NewGenerationExecutor(caller)}
}

func (p *Pipeline) Run(ctx context.Context, req RequestEnvelope) (ResponseEnvelope, error) {
	return p.runWithProgress(ctx, req, nil)
}

func (p *Pipeline) RunWithProgress(ctx context.Context, req RequestEnvelope, progress StageProgressFn) (ResponseEnvelope, error) {
	return p.runWithProgress(ctx, req, progress)
}

// RunLocal analyzes a bill with the pattern checks alone and skips narrative
// generation entirely. The envelope is marked degraded with no failed stage.
func RunLocal(req RequestEnvelope) (ResponseEnvelope, error) {
	res := ResponseEnvelope{
		RunMetadata: RunMetadata{
			RunID:     uuid.NewString(),
			Mode:      ModeDegraded,
			StartedAt: time.Now(),
		},
		Disclaimer: Disclaimer,
	}
	if strings.TrimSpace(req.BillText) == "" {
		return res, ErrEmptyBill
	}
	res.RunMetadata.SourceFilename = req.Metadata.SourceFilename
	res.RunMetadata.ExtractionMethod = req.Metadata.ExtractionMethod
	res.RunMetadata.InputTruncated = req.Metadata.Truncated
	if len(req.BillText) > MaxBillChars {
		req.BillText = req.BillText[:MaxBillChars]
		res.RunMetadata.InputTruncated = true
	}
	res.Analysis = BuildLocalAnalysis(req.BillText)
	res.RunMetadata.StagesExecuted = []string{StageLocalScan, StageAssembly}
	res.RunMetadata.CompletedAt = time.Now()
	res.ReportMarkdown = BuildReport(res.Analysis)
	return res, nil
}

// Answer relays one follow-up chat question through the same caller the
// pipeline generates with.
func (p *Pipeline) Answer(ctx context.Context, model string, req ChatRequest) (string, error) {
	return AnswerQuestion(ctx, p.exec.caller, model, req)
}

func (p *Pipeline) runWithProgress(ctx context.Context, req RequestEnvelope, progress StageProgressFn) (ResponseEnvelope, error) {
	res := ResponseEnvelope{
		RunMetadata: RunMetadata{
			RunID:     uuid.NewString(),
			Mode:      ModeComplete,
			StartedAt: time.Now(),
		},
		Disclaimer: Disclaimer,
	}
	if strings.TrimSpace(req.BillText) == "" {
		return res, ErrEmptyBill
	}
	res.RunMetadata.SourceFilename = req.Metadata.SourceFilename
	res.RunMetadata.ExtractionMethod = req.Metadata.ExtractionMethod
	res.RunMetadata.InputTruncated = req.Metadata.Truncated
	if len(req.BillText) > MaxBillChars {
		req.BillText = req.BillText[:MaxBillChars]
		res.RunMetadata.InputTruncated = true
	}

	emit(progress, StageLocalScan, "Scanning the bill for known anomaly patterns...")
	localEstimate, localFlags := EstimateLocalRisk(req.BillText)
	res.RunMetadata.StagesExecuted = append(res.RunMetadata.StagesExecuted, StageLocalScan)
	emit(progress, StageLocalScan, fmt.Sprintf("Local scan found %d flag(s), estimated exposure %s", len(localFlags), FormatCurrency(localEstimate)))

	emit(progress, StageGeneration, "Generating the structured audit narrative...")
	stageStarted := time.Now()
	narrative, attempts, err := p.exec.Generate(ctx, req.Model, BuildPrompt(req.BillText, req.InsuranceText))
	res.RunMetadata.GenerationAttempts = attempts
	if err != nil {
		return p.finalizeDegraded(res, req, localEstimate, localFlags, &StageError{Stage: StageGeneration, Err: err}), nil
	}
	res.RunMetadata.StagesExecuted = append(res.RunMetadata.StagesExecuted, StageGeneration)
	emit(progress, StageGeneration, fmt.Sprintf("Narrative generated in %s", time.Since(stageStarted).Round(time.Millisecond)))

	emit(progress, StageAssembly, "Assembling metrics, flags, and risk score...")
	res.Analysis = buildAnalysis(narrative, req.BillText, localEstimate, localFlags)
	res.RunMetadata.StagesExecuted = append(res.RunMetadata.StagesExecuted, StageAssembly)
	return p.finalize(res), nil
}

func (p *Pipeline) finalizeDegraded(res ResponseEnvelope, req RequestEnvelope, localEstimate float64, localFlags []string, stageErr *StageError) ResponseEnvelope {
	res.RunMetadata.Mode = ModeDegraded
	res.RunMetadata.StageFailed = stageErr.Stage
	res.RunMetadata.GenerationError = stageErr.Error()
	res.Analysis = buildLocalAnalysis(req.BillText, localEstimate, localFlags)
	res.RunMetadata.StagesExecuted = append(res.RunMetadata.StagesExecuted, StageAssembly)
	return p.finalize(res)
}

func (p *Pipeline) finalize(res ResponseEnvelope) ResponseEnvelope {
	res.RunMetadata.CompletedAt = time.Now()
	res.ReportMarkdown = BuildReport(res.Analysis)
	return res
}

func emit(progress StageProgressFn, stage, message string) {
	if progress != nil {
		progress(stage, message)
	}
}
