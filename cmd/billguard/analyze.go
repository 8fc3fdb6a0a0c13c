package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joelkehle/billguard/internal/billaudit"
	"github.com/joelkehle/billguard/internal/exitcode"
	"github.com/joelkehle/billguard/internal/logging"
)

var (
	analyzeInsurancePath string
	analyzeLocalOnly     bool
	analyzeJSON          bool
	analyzeOutPath       string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [bill-file]",
	Short: "Analyze a bill and write the audit report",
	Long: "Runs the full analysis on a bill read from the file argument or stdin and writes the markdown audit report. " +
		"Narrative generation needs ANTHROPIC_API_KEY; pass --local-only to run the pattern checks alone.",
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeInsurancePath, "insurance", "", "Path to an insurance EOB document to cross-check")
	f.BoolVar(&analyzeLocalOnly, "local-only", false, "Skip narrative generation and use the local pattern checks only")
	f.BoolVar(&analyzeJSON, "json", false, "Write the full analysis envelope as JSON instead of the markdown report")
	f.StringVar(&analyzeOutPath, "out", "", "Write output to this file instead of stdout")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.Log.Level, cfg.Log.Format)
	ctx := context.Background()

	billText, meta, err := readBillArg(ctx, args)
	if err != nil {
		log.Error().Err(err).Msg("failed to read bill")
		os.Exit(exitcode.InputError)
	}
	req := billaudit.RequestEnvelope{BillText: billText, Model: cfg.Model, Metadata: meta}

	if analyzeInsurancePath != "" {
		ins, insErr := readDocumentFile(ctx, analyzeInsurancePath)
		if insErr != nil {
			log.Error().Err(insErr).Msg("failed to read insurance document")
			os.Exit(exitcode.InputError)
		}
		req.InsuranceText = ins.Text
	}

	var res billaudit.ResponseEnvelope
	if analyzeLocalOnly {
		res, err = billaudit.RunLocal(req)
	} else {
		caller, callerErr := billaudit.NewAnthropicCallerFromEnv()
		if callerErr != nil {
			log.Error().Err(callerErr).Msg("narrative generation unavailable; re-run with --local-only for pattern checks alone")
			os.Exit(exitcode.AuthError)
		}
		res, err = billaudit.NewPipeline(caller).RunWithProgress(ctx, req, func(stage, message string) {
			log.Info().Str("stage", stage).Msg(message)
		})
	}
	if err != nil {
		log.Error().Err(err).Msg("analysis failed")
		os.Exit(exitcode.InputError)
	}
	if res.RunMetadata.GenerationError != "" {
		log.Warn().Str("error", res.RunMetadata.GenerationError).Msg("generation failed, report contains local checks only")
	}

	output := res.ReportMarkdown
	if analyzeJSON {
		encoded, encErr := json.MarshalIndent(res, "", "  ")
		if encErr != nil {
			log.Error().Err(encErr).Msg("failed to encode result")
			os.Exit(exitcode.OutputError)
		}
		output = string(encoded) + "\n"
	}
	if err := writeAnalyzeOutput(output); err != nil {
		log.Error().Err(err).Msg("failed to write output")
		os.Exit(exitcode.OutputError)
	}
	return nil
}

func writeAnalyzeOutput(output string) error {
	if analyzeOutPath == "" {
		_, err := fmt.Print(output)
		return err
	}
	return os.WriteFile(analyzeOutPath, []byte(output), 0o644)
}
