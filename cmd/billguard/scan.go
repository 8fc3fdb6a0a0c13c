package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joelkehle/billguard/internal/billaudit"
	"github.com/joelkehle/billguard/internal/exitcode"
	"github.com/joelkehle/billguard/internal/logging"
)

var scanCmd = &cobra.Command{
	Use:   "scan [bill-file]",
	Short: "Run the local pattern checks only",
	Long:  "Scans a bill with the built-in pattern checks and prints the parsed totals, triggered flags, and local risk score. Never calls the narrative API, so no API key is needed.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.Log.Level, cfg.Log.Format)
	ctx := context.Background()

	billText, _, err := readBillArg(ctx, args)
	if err != nil {
		log.Error().Err(err).Msg("failed to read bill")
		os.Exit(exitcode.InputError)
	}

	estimate, flags := billaudit.EstimateLocalRisk(billText)
	totals := billaudit.ParseBillTotals(billText)
	score := billaudit.ComputeLocalRiskScore(flags)
	level := billaudit.RiskLevelFor(score)

	fmt.Printf("%s · %d/100 · %s\n", level.Label(), score, level.Note())
	if totals.TotalBilled > 0 {
		fmt.Printf("Total billed: %s\n", billaudit.FormatCurrency(totals.TotalBilled))
	}
	if totals.InsurancePaid > 0 {
		fmt.Printf("Insurance paid: %s\n", billaudit.FormatCurrency(totals.InsurancePaid))
	}
	if totals.PatientResponsibility > 0 {
		fmt.Printf("Patient responsibility: %s\n", billaudit.FormatCurrency(totals.PatientResponsibility))
	}
	if len(flags) == 0 {
		fmt.Println("No anomaly patterns triggered.")
		return nil
	}
	fmt.Printf("Potential overcharge estimate: %s\n", billaudit.FormatCurrency(estimate))
	for _, flag := range flags {
		fmt.Printf("  - %s\n", flag)
	}
	return nil
}
