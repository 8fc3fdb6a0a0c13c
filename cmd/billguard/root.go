package main

import (
	"github.com/spf13/cobra"

	"github.com/joelkehle/billguard/internal/billaudit"
	"github.com/joelkehle/billguard/internal/config"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "billguard",
	Short: "Medical bill audit and risk scoring",
	Long:  "Audits medical bills for likely billing errors and produces a structured markdown report with an overall risk score.",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.Model, "model", billaudit.DefaultModel, "Claude model used for narrative generation")
	pf.StringVar(&cfg.Log.Level, "log-level", "info", "Log level: debug, info, warn, or error")
	pf.StringVar(&cfg.Log.Format, "log-format", "text", "Log format: text or json")
}
