package main

import (
	"os"

	"github.com/joelkehle/billguard/internal/exitcode"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitcode.UsageError)
	}
}
