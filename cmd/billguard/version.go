package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Overridden at build time with -ldflags "-X main.version=v1.2.3".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the billguard version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("billguard " + version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
