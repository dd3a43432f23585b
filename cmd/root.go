package cmd

import (
	"os"

	"github.com/mezonai/cryptocurrency/logx"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cryptocurrency",
	Short: "Wallet ledger node CLI",
	Long:  "Command line interface for running a wallet ledger node and sending it operations.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed:", err)
		os.Exit(1)
	}
}
