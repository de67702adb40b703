package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "trader",
	Short:         "Moving average crossover trader",
	Long:          `Polls the brokerage for one stock, evaluates the MA crossover and places orders, plus maintenance and reporting commands.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-trader.yaml", "Path to the configuration file")

	rootCmd.AddCommand(
		runCmd,
		statusCmd,
		historyCmd,
		statsCmd,
		logsCmd,
		backupCmd,
		cleanupCmd,
		checkCmd,
		exportCmd,
		importCmd,
		monitorCmd,
	)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing trader CLI: %s\n", err)
		os.Exit(1)
	}
}
