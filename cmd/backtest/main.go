package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"golang-stock-autotrader/internal/backtest"
	"golang-stock-autotrader/internal/entity"
	"golang-stock-autotrader/internal/signal"
)

var (
	sampleFile  string
	balance     int64
	shortPeriod int
	longPeriod  int
	asJSON      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay recorded quotes through the crossover strategy",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(sampleFile)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", sampleFile, err)
		}
		defer f.Close()

		prices, err := backtest.LoadPrices(f)
		if err != nil {
			return err
		}
		result, err := backtest.Run(prices, backtest.Config{
			InitialBalance: balance,
			ShortPeriod:    shortPeriod,
			LongPeriod:     longPeriod,
		})
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STEP\tPRICE\tSIGNAL\tQTY\tBALANCE\tROI %")
		for _, s := range result.Trades {
			fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%d\t%s\n", s.Index, s.Price, s.Signal, s.Quantity, s.Balance, s.ROI.StringFixed(2))
		}
		fmt.Fprintf(w, "\nPrices\t%d\n", len(prices))
		fmt.Fprintf(w, "Buy / Sell\t%d / %d\n", result.Orders[string(signal.Buy)], result.Orders[string(signal.Sell)])
		fmt.Fprintf(w, "Final ROI\t%s%%\n", result.FinalROI.StringFixed(2))
		return w.Flush()
	},
}

func main() {
	rootCmd := &cobra.Command{Use: "backtest", SilenceUsage: true}

	runCmd.Flags().StringVarP(&sampleFile, "file", "f", "sample.json", "JSON array of quotes with a stck_prpr field")
	runCmd.Flags().Int64Var(&balance, "balance", backtest.DefaultInitialBalance, "Initial cash balance in KRW")
	runCmd.Flags().IntVar(&shortPeriod, "short", entity.DefaultMAShortPeriod, "Short moving average period")
	runCmd.Flags().IntVar(&longPeriod, "long", entity.DefaultMALongPeriod, "Long moving average period")
	runCmd.Flags().BoolVar(&asJSON, "json", false, "Print every step as JSON")

	rootCmd.AddCommand(runCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing backtest CLI: %s\n", err)
		os.Exit(1)
	}
}
