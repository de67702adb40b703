package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var (
	cleanupDays int
	exportFile  string
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy the sqlite database file into the backup directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			path, err := a.maintenance.Backup(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Backup written to %s\n", path)
			return nil
		})
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete price, average, signal, log and account rows older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cleanupDays < 0 {
			return fmt.Errorf("days must not be negative, got %d", cleanupDays)
		}
		return withApp(func(a *app) error {
			days := cleanupDays
			if days == 0 {
				days = a.cfg.Trader.RetentionDays
			}
			deleted, err := a.maintenance.Cleanup(cmd.Context(), days)
			if err != nil {
				return err
			}
			w := newTable()
			for _, table := range sortedKeys(deleted) {
				fmt.Fprintf(w, "%s\t%d deleted\n", table, deleted[table])
			}
			return w.Flush()
		})
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that every table exists and print row counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			report, err := a.maintenance.CheckIntegrity(cmd.Context())
			if err != nil {
				return err
			}
			w := newTable()
			for _, table := range sortedKeys(report.Tables) {
				fmt.Fprintf(w, "%s\t%d rows\n", table, report.Tables[table])
			}
			for _, table := range report.MissingTables {
				fmt.Fprintf(w, "%s\tmissing\n", table)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if !report.OK {
				return fmt.Errorf("integrity check failed: %d missing tables", len(report.MissingTables))
			}
			fmt.Println("Integrity check passed")
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export trading data as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			var out io.Writer = os.Stdout
			if exportFile != "" {
				f, err := os.Create(exportFile)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", exportFile, err)
				}
				defer f.Close()
				out = f
			}
			return a.maintenance.Export(cmd.Context(), a.cfg.Trader.StockCode, out)
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import trading data exported by the export command",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()

		return withApp(func(a *app) error {
			counts, err := a.maintenance.Import(cmd.Context(), f)
			if err != nil {
				return err
			}
			w := newTable()
			for _, table := range sortedKeys(counts) {
				fmt.Fprintf(w, "%s\t%d imported\n", table, counts[table])
			}
			return w.Flush()
		})
	},
}

func init() {
	cleanupCmd.Flags().IntVarP(&cleanupDays, "days", "d", 0, "Days of data to keep (defaults to trader.retention_days)")
	exportCmd.Flags().StringVarP(&exportFile, "output", "o", "", "Output file (defaults to stdout)")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
