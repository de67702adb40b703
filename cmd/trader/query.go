package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"golang-stock-autotrader/internal/entity"
	"golang-stock-autotrader/internal/repository"
	"golang-stock-autotrader/pkg/utils"
)

var (
	historyLimit int
	statsDays    int
	logsLimit    int
	logsLevel    string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show settings, the last account snapshot and the cached price",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			ctx := cmd.Context()
			code := a.cfg.Trader.StockCode

			setting, err := a.query.TradingSettings(ctx, code)
			if err != nil {
				return err
			}
			w := newTable()
			fmt.Fprintf(w, "Stock\t%s\n", code)
			fmt.Fprintf(w, "Active\t%t\n", setting.IsActive)
			fmt.Fprintf(w, "MA periods\t%d / %d\n", setting.MAShortPeriod, setting.MALongPeriod)

			if price, at, err := a.cache.GetLastPrice(ctx, code); err == nil {
				fmt.Fprintf(w, "Last price\t%d (%s)\n", price, utils.PrettyDate(at))
			}

			status, err := a.query.LatestAccountStatus(ctx, code)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				fmt.Fprintln(w, "Account\tno snapshot yet")
			case err != nil:
				return err
			default:
				fmt.Fprintf(w, "Holding\t%d\n", status.HoldingQuantity)
				fmt.Fprintf(w, "Evaluation\t%d\n", status.TotalEvaluation)
				fmt.Fprintf(w, "Snapshot at\t%s\n", utils.PrettyDate(status.CreatedAt))
			}
			return w.Flush()
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent moving averages and orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			return printHistory(cmd.Context(), a, historyLimit)
		})
	},
}

func printHistory(ctx context.Context, a *app, limit int) error {
	code := a.cfg.Trader.StockCode
	averages, err := a.query.MovingAverages(ctx, code, limit)
	if err != nil {
		return err
	}
	orders, err := a.query.Orders(ctx, code, limit)
	if err != nil {
		return err
	}

	w := newTable()
	fmt.Fprintln(w, "TIME\tPRICE\tMA SHORT\tMA LONG")
	for _, ma := range averages {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", utils.PrettyDate(ma.CreatedAt), ma.Price, nullString(ma.MAShort.Valid, ma.MAShort.Decimal.StringFixed(2)), nullString(ma.MALong.Valid, ma.MALong.Decimal.StringFixed(2)))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "TIME\tSIDE\tQTY\tPRICE\tSTATUS\tERROR")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n", utils.PrettyDate(o.CreatedAt), o.OrderType, o.Quantity, o.Price, o.Status, o.ErrorMessage)
	}
	return w.Flush()
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show order statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			stats, err := a.query.Statistics(cmd.Context(), a.cfg.Trader.StockCode, statsDays)
			if err != nil {
				return err
			}
			w := newTable()
			fmt.Fprintf(w, "Period\t%d days\n", statsDays)
			fmt.Fprintf(w, "Orders\t%d\n", stats.TotalOrders)
			fmt.Fprintf(w, "Successful\t%d (%.1f%%)\n", stats.SuccessfulOrders, stats.SuccessRate())
			fmt.Fprintf(w, "Buy / Sell\t%d / %d\n", stats.BuyCount, stats.SellCount)
			fmt.Fprintf(w, "Amount\t%d KRW\n", stats.TotalAmount)
			return w.Flush()
		})
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent trading logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		level := entity.LogLevel(strings.ToUpper(logsLevel))
		switch level {
		case "", entity.LogLevelInfo, entity.LogLevelWarning, entity.LogLevelError:
		default:
			return fmt.Errorf("invalid log level %q", logsLevel)
		}
		return withApp(func(a *app) error {
			logs, err := a.query.Logs(cmd.Context(), level, logsLimit)
			if err != nil {
				return err
			}
			w := newTable()
			for _, l := range logs {
				fmt.Fprintf(w, "%s\t%s\t%s\n", utils.PrettyDate(l.CreatedAt), l.LogLevel, l.Message)
			}
			return w.Flush()
		})
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of rows to show")
	statsCmd.Flags().IntVarP(&statsDays, "days", "d", 7, "Number of days to aggregate")
	logsCmd.Flags().IntVarP(&logsLimit, "limit", "n", 50, "Number of rows to show")
	logsCmd.Flags().StringVarP(&logsLevel, "level", "l", "", "Filter by level (INFO, WARNING, ERROR)")
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

func nullString(valid bool, s string) string {
	if !valid {
		return "-"
	}
	return s
}
