// Package materialize turns recurring templates into ledger records.
package materialize

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"fjacquet/cashflow/cmd/root"
	"fjacquet/cashflow/internal/ledger"
)

var (
	year  int
	month int
)

// Cmd represents the materialize command
var Cmd = &cobra.Command{
	Use:   "materialize",
	Short: "Generate this month's recurring transactions",
	Long: `Create one ledger record per active recurring template for a month.
Running it twice for the same month creates nothing new.

Without flags the current month is used.`,
	RunE: materializeFunc,
}

func init() {
	Cmd.Flags().IntVar(&year, "year", 0, "Year to materialize (default: current)")
	Cmd.Flags().IntVar(&month, "month", 0, "Month to materialize, 1-12 (default: current)")
}

func materializeFunc(cmd *cobra.Command, args []string) error {
	now := time.Now()
	y, m := year, month
	if y == 0 {
		y = now.Year()
	}
	if m == 0 {
		m = int(now.Month())
	}

	c, err := root.NewContainer(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	return Run(cmd.Context(), c.GetLedger(), cmd.OutOrStdout(), y, m)
}

// Run materializes one month and reports the number of created records.
func Run(ctx context.Context, svc *ledger.Service, out io.Writer, year, month int) error {
	n, err := svc.Materialize(ctx, year, month)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Generated %d transactions for %d/%d\n", n, month, year)
	return nil
}
