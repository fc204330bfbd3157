// Package categorize handles transaction categorization commands
package categorize

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"fjacquet/cashflow/cmd/root"
	"fjacquet/cashflow/internal/categorizer"
	"fjacquet/cashflow/internal/ledger"
	"fjacquet/cashflow/internal/models"
)

var (
	description string
	amount      string
	limit       int
	year        int
	month       int
	force       bool
)

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize",
	Short: "Categorize transactions",
	Long: `Categorize transactions using verified history, keyword rules and, when
configured, the Gemini model.

With --description a single description is categorized and printed. Without
it, stored records that are not verified are categorized in place.`,
	RunE: categorizeFunc,
}

func init() {
	Cmd.Flags().StringVarP(&description, "description", "d", "", "Description to categorize")
	Cmd.Flags().StringVarP(&amount, "amount", "a", "0", "Signed amount of the description")
	Cmd.Flags().IntVarP(&limit, "limit", "l", ledger.DefaultCategorizeLimit, "Maximum number of stored records to process")
	Cmd.Flags().IntVar(&year, "year", 0, "Only records of this reference year")
	Cmd.Flags().IntVar(&month, "month", 0, "Only records of this reference month")
	Cmd.Flags().BoolVar(&force, "force", false, "Recategorize records that already have a category")
}

func categorizeFunc(cmd *cobra.Command, args []string) error {
	c, err := root.NewContainer(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	out := cmd.OutOrStdout()
	if description != "" {
		value, err := decimal.NewFromString(amount)
		if err != nil {
			return fmt.Errorf("invalid --amount %q: %w", amount, err)
		}
		history, err := c.GetStore().HistoryForCategorization(cmd.Context(), c.GetConfig().Categorization.HistoryLimit)
		if err != nil {
			return err
		}
		return Predict(cmd.Context(), c.GetCategorizer(), out, description, value, history)
	}
	return Run(cmd.Context(), c.GetLedger(), out, ledger.AutoCategorizeRequest{
		Limit: limit,
		Month: month,
		Year:  year,
		Force: force,
	})
}

// Predict prints the category predicted for a single description.
func Predict(ctx context.Context, p categorizer.Predictor, out io.Writer, description string, amount decimal.Decimal, history []models.HistoryEntry) error {
	category := p.Predict(ctx, description, amount, history)
	fmt.Fprintf(out, "Category: %s\n", category)
	return nil
}

// Run categorizes stored records and prints a summary.
func Run(ctx context.Context, svc *ledger.Service, out io.Writer, req ledger.AutoCategorizeRequest) error {
	res, err := svc.AutoCategorize(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Processed %d transactions, categorized %d\n", res.Processed, res.Categorized)
	return nil
}
