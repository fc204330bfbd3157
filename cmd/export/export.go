// Package export writes ledger records to a CSV file.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"fjacquet/cashflow/cmd/root"
	"fjacquet/cashflow/internal/dateutils"
	"fjacquet/cashflow/internal/fileutils"
	"fjacquet/cashflow/internal/ledger"
	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/store"
)

var (
	output     string
	year       int
	month      int
	sourceType string
)

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export transactions to CSV",
	Long: `Write stored transactions to a CSV file, newest first, using the configured
import delimiter.

Example:
  cashflow export -o march.csv --year 2025 --month 3`,
	RunE: exportFunc,
}

func init() {
	Cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	Cmd.Flags().IntVar(&year, "year", 0, "Only records of this reference year")
	Cmd.Flags().IntVar(&month, "month", 0, "Only records of this reference month")
	Cmd.Flags().StringVar(&sourceType, "source", "", "Only records of this source type")
}

// Row is one exported record.
type Row struct {
	Date          string `csv:"Date"`
	ReferenceDate string `csv:"ReferenceDate"`
	Description   string `csv:"Description"`
	Amount        string `csv:"Amount"`
	Type          string `csv:"Type"`
	Source        string `csv:"Source"`
	Category      string `csv:"Category"`
	Installment   string `csv:"Installment"`
	Verified      bool   `csv:"Verified"`
}

func toRow(tx models.Transaction) Row {
	row := Row{
		Date:          dateutils.ToISODate(tx.Date),
		ReferenceDate: dateutils.ToISODate(tx.ReferenceDate),
		Description:   tx.Description,
		Amount:        tx.Amount.StringFixed(2),
		Type:          string(tx.Type),
		Source:        tx.SourceType,
		Category:      tx.CategoryName(),
		Verified:      tx.IsVerified,
	}
	if tx.InstallmentCurrent != nil && tx.InstallmentTotal != nil {
		row.Installment = fmt.Sprintf("%d/%d", *tx.InstallmentCurrent, *tx.InstallmentTotal)
	}
	return row
}

func exportFunc(cmd *cobra.Command, args []string) error {
	c, err := root.NewContainer(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	out := cmd.OutOrStdout()
	if output != "" {
		f, err := fileutils.CreateFile(output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	delimiter := []rune(c.GetConfig().Import.Delimiter)[0]
	n, err := Run(cmd.Context(), c.GetLedger(), out, store.TransactionFilter{
		Year:       year,
		Month:      month,
		SourceType: sourceType,
	}, delimiter)
	if err != nil {
		return err
	}
	c.GetLogger().Info("Exported transactions", logging.F(logging.FieldCount, n))
	return nil
}

// Run pages through the records matching f and writes them as CSV. It
// returns the number of rows written.
func Run(ctx context.Context, svc *ledger.Service, out io.Writer, f store.TransactionFilter, delimiter rune) (int, error) {
	rows := []Row{}
	f.Limit = ledger.MaxListLimit
	for {
		page, err := svc.List(ctx, f)
		if err != nil {
			return 0, err
		}
		for _, tx := range page.Items {
			rows = append(rows, toRow(tx))
		}
		f.Skip += len(page.Items)
		if len(page.Items) == 0 || int64(f.Skip) >= page.Total {
			break
		}
	}

	w := csv.NewWriter(out)
	w.Comma = delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(w)); err != nil {
		return 0, fmt.Errorf("error writing CSV data: %w", err)
	}
	return len(rows), nil
}
