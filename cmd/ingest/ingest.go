// Package ingest imports statement files from the command line.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"fjacquet/cashflow/cmd/root"
	"fjacquet/cashflow/internal/fileutils"
	"fjacquet/cashflow/internal/importer"
)

var (
	inputs []string
	dir    string
	year   int
	month  int
)

// Cmd represents the ingest command
var Cmd = &cobra.Command{
	Use:   "ingest",
	Short: "Import bank and card CSV statements",
	Long: `Import one or more CSV statements into the ledger.

Every file is imported on its own: a bad file is reported and the others
still go through. --year and --month assign the whole batch to an accounting
month, which is how card invoices are usually booked.

Example:
  cashflow ingest -i extrato.csv -i fatura.csv --year 2025 --month 3
  cashflow ingest --dir statements/`,
	RunE: ingestFunc,
}

func init() {
	Cmd.Flags().StringSliceVarP(&inputs, "input", "i", nil, "Statement file to import (repeatable)")
	Cmd.Flags().StringVar(&dir, "dir", "", "Import every .csv file found under this directory")
	Cmd.Flags().IntVar(&year, "year", 0, "Reference year for the batch")
	Cmd.Flags().IntVar(&month, "month", 0, "Reference month for the batch (1-12)")
}

func ingestFunc(cmd *cobra.Command, args []string) error {
	files := append(append([]string{}, inputs...), args...)
	if dir != "" {
		found, err := fileutils.ListFilesWithExtension(dir, ".csv")
		if err != nil {
			return err
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return fmt.Errorf("at least one input file is required")
	}

	var y, m *int
	if cmd.Flags().Changed("year") {
		y = &year
	}
	if cmd.Flags().Changed("month") {
		m = &month
	}
	period, err := importer.NewPeriod(y, m)
	if err != nil {
		return err
	}

	c, err := root.NewContainer(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	return Run(cmd.Context(), c.GetImporter(), cmd.OutOrStdout(), files, period)
}

// Run imports files and prints one line per file. It fails when any file
// could not be imported.
func Run(ctx context.Context, svc *importer.Service, out io.Writer, files []string, period *importer.Period) error {
	uploads := make([]importer.Upload, 0, len(files))
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		uploads = append(uploads, importer.Upload{Filename: filepath.Base(path), Content: f})
	}

	report := svc.ImportFiles(ctx, uploads, period)
	failed := 0
	for _, res := range report.Results {
		if res.Status != importer.StatusSuccess {
			failed++
			fmt.Fprintf(out, "%s: error: %s\n", res.Filename, res.Message)
			continue
		}
		fmt.Fprintf(out, "%s: %d imported", res.Filename, res.Count)
		if n := len(res.ReconciliationCandidates); n > 0 {
			fmt.Fprintf(out, ", %d possible matches with manual entries", n)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "Imported %d transactions from %d file(s)\n", report.TotalImported, len(report.Results)-failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed to import", failed, len(report.Results))
	}
	return nil
}
