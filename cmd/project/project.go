// Package project prints the forward cash-flow projection.
package project

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fjacquet/cashflow/cmd/root"
	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/projection"
)

var (
	months   int
	scenario uint
	format   string
)

// Cmd represents the project command
var Cmd = &cobra.Command{
	Use:   "project",
	Short: "Project the coming months",
	Long: `Print the month-by-month projection built from active recurring templates,
open installment plans and, optionally, one scenario.

Example:
  cashflow project --months 6 --scenario 2`,
	RunE: projectFunc,
}

func init() {
	Cmd.Flags().IntVar(&months, "months", projection.DefaultMonths, "Number of months to project (1-60)")
	Cmd.Flags().UintVar(&scenario, "scenario", 0, "Scenario id to overlay")
	Cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or json")
}

func projectFunc(cmd *cobra.Command, args []string) error {
	if months < projection.MinMonths || months > projection.MaxMonths {
		return fmt.Errorf("--months must be between %d and %d", projection.MinMonths, projection.MaxMonths)
	}
	var scenarioID *uint
	if scenario > 0 {
		scenarioID = &scenario
	}

	c, err := root.NewContainer(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	return Run(cmd.Context(), c.GetProjection(), cmd.OutOrStdout(), months, scenarioID, format)
}

// Run computes the projection and writes it in the given format.
func Run(ctx context.Context, engine *projection.Engine, out io.Writer, months int, scenarioID *uint, format string) error {
	p, err := engine.Project(ctx, months, scenarioID)
	if err != nil {
		return err
	}
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case "table", "":
		return writeTable(out, p)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeTable(out io.Writer, p *models.Projection) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "Item\tSource\t%s\t\n", strings.Join(p.Months, "\t"))
	for _, item := range p.Items {
		cells := make([]string, len(item.Values))
		for i, v := range item.Values {
			cells[i] = v.StringFixed(2)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t\n", item.Name, item.Source, strings.Join(cells, "\t"))
	}
	totals := p.Totals()
	cells := make([]string, len(totals))
	for i, v := range totals {
		cells[i] = v.StringFixed(2)
	}
	fmt.Fprintf(w, "Total\t\t%s\t\n", strings.Join(cells, "\t"))
	return w.Flush()
}
