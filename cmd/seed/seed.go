// Package seed inserts the default categories.
package seed

import (
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/cashflow/cmd/root"
)

// Cmd represents the seed command
var Cmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the default categories",
	Long:  `Insert the default category set. Categories that already exist are left alone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.NewContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		n, err := c.GetLedger().SeedCategories(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d categories\n", n)
		return nil
	},
}
