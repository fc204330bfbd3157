package main

import (
	"fmt"
	"os"

	"fjacquet/cashflow/cmd/categorize"
	"fjacquet/cashflow/cmd/export"
	"fjacquet/cashflow/cmd/ingest"
	"fjacquet/cashflow/cmd/materialize"
	"fjacquet/cashflow/cmd/project"
	"fjacquet/cashflow/cmd/root"
	"fjacquet/cashflow/cmd/seed"
	"fjacquet/cashflow/cmd/serve"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(ingest.Cmd)
	root.Cmd.AddCommand(project.Cmd)
	root.Cmd.AddCommand(materialize.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
	root.Cmd.AddCommand(export.Cmd)
	root.Cmd.AddCommand(seed.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
