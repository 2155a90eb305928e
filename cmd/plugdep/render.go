package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/plugdep/plugdep/pkg/presenter"
	"github.com/plugdep/plugdep/pkg/render"
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render a dependency report as tables",
	Long: `Read a dependency check report (JSON) and print it as plugin and
system dependency tables. Reads from stdin when no file is given.

Example:
  plugdep check --format json | plugdep render
  plugdep render report.json`,
	Args: cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		report, err := readReport(args)
		if err != nil {
			presenter.Error(err, "Failed to read report")
			os.Exit(1)
		}
		fmt.Println(render.Report(report))
	},
}
