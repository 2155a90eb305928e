package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/plugdep/plugdep/pkg/checker"
	"github.com/plugdep/plugdep/pkg/presenter"
	"github.com/plugdep/plugdep/pkg/resolution"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [file]",
	Short: "Turn a dependency report into resolution steps",
	Long: `Read a dependency check report (JSON) and print the ordered steps
that resolve its failures. Reads from stdin when no file is given.

Example:
  plugdep check --format json | plugdep resolve
  plugdep resolve report.json`,
	Args: cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		report, err := readReport(args)
		if err != nil {
			presenter.Error(err, "Failed to read report")
			os.Exit(1)
		}

		steps := resolution.Steps(report)
		fmt.Println(resolution.Format(steps))
		if resolution.HasRequired(steps) {
			os.Exit(1)
		}
	},
}

// readReport decodes a checker report from the file named in args, or
// from stdin when args is empty.
func readReport(args []string) (*checker.Report, error) {
	var content []byte
	var err error
	if len(args) > 0 {
		content, err = os.ReadFile(args[0])
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", args[0])
		}
	} else {
		content, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read stdin")
		}
	}

	var report checker.Report
	if err := json.Unmarshal(content, &report); err != nil {
		return nil, errors.Wrap(err, "failed to parse report JSON")
	}
	return &report, nil
}
