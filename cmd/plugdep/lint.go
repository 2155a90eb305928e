package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/plugdep/plugdep/pkg/lint"
	"github.com/plugdep/plugdep/pkg/presenter"
)

var lintCmd = &cobra.Command{
	Use:   "lint <dir>...",
	Short: "Lint plugin content",
	Long: `Lint plugin or marketplace directories: every skill needs a SKILL.md
with name and description frontmatter matching its directory, relative
file references in docs must resolve, and dependency manifests must be
valid.

Example:
  plugdep lint ./plugins/utils
  plugdep lint ./my-marketplace`,
	Args: cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		linter := lint.New()

		failed := false
		for _, dir := range args {
			findings, err := linter.LintPath(dir)
			if err != nil {
				presenter.Error(err, fmt.Sprintf("Failed to lint %s", dir))
				failed = true
				continue
			}

			for _, finding := range findings {
				presenter.Warning(fmt.Sprintf("%s: %s", dir, finding))
			}
			if len(findings) > 0 {
				failed = true
			} else {
				presenter.Success(fmt.Sprintf("%s: no problems found", dir))
			}
		}

		if failed {
			os.Exit(1)
		}
	},
}
