package cmd

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bank-statement-consolidator/cmd/statements/config"
	"bank-statement-consolidator/internal/reporter"
	"bank-statement-consolidator/internal/serializer"
	"bank-statement-consolidator/internal/session"
	"bank-statement-consolidator/pkg/logger"
)

// consolidateCmd represents the consolidate command
var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Consolidate the treated files of a workspace into one workbook",
	Long: `Consolidate stacks every file treated by the last treat run, adds the
Bank column and writes a single-sheet workbook.

The bank code comes from the first mapping entry whose substring occurs in
the treated filename; when none matches, the filename up to its first space
or underscore is used and the report flags the file.

Examples:
  statements consolidate
  statements consolidate --workspace /tmp/jan --output jan/Consolidado_Bancos.xlsx
  statements consolidate --bank-map banks.yaml --report-format json`,
	Args:    cobra.NoArgs,
	PreRunE: bindWorkspaceFlags,
	RunE:    runConsolidate,
}

func init() {
	rootCmd.AddCommand(consolidateCmd)

	consolidateCmd.Flags().StringP(config.KeyWorkspace, "w", config.DefaultWorkspace, "directory holding the treated files")
	consolidateCmd.Flags().StringP(config.KeyOutput, "o", serializer.ConsolidatedFileName, "consolidated workbook path")
}

func runConsolidate(cmd *cobra.Command, args []string) error {
	workspace := viper.GetString(config.KeyWorkspace)
	output := viper.GetString(config.KeyOutput)

	s, err := session.NewStore(workspace).Load()
	if err != nil {
		return err
	}

	logger.WithComponent("cli").WithFields(logger.Fields{
		"session": s.ID(),
		"files":   s.Len(),
	}).Info("Consolidating workspace")

	return consolidateAndReport(cmd, s, output)
}

// consolidateAndReport writes the consolidated workbook and its report. With
// no treated files nothing is written and the report says so.
func consolidateAndReport(cmd *cobra.Command, s *session.Session, output string) error {
	result, err := consolidateToFile(s, output)
	if err != nil {
		return err
	}

	written := output
	if result == nil {
		written = ""
	}

	return writeReport(cmd, func(rg *reporter.SafeReportGenerator, w io.Writer) error {
		return rg.ConsolidationReport(result, written, w)
	})
}
