package cmd

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bank-statement-consolidator/cmd/statements/config"
	"bank-statement-consolidator/internal/reporter"
	"bank-statement-consolidator/internal/session"
	"bank-statement-consolidator/pkg/logger"
)

// treatCmd represents the treat command
var treatCmd = &cobra.Command{
	Use:   "treat <files or directories...>",
	Short: "Treat raw bank exports and save them to a workspace",
	Long: `Treat reads each bank export, merges continuation rows into their
transaction and keeps the canonical columns. Treated files are saved to the
workspace, replacing any earlier treatment, for the consolidate command.

A file that cannot be treated does not stop the others; the report lists
why it failed and the columns that were read from it.

Examples:
  statements treat "Extrato 422-6.xlsx" "Extrato 558-4.xlsx"
  statements treat exports/ --workspace /tmp/jan --progress
  statements treat exports/ --report-format csv --report-file treatment.csv`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: bindWorkspaceFlags,
	RunE:    runTreat,
}

func init() {
	rootCmd.AddCommand(treatCmd)

	treatCmd.Flags().StringP(config.KeyWorkspace, "w", config.DefaultWorkspace, "directory holding the treated files")
	treatCmd.Flags().Bool(config.KeyProgress, false, "show progress indicators")
}

// bindWorkspaceFlags binds this command's flags at run time since several
// commands share the same keys
func bindWorkspaceFlags(cmd *cobra.Command, args []string) error {
	for _, key := range []string{config.KeyWorkspace, config.KeyOutput, config.KeyProgress} {
		if flag := cmd.Flags().Lookup(key); flag != nil {
			if err := viper.BindPFlag(key, flag); err != nil {
				return err
			}
		}
	}
	return nil
}

func runTreat(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("cli")

	paths, err := expandInputs(args)
	if err != nil {
		return err
	}

	workspace := viper.GetString(config.KeyWorkspace)
	log.WithFields(logger.Fields{
		"files":     len(paths),
		"workspace": workspace,
	}).Info("Starting treatment")

	s, batch, err := treatFiles(cmd.Context(), paths, viper.GetBool(config.KeyProgress), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if err := session.NewStore(workspace).Save(s); err != nil {
		return err
	}

	err = writeReport(cmd, func(rg *reporter.SafeReportGenerator, w io.Writer) error {
		return rg.TreatmentReport(batch, w)
	})
	if err != nil {
		return err
	}

	if batch.Treated == 0 {
		return noFilesTreated(batch)
	}
	return nil
}
