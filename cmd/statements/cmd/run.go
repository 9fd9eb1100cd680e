package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bank-statement-consolidator/cmd/statements/config"
	"bank-statement-consolidator/internal/reporter"
	"bank-statement-consolidator/internal/serializer"
	"bank-statement-consolidator/internal/session"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <files or directories...>",
	Short: "Treat and consolidate in one step",
	Long: `Run treats the given exports and consolidates the treated files into a
single workbook without going through a workspace. Pass --workspace to keep
the treated files as well.

Examples:
  statements run exports/ --output Consolidado_Bancos.xlsx
  statements run a.xlsx b.xlsx --workspace .statements --progress`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: bindWorkspaceFlags,
	RunE:    runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP(config.KeyWorkspace, "w", "", "also save the treated files to this directory")
	runCmd.Flags().StringP(config.KeyOutput, "o", serializer.ConsolidatedFileName, "consolidated workbook path")
	runCmd.Flags().Bool(config.KeyProgress, false, "show progress indicators")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	paths, err := expandInputs(args)
	if err != nil {
		return err
	}

	s, batch, err := treatFiles(cmd.Context(), paths, viper.GetBool(config.KeyProgress), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if workspace := viper.GetString(config.KeyWorkspace); workspace != "" {
		if err := session.NewStore(workspace).Save(s); err != nil {
			return err
		}
	}

	output := viper.GetString(config.KeyOutput)
	result, err := consolidateToFile(s, output)
	if err != nil {
		return err
	}
	if result == nil {
		output = ""
	}

	// Both reports go to one destination
	err = writeReport(cmd, func(rg *reporter.SafeReportGenerator, w io.Writer) error {
		if err := rg.TreatmentReport(batch, w); err != nil {
			return err
		}
		fmt.Fprintln(w)
		return rg.ConsolidationReport(result, output, w)
	})
	if err != nil {
		return err
	}

	if batch.Treated == 0 {
		return noFilesTreated(batch)
	}
	return nil
}
