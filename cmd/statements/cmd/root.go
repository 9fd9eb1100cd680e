package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bank-statement-consolidator/cmd/statements/config"
	"bank-statement-consolidator/pkg/errors"
	"bank-statement-consolidator/pkg/logger"
)

var (
	cfgFile string
	verbose bool
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "statements",
	Short: "Bank statement spreadsheet consolidation tool",
	Long: `Statements treats raw bank-export spreadsheets and consolidates them into
a single workbook tagged with each file's bank code.

Treatment reads each export below its title block, merges the rows the bank
split across lines and keeps the nine canonical columns. Consolidation stacks
the treated files and adds a Bank column.

Examples:
  statements treat "Extrato 422-6.xlsx" "Extrato 558-4.xlsx" --workspace .statements
  statements consolidate --workspace .statements --output Consolidado_Bancos.xlsx
  statements run exports/*.xlsx --output Consolidado_Bancos.xlsx --report-format json
  statements version`,
	Version:           getVersionString(),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupEnvironment,
}

// Execute runs the root command and returns the process exit code.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return NewCLIErrorHandler().HandleError(err)
	}
	return 0
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (optional)")
	flags.BoolVarP(&verbose, config.KeyVerbose, "v", false, "verbose output")
	flags.String(config.KeyLogLevel, "warn", "log level: debug, info, warn, error")
	flags.String(config.KeyLogFormat, "text", "log format: text, json")
	flags.String(config.KeyBankMap, "", "YAML file mapping filename substrings to bank codes")
	flags.StringP(config.KeyReportFormat, "f", "console", "report format: console, json, csv")
	flags.String(config.KeyReportFile, "", "report file path (default: stdout)")

	bindGlobalFlags()
}

// bindGlobalFlags binds the persistent flags to viper keys
func bindGlobalFlags() {
	flags := rootCmd.PersistentFlags()
	for _, key := range []string{
		config.KeyVerbose,
		config.KeyLogLevel,
		config.KeyLogFormat,
		config.KeyBankMap,
		config.KeyReportFormat,
		config.KeyReportFile,
	} {
		viper.BindPFlag(key, flags.Lookup(key))
	}
}

// initConfig reads ENV variables that match the configuration keys.
func initConfig() {
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// setupEnvironment reads the config file and installs the global logger
// before any command runs.
func setupEnvironment(cmd *cobra.Command, args []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)

		if err := viper.ReadInConfig(); err != nil {
			return errors.ConfigurationError(errors.CodeInvalidConfig, "config", cfgFile, err).
				WithSuggestion("check that the config file exists and is valid YAML, JSON or TOML")
		}
	}

	logConfig, err := config.CreateLoggerConfig(viper.GetViper())
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(logConfig)
	if err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "logging", logConfig.Level, err)
	}
	logger.SetGlobalLogger(log)

	if cfgFile != "" {
		log.WithComponent("cli").WithField("config", viper.ConfigFileUsed()).Info("Using config file")
	}

	return nil
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	return version
}
