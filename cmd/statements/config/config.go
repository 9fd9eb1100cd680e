package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"bank-statement-consolidator/internal/reporter"
	"bank-statement-consolidator/internal/tagger"
	"bank-statement-consolidator/pkg/errors"
	"bank-statement-consolidator/pkg/logger"
)

// Configuration keys shared by flags, environment variables and config files
const (
	KeyVerbose      = "verbose"
	KeyLogLevel     = "log-level"
	KeyLogFormat    = "log-format"
	KeyBankMap      = "bank-map"
	KeyBanks        = "banks"
	KeyReportFormat = "report-format"
	KeyReportFile   = "report-file"
	KeyWorkspace    = "workspace"
	KeyOutput       = "output"
	KeyProgress     = "progress"
)

// EnvPrefix is prepended to every environment variable, e.g. STATEMENTS_BANK_MAP
const EnvPrefix = "STATEMENTS"

// DefaultWorkspace holds the treated files between the treat and consolidate commands
const DefaultWorkspace = ".statements"

// CreateLoggerConfig builds the logger configuration. --verbose raises the
// level to info unless a more verbose level was asked for.
func CreateLoggerConfig(v *viper.Viper) (*logger.Config, error) {
	config := logger.DefaultConfig()

	if level := strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))); level != "" {
		config.Level = logger.Level(level)
	}
	if format := strings.ToLower(strings.TrimSpace(v.GetString(KeyLogFormat))); format != "" {
		config.Format = logger.Format(format)
	}

	if v.GetBool(KeyVerbose) && config.Level != logger.DebugLevel {
		config.Level = logger.InfoLevel
	}

	if err := config.Validate(); err != nil {
		value := fmt.Sprintf("level=%s format=%s", config.Level, config.Format)
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "logging", value, err).
			WithSuggestion("log levels: debug, info, warn, error; log formats: text, json")
	}

	return config, nil
}

// CreateBankMapping resolves the bank code mapping. A --bank-map file wins
// over a `banks` list in the config file, which wins over the built-in table.
func CreateBankMapping(v *viper.Viper) (*tagger.Mapping, error) {
	if path := strings.TrimSpace(v.GetString(KeyBankMap)); path != "" {
		return tagger.LoadMappingFile(path)
	}

	if v.IsSet(KeyBanks) {
		var rules []tagger.Rule
		if err := v.UnmarshalKey(KeyBanks, &rules); err != nil {
			return nil, errors.ConfigurationError(errors.CodeInvalidConfig, KeyBanks, v.Get(KeyBanks), err).
				WithSuggestion("banks must be a list of {match, code} entries")
		}

		mapping, err := tagger.NewMapping(rules)
		if err != nil {
			return nil, errors.ConfigurationError(errors.CodeInvalidConfig, KeyBanks, len(rules), err).
				WithContext("config_file", v.ConfigFileUsed())
		}
		return mapping, nil
	}

	return tagger.DefaultMapping(), nil
}

// CreateReportConfig creates a report configuration for the specified output format
func CreateReportConfig(format string, verbose bool) (*reporter.ReportConfig, error) {
	config := reporter.DefaultReportConfig()

	switch reporter.OutputFormat(strings.ToLower(format)) {
	case reporter.FormatConsole, "":
		config.Format = reporter.FormatConsole
		config.IncludeStats = verbose
		if verbose {
			config.MaxItems = 0
		}
	case reporter.FormatJSON:
		config.Format = reporter.FormatJSON
	case reporter.FormatCSV:
		config.Format = reporter.FormatCSV
		config.CSVHeaders = true
		config.CSVDelimiter = ','
	default:
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, KeyReportFormat, format, nil).
			WithSuggestion("use one of: console, json, csv")
	}

	return config, nil
}
