// Package commands implements the CLI commands for htmd.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/htmd/internal/config"
	"github.com/jmylchreest/htmd/internal/logger"
	"github.com/jmylchreest/htmd/pkg/convert"
)

var rootCmd = &cobra.Command{
	Use:   "htmd",
	Short: "Convert HTML documents into sanitized, normalized Markdown",
	Long: `htmd converts HTML and XHTML files into Markdown.

Input is parsed, filtered through an allow-list of tags, attributes and
URL schemes, rendered as Markdown in the configured flavor and finally
normalized (whitespace cleanup and line wrapping outside code blocks).

Examples:
  # Convert one file to stdout
  htmd convert page.html

  # Read stdin, write a file, no wrapping
  curl -s https://example.com | htmd convert - -o example.md --line-length 0

  # Convert a directory tree with 8 workers and a JSON report
  htmd convert-dir site/ -o md/ --recursive --workers 8 --report report.json`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		bindFlags(cmd)
		return loadConfig()
	},
}

// cfg is the loaded configuration, set before any command runs.
var cfg *config.Config

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file, TOML or YAML (default $HOME/.htmd.toml or ./.htmd.toml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "only log errors")
	flags.String("log-format", "", "log format: text, json, pretty")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("quiet", flags.Lookup("quiet"))
	_ = viper.BindPFlag("logging.format", flags.Lookup("log-format"))
}

func loadConfig() error {
	loaded, err := config.Load(viper.GetViper(), viper.GetString("config"))
	if err != nil {
		return err
	}
	cfg = loaded

	logger.Init(logger.Options{
		Level:  cfg.Logging.Level,
		Debug:  viper.GetBool("debug"),
		Quiet:  viper.GetBool("quiet"),
		JSON:   cfg.Logging.Format == "json",
		Pretty: cfg.Logging.Format == "pretty",
	})
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug("config loaded", "path", used)
	}
	return nil
}

// newConverter builds the pipeline from the loaded configuration.
func newConverter() (*convert.Converter, error) {
	cc, err := cfg.ConvertConfig()
	if err != nil {
		return nil, err
	}
	return convert.New(cc)
}

// flagKeys maps command flags to the config keys they override.
var flagKeys = map[string]string{
	"flavor":               "conversion.flavor",
	"heading-style":        "conversion.heading_style",
	"emphasis":             "conversion.emphasis_style",
	"bullet":               "conversion.bullet_style",
	"line-length":          "conversion.line_length",
	"preserve-html":        "conversion.preserve_html",
	"strip-comments":       "conversion.strip_comments",
	"clean-whitespace":     "conversion.clean_whitespace",
	"detect-language":      "conversion.detect_language",
	"engine":               "conversion.engine",
	"remove":               "conversion.remove_selectors",
	"max-size":             "security.max_file_size",
	"sanitize":             "security.sanitize_html",
	"allow-external-links": "security.allow_external_links",
	"workers":              "performance.max_workers",
	"output-dir":           "output.directory",
	"overwrite":            "output.overwrite_existing",
	"backup":               "output.create_backup",
	"front-matter":         "output.front_matter",
}

// bindFlags binds the flags of the command being run. Binding happens per
// run because several commands share flag names.
func bindFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			_ = viper.BindPFlag(key, f)
		}
	})
}

// addConversionFlags registers the style and security overrides.
func addConversionFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("flavor", "", "markdown flavor: github, commonmark, strict")
	flags.String("heading-style", "", "heading style: atx, setext")
	flags.String("emphasis", "", "emphasis style: asterisk, underscore")
	flags.String("bullet", "", "bullet marker: -, *, +")
	flags.Int("line-length", 0, "wrap width, 0 disables wrapping")
	flags.Bool("preserve-html", false, "pass unmapped elements through as HTML")
	flags.Bool("strip-comments", true, "drop HTML comments")
	flags.Bool("clean-whitespace", true, "collapse blank lines and strip trailing spaces")
	flags.Bool("detect-language", false, "guess the language of unlabeled code blocks")
	flags.String("engine", "", "emitter: native, html-to-markdown")
	flags.StringSlice("remove", nil, "CSS selector of subtrees to remove before conversion (repeatable)")
	flags.String("max-size", "", "maximum input size, e.g. 10MB; 0 disables the limit")
	flags.Bool("sanitize", true, "filter the document through the allow-list")
	flags.Bool("allow-external-links", true, "keep http, https and ftp links")
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		logError("%v", err)
	}
	return err
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
