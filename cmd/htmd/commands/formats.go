package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/htmd/internal/config"
	"github.com/jmylchreest/htmd/internal/version"
	"github.com/jmylchreest/htmd/pkg/convert"
	"github.com/jmylchreest/htmd/pkg/style"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported input formats and Markdown flavors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		formats := convert.Formats()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"formats": formats,
				"flavors": style.Flavors(),
			})
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "FORMAT\tEXTENSIONS\tDESCRIPTION")
		for _, f := range formats {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Format, strings.Join(f.Extensions, " "), f.Description)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), "Flavors:")
		for _, f := range style.Flavors() {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-11s tables=%t strikethrough=%t raw_html=%t\n", f, f.Tables(), f.Strikethrough(), f.RawHTML())
		}
		return nil
	},
}

var configExampleCmd = &cobra.Command{
	Use:   "config-example",
	Short: "Print an example configuration file with the defaults",
	Long: `Print a commented TOML configuration holding every default. Save it as
~/.htmd.toml or ./.htmd.toml and edit what you need.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := config.Example()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(text)
		return err
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(version.Get())
		}
		fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd, configExampleCmd, versionCmd)
	formatsCmd.Flags().Bool("json", false, "print as JSON")
	versionCmd.Flags().Bool("json", false, "print as JSON")
	rootCmd.Version = version.String()
}
