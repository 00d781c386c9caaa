package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/yosssi/gohtml"

	"github.com/jmylchreest/htmd/pkg/convert"
	"github.com/jmylchreest/htmd/pkg/dom"
)

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize <file|->",
	Short: "Print the sanitized HTML without converting it",
	Long: `Run the parse and sanitize stages only and print the filtered HTML.
Useful for checking what the allow-list keeps before tuning it.

Examples:
  htmd sanitize page.html
  htmd sanitize page.html --remove nav --remove footer --pretty=false
  htmd sanitize page.html --stats`,
	Args: cobra.ExactArgs(1),
	RunE: runSanitize,
}

func init() {
	rootCmd.AddCommand(sanitizeCmd)

	flags := sanitizeCmd.Flags()
	flags.Bool("pretty", true, "indent the output HTML")
	flags.Bool("stats", false, "print sanitization statistics to stderr")
	addConversionFlags(sanitizeCmd)
}

func runSanitize(cmd *cobra.Command, args []string) error {
	conv, err := newConverter()
	if err != nil {
		return err
	}

	var raw []byte
	src := args[0]
	if src == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
		src = ""
	} else {
		if err := convert.CheckPath(src); err != nil {
			return err
		}
		raw, err = os.ReadFile(src)
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	doc, stats, err := conv.Sanitize(raw, src)
	if err != nil {
		return err
	}

	out, err := dom.RenderString(doc)
	if err != nil {
		return err
	}
	if pretty, _ := cmd.Flags().GetBool("pretty"); pretty {
		out = gohtml.Format(out)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)

	if show, _ := cmd.Flags().GetBool("stats"); show {
		fmt.Fprint(cmd.ErrOrStderr(), stats.String())
	}
	return nil
}
