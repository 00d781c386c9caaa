package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/htmd/internal/logger"
	"github.com/jmylchreest/htmd/internal/output"
	"github.com/jmylchreest/htmd/pkg/convert"
	"github.com/jmylchreest/htmd/pkg/inspect"
)

var convertCmd = &cobra.Command{
	Use:   "convert <file|->",
	Short: "Convert one HTML document to Markdown",
	Long: `Convert a single HTML or XHTML document. Use "-" to read stdin.

The Markdown is written to stdout unless --output is given.

Examples:
  htmd convert page.html
  htmd convert page.xhtml -o page.md --flavor commonmark
  cat page.html | htmd convert - --line-length 100 --stats`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	flags := convertCmd.Flags()
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.Bool("front-matter", false, "prefix the output with YAML front matter")
	flags.Bool("overwrite", true, "replace an existing output file")
	flags.Bool("backup", false, "keep the previous output file as <name>.bak")
	flags.Bool("stats", false, "print conversion statistics to stderr")
	flags.Bool("json-stats", false, "print statistics as JSON to stderr")
	addConversionFlags(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	conv, err := newConverter()
	if err != nil {
		return err
	}

	var res *convert.Result
	if src := args[0]; src == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		res, err = conv.Convert(raw, "")
		if err != nil {
			return err
		}
	} else {
		res, err = conv.ConvertFile(ctx, src)
		if err != nil {
			return err
		}
	}

	text := res.Markdown
	if cfg.Output.FrontMatter {
		text, err = output.WithFrontMatter(text, output.FrontMatter{
			Title:  res.Title,
			Source: res.Source,
			Flavor: cfg.Conversion.Flavor,
		})
		if err != nil {
			return err
		}
	}
	if text != "" {
		text += "\n"
	}

	dest, _ := cmd.Flags().GetString("output")
	if dest == "" {
		if _, err := io.WriteString(cmd.OutOrStdout(), text); err != nil {
			return err
		}
	} else {
		action, err := output.WriteFile(dest, []byte(text), output.FilePolicy{
			Overwrite: cfg.Output.OverwriteExisting,
			Backup:    cfg.Output.CreateBackup,
		})
		if err != nil {
			return err
		}
		if action == output.ActionSkipped {
			logger.Warn("output exists, not overwritten", "path", dest)
		} else {
			logger.Info("wrote markdown", "path", dest, "action", action, "size", humanize.Bytes(uint64(len(text))))
		}
	}

	return printStats(cmd, res)
}

type statsReport struct {
	Source    string           `json:"source,omitempty"`
	Title     string           `json:"title,omitempty"`
	Format    convert.Format   `json:"format"`
	Stats     *convert.Stats   `json:"stats"`
	Structure *inspect.Summary `json:"structure"`
}

func printStats(cmd *cobra.Command, res *convert.Result) error {
	asJSON, _ := cmd.Flags().GetBool("json-stats")
	plain, _ := cmd.Flags().GetBool("stats")
	if !asJSON && !plain {
		return nil
	}

	sum := inspect.Summarize([]byte(res.Markdown))
	w := cmd.ErrOrStderr()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(statsReport{Source: res.Source, Title: res.Title, Format: res.Format, Stats: res.Stats, Structure: sum})
	}

	if res.Title != "" {
		fmt.Fprintf(w, "Title: %s\n", res.Title)
	}
	fmt.Fprint(w, res.Stats.String())
	fmt.Fprintf(w, "Markdown: %d headings, %d links (%d external), %d images, %d code blocks, %d tables, %d words\n",
		len(sum.Headings), len(sum.Links), len(sum.ExternalLinks()), len(sum.Images), len(sum.CodeBlocks), sum.Tables, sum.Words)
	return nil
}

// exitWith reports a failed document count as an error.
func exitWith(failed int) error {
	if failed > 0 {
		return fmt.Errorf("%d document(s) failed", failed)
	}
	return nil
}
