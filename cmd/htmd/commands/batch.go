package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/htmd/internal/batch"
	"github.com/jmylchreest/htmd/internal/logger"
	"github.com/jmylchreest/htmd/internal/output"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>...",
	Short: "Convert a list of HTML files into an output directory",
	Long: `Convert several files concurrently. Each input becomes <name>.md in the
output directory. A failing document is reported and does not stop the
others; the command exits non-zero if any document failed.

Examples:
  htmd batch a.html b.htm -o md/
  htmd batch docs/*.html -o md/ --workers 8 --report report.jsonl`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, batch.FromFiles(args))
	},
}

var convertDirCmd = &cobra.Command{
	Use:   "convert-dir <dir>",
	Short: "Convert every HTML file in a directory",
	Long: `Convert the .html, .htm, .xhtml and .xht files of a directory. With
--recursive the directory tree is mirrored into the output directory.

Examples:
  htmd convert-dir site/ -o md/
  htmd convert-dir site/ -o md/ --recursive --pattern '^docs/' --report report.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runConvertDir,
}

func init() {
	rootCmd.AddCommand(batchCmd, convertDirCmd)

	for _, cmd := range []*cobra.Command{batchCmd, convertDirCmd} {
		flags := cmd.Flags()
		flags.StringP("output-dir", "o", "", "output directory (default from config: ./output)")
		flags.IntP("workers", "w", 0, "documents converted in parallel")
		flags.Bool("overwrite", true, "replace existing output files")
		flags.Bool("backup", false, "keep previous outputs as <name>.bak")
		flags.Bool("front-matter", false, "prefix outputs with YAML front matter")
		flags.String("report", "", "write per-document outcomes to this file (.json, .jsonl or .yaml)")
		addConversionFlags(cmd)
	}

	flags := convertDirCmd.Flags()
	flags.BoolP("recursive", "r", false, "descend into subdirectories")
	flags.String("pattern", "", "only convert files whose relative path matches this regular expression")
	flags.Bool("hidden", false, "include dot files and dot directories")
}

func runConvertDir(cmd *cobra.Command, args []string) error {
	recursive, _ := cmd.Flags().GetBool("recursive")
	pattern, _ := cmd.Flags().GetString("pattern")
	hidden, _ := cmd.Flags().GetBool("hidden")

	jobs, err := batch.Discover(args[0], batch.DiscoverOptions{
		Recursive:     recursive,
		Pattern:       pattern,
		IncludeHidden: hidden,
	})
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		logger.Warn("no convertible files found", "dir", args[0])
		return nil
	}
	return runBatch(cmd, jobs)
}

func runBatch(cmd *cobra.Command, jobs []batch.Job) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	conv, err := newConverter()
	if err != nil {
		return err
	}

	reportPath, _ := cmd.Flags().GetString("report")
	var reportFormat output.Format
	if reportPath != "" {
		if reportFormat, err = output.FormatFromPath(reportPath); err != nil {
			return err
		}
	}

	runner := batch.NewRunner(conv, batch.Options{
		OutputDir:  cfg.Output.Directory,
		MaxWorkers: cfg.Performance.MaxWorkers,
		Files: output.FilePolicy{
			Overwrite: cfg.Output.OverwriteExisting,
			Backup:    cfg.Output.CreateBackup,
		},
		FrontMatter: cfg.Output.FrontMatter,
	})
	sum := runner.Run(ctx, jobs)

	if reportPath != "" {
		if err := writeReport(reportPath, reportFormat, sum); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logger.Info("report written", "path", reportPath, "format", reportFormat)
	}

	for _, o := range sum.Outcomes {
		if o.Status == batch.StatusFailed {
			logError("%s: %s", o.Source, o.Error)
		}
	}
	fmt.Fprintln(cmd.ErrOrStderr(), sum.String())
	return exitWith(sum.Failed)
}

func writeReport(path string, format output.Format, sum *batch.Summary) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w, err := output.NewReportWriter(f, format)
	if err != nil {
		return err
	}
	for _, o := range sum.Outcomes {
		if err := w.Write(o); err != nil {
			return err
		}
	}
	return w.Close()
}
