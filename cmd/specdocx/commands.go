package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dgallion1/specdocx/internal/api"
	"github.com/dgallion1/specdocx/internal/config"
	"github.com/dgallion1/specdocx/internal/convert"
	"github.com/dgallion1/specdocx/internal/engine"
	"github.com/dgallion1/specdocx/internal/wordml"
)

// cli holds the state shared by the subcommands of one invocation.
type cli struct {
	stdout, stderr io.Writer
	configFile     string
	v              *viper.Viper
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "specdocx",
		Short: "Markdown specification to Word converter",
		Long: `Converts a set of Markdown files, ordered by their section numbers,
into a single Word document based on a template.

Settings come from flags, SPECDOCX_* environment variables and an
optional specdocx.yaml, in that order of precedence.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.initConfig,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default ./specdocx.yaml)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().String("log-format", "", "log format: json or text")

	convertCmd := &cobra.Command{
		Use:   "convert <md files|globs>...",
		Short: "Convert Markdown files into a docx document",
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.runConvert,
	}
	convertCmd.Flags().StringP("template", "t", "", "template .docx")
	convertCmd.Flags().StringP("output", "o", "", "output .docx")
	addConversionFlags(convertCmd.Flags())

	checkCmd := &cobra.Command{
		Use:   "check <md files|globs>...",
		Short: "Index and convert without writing, then print the counts",
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.runCheck,
	}
	addConversionFlags(checkCmd.Flags())

	outlineCmd := &cobra.Command{
		Use:   "outline <md files|globs>...",
		Short: "Print the section table",
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.runOutline,
	}
	outlineCmd.Flags().Int("parse-concurrency", 0, "files parsed in parallel")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the batch conversion service",
		Args:  cobra.NoArgs,
		RunE:  c.runServe,
	}
	serveCmd.Flags().String("port", "", "listen port")
	serveCmd.Flags().Int("worker-count", 0, "conversion workers")
	serveCmd.Flags().StringP("template", "t", "", "default template .docx")

	root.AddCommand(convertCmd, checkCmd, outlineCmd, serveCmd)
	return root
}

func addConversionFlags(fs *pflag.FlagSet) {
	fs.Int("parse-concurrency", 0, "files parsed in parallel")
	fs.Int("max-code-line-length", 0, "code line length above which MD32 is reported")
}

// configKeys maps flag names to the config keys they override.
var configKeys = map[string]string{
	"template":             "template",
	"log-level":            "log_level",
	"log-format":           "log_format",
	"parse-concurrency":    "parse_concurrency",
	"max-code-line-length": "max_code_line_length",
	"port":                 "port",
	"worker-count":         "worker_count",
}

func (c *cli) initConfig(cmd *cobra.Command, _ []string) error {
	v, err := config.NewViper(c.configFile)
	if err != nil {
		return err
	}
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := configKeys[f.Name]; ok && bindErr == nil {
			bindErr = v.BindPFlag(key, f)
		}
	})
	if bindErr != nil {
		return fmt.Errorf("bind flags: %w", bindErr)
	}
	c.v = v
	return nil
}

func (c *cli) load() (config.Config, *slog.Logger) {
	cfg := config.Load(c.v)
	return cfg, cfg.NewLogger(c.stderr)
}

func conversionOptions(cfg config.Config) engine.Options {
	return engine.Options{
		ParseConcurrency: cfg.ParseConcurrency,
		Convert: convert.Options{
			MaxCodeLineLength: cfg.MaxCodeLineLength,
			LineSeparator:     cfg.LineSeparator,
		},
	}
}

func (c *cli) runConvert(cmd *cobra.Command, args []string) error {
	cfg, log := c.load()

	output, _ := cmd.Flags().GetString("output")
	var argErrs []string
	if output == "" {
		argErrs = append(argErrs, "no output .docx file specified")
	} else if ext := strings.ToLower(filepath.Ext(output)); ext != ".docx" {
		argErrs = append(argErrs, fmt.Sprintf("unknown output file extension: %s", ext))
	}
	if cfg.Template == "" {
		argErrs = append(argErrs, "no template .docx supplied")
	}
	if len(argErrs) > 0 {
		return fmt.Errorf("%s", strings.Join(argErrs, "; "))
	}

	inputs, err := engine.ReadInputs(args)
	if err != nil {
		return err
	}
	tpl, err := wordml.OpenTemplate(cfg.Template)
	if err != nil {
		return fmt.Errorf("template %s: %w", cfg.Template, err)
	}

	opts := conversionOptions(cfg)
	opts.Template = tpl
	opts.OutputPath = output
	res, err := engine.Run(cmd.Context(), inputs, opts, log)
	if err != nil {
		return err
	}

	printCounts(c.stdout, res)
	if res.Errors > 0 {
		return fmt.Errorf("%d errors reported", res.Errors)
	}
	if res.Written {
		fmt.Fprintf(c.stdout, "wrote %s\n", output)
	}
	return nil
}

func (c *cli) runCheck(cmd *cobra.Command, args []string) error {
	cfg, log := c.load()
	inputs, err := engine.ReadInputs(args)
	if err != nil {
		return err
	}
	res, err := engine.Run(cmd.Context(), inputs, conversionOptions(cfg), log)
	if err != nil {
		return err
	}
	printCounts(c.stdout, res)
	if res.Errors > 0 {
		return fmt.Errorf("%d errors reported", res.Errors)
	}
	return nil
}

func (c *cli) runOutline(cmd *cobra.Command, args []string) error {
	cfg, log := c.load()
	inputs, err := engine.ReadInputs(args)
	if err != nil {
		return err
	}
	res, err := engine.Run(cmd.Context(), inputs, conversionOptions(cfg), log)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NUMBER\tTITLE\tURL\tBOOKMARK")
	for _, s := range res.Sections {
		number := s.Number
		if !s.HasNumber {
			number = "-"
		}
		indent := strings.Repeat("  ", max(s.Level-1, 0))
		fmt.Fprintf(tw, "%s\t%s%s\t%s\t%s\n", number, indent, s.TitleWithoutNumber, s.URL, s.BookmarkName)
	}
	return tw.Flush()
}

func (c *cli) runServe(cmd *cobra.Command, _ []string) error {
	cfg, log := c.load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	return api.Run(cmd.Context(), cfg, log)
}

func printCounts(w io.Writer, res *engine.Result) {
	fmt.Fprintf(w, "%d files, %d sections, %d terms: %d errors, %d warnings\n",
		len(res.Files), len(res.Sections), len(res.Terms), res.Errors, res.Warnings)
}
