package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/gutentext/cmd/enrich"
	"github.com/lepinkainen/gutentext/internal/config"
	"github.com/lepinkainen/gutentext/internal/fileutil"
	"github.com/lepinkainen/gutentext/internal/gutenberg"
	"github.com/lepinkainen/gutentext/internal/records"
)

var (
	runEnrich  = enrich.Run
	newFetcher = enrich.NewFetcher
)

var stdout io.Writer = os.Stdout

// CLI represents the complete command structure for the gutentext application
type CLI struct {
	// Global flags
	Verbose   bool `short:"v" help:"Enable debug logging, including every download attempt"`
	Overwrite bool `help:"Overwrite existing output files"`

	// Datasette flags
	Datasette   bool   `help:"Enable Datasette output" default:"false"`
	DatasetteDB string `help:"Path to SQLite database file" default:"./gutentext.db"`

	Enrich EnrichCmd `cmd:"" help:"Fill the text column of a CSV file with Project Gutenberg texts"`
	Fetch  FetchCmd  `cmd:"" help:"Download the text of a single book"`
	Urls   UrlsCmd   `cmd:"" help:"List the locations tried for a book, in order"`
}

// EnrichCmd represents the enrich command
type EnrichCmd struct {
	Input          string `short:"f" help:"Path to CSV file with Gutenberg ids"`
	Output         string `short:"o" help:"Path of the enriched CSV file (defaults to rewriting the input)"`
	IDColumn       string `help:"Column holding Gutenberg ids (defaults to enrich.id_column)"`
	TextColumn     string `help:"Column to write texts to (defaults to enrich.text_column)"`
	TitleColumn    string `help:"Column used for note titles" default:"title"`
	Workers        int    `short:"w" help:"Number of books fetched concurrently (defaults to enrich.workers)"`
	JSON           bool   `help:"Write texts to JSON format"`
	JSONOutput     string `help:"Path to JSON output file (defaults to json/gutenberg.json)"`
	Markdown       bool   `help:"Write one markdown note per record"`
	MarkdownOutput string `help:"Subdirectory under markdown output directory for notes" default:"gutenberg"`
	Covers         bool   `help:"Download cover images for markdown notes"`
	Yes            bool   `short:"y" help:"Overwrite an existing text column without asking"`
	NoInteractive  bool   `help:"Never prompt; an existing text column is left untouched" default:"false"`
}

// FetchCmd represents the fetch command
type FetchCmd struct {
	ID     string `arg:"" help:"Gutenberg book id"`
	Raw    bool   `help:"Keep the license header and footer"`
	Output string `short:"o" help:"Write the text to a file instead of stdout"`
}

// UrlsCmd represents the urls command
type UrlsCmd struct {
	ID string `arg:"" help:"Gutenberg book id"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging(false)
	if err := initConfig(); err != nil {
		slog.Error("Fatal error config file", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI

	kctx := kong.Parse(&cli,
		kong.Name("gutentext"),
		kong.Description("Fetch Project Gutenberg texts and strip their license boilerplate."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	if cli.Verbose {
		initLogging(true)
	}
	updateGlobalConfig(&cli)

	err := kctx.Run()
	if err != nil {
		slog.Error("Command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// initConfig reads config.yaml from the working directory, writing a default
// one when it does not exist yet.
func initConfig() error {
	config.SetDefaults()

	// Enable environment variable support
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		slog.Info("Config file not found, writing default config file...")
		if err := viper.SafeWriteConfig(); err != nil {
			slog.Error("Error writing config file", "error", err)
		}
	}

	// Initialize global config
	config.InitConfig()
	return nil
}

func updateGlobalConfig(cli *CLI) {
	config.SetOverwriteFiles(cli.Overwrite)

	viper.Set("datasette.enabled", cli.Datasette)
	viper.Set("datasette.dbfile", cli.DatasetteDB)
}

// initLogging sends logs to stderr so command output on stdout stays clean.
func initLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := humanlog.NewHandler(os.Stderr, &humanlog.Options{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}

// Run methods for each command

func (e *EnrichCmd) Run(ctx context.Context) error {
	// Read from config if value not provided via flag
	input := e.Input
	if input == "" {
		input = viper.GetString("enrich.csvfile")
	}

	// Check if required value is still missing
	if input == "" {
		return fmt.Errorf("input CSV file is required (provide via --input flag or enrich.csvfile in config)")
	}
	if e.Yes && e.NoInteractive {
		return fmt.Errorf("--yes and --no-interactive cannot be combined")
	}

	opts := enrich.Options{
		Input:          input,
		Output:         e.Output,
		IDColumn:       e.IDColumn,
		TextColumn:     e.TextColumn,
		TitleColumn:    e.TitleColumn,
		Workers:        e.Workers,
		WriteJSON:      e.JSON,
		JSONOutput:     e.JSONOutput,
		WriteMarkdown:  e.Markdown,
		MarkdownOutput: e.MarkdownOutput,
		Covers:         e.Covers,
	}
	switch {
	case e.Yes:
		opts.Confirm = answer(true)
	case e.NoInteractive:
		opts.Confirm = answer(false)
	}

	_, err := runEnrich(ctx, opts)
	return err
}

func answer(ok bool) records.ConfirmFunc {
	return func(string) (bool, error) { return ok, nil }
}

func (f *FetchCmd) Run(ctx context.Context) error {
	fetcher := newFetcher(slog.Default())
	text, err := fetcher.Fetch(ctx, f.ID)
	if err != nil {
		return err
	}
	if !f.Raw {
		text = gutenberg.Strip(text)
	}

	if f.Output == "" {
		_, err := fmt.Fprintln(stdout, text)
		return err
	}

	written, err := fileutil.WriteFileWithOverwrite(f.Output, []byte(text+"\n"), 0o644, config.OverwriteFiles)
	if err != nil {
		return err
	}
	if !written {
		return fmt.Errorf("%s already exists (use --overwrite to replace it)", f.Output)
	}
	slog.Info("Wrote text", "id", f.ID, "filename", f.Output)
	return nil
}

func (u *UrlsCmd) Run() error {
	for _, c := range newFetcher(slog.Default()).CandidatesFor(u.ID) {
		if _, err := fmt.Fprintf(stdout, "%-7s %s\n", c.Kind, c.URL); err != nil {
			return err
		}
	}
	return nil
}
