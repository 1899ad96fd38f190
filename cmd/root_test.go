package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/gutentext/cmd/enrich"
	"github.com/lepinkainen/gutentext/internal/config"
	"github.com/lepinkainen/gutentext/internal/gutenberg"
	"github.com/lepinkainen/gutentext/internal/records"
	"github.com/lepinkainen/gutentext/internal/testutil"
)

func parseCLI(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()

	originalArgs := os.Args
	os.Args = append([]string{"gutentext"}, args...)
	t.Cleanup(func() { os.Args = originalArgs })

	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("gutentext"),
		kong.Description("Fetch Project Gutenberg texts and strip their license boilerplate."),
		kong.UsageOnError(),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
		kong.Exit(func(code int) {
			t.Fatalf("unexpected Kong exit %d", code)
		}),
	)

	return cli, ctx
}

// captureEnrich replaces the enrich runner and returns the options it receives.
func captureEnrich(t *testing.T) *enrich.Options {
	t.Helper()
	var got enrich.Options
	orig := runEnrich
	t.Cleanup(func() { runEnrich = orig })
	runEnrich = func(_ context.Context, opts enrich.Options) (*records.Result, error) {
		got = opts
		return &records.Result{}, nil
	}
	return &got
}

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := stdout
	t.Cleanup(func() { stdout = orig })
	stdout = &buf
	return &buf
}

const bookText = "*** START OF THIS PROJECT GUTENBERG EBOOK MOBY DICK ***\nCall me Ishmael.\n*** END OF THIS PROJECT GUTENBERG EBOOK MOBY DICK ***\nlicense"

func newBookServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ebooks/2/7/0/2701/2701-0.txt" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(bookText))
	}))
	t.Cleanup(server.Close)
	testutil.SetTestMirror(t, server.URL)
	return server
}

func TestUpdateGlobalConfig(t *testing.T) {
	testutil.ResetConfig(t)

	cli := &CLI{
		Overwrite:   true,
		Datasette:   true,
		DatasetteDB: "/tmp/gutentext.db",
	}

	updateGlobalConfig(cli)

	assert.True(t, config.OverwriteFiles)
	assert.True(t, viper.GetBool("datasette.enabled"))
	assert.Equal(t, "/tmp/gutentext.db", viper.GetString("datasette.dbfile"))
}

func TestGlobalFlagDefaults(t *testing.T) {
	testutil.ResetConfig(t)

	cli, _ := parseCLI(t, "urls", "1")
	assert.False(t, cli.Verbose)
	assert.False(t, cli.Overwrite)
	assert.False(t, cli.Datasette)
	assert.Equal(t, "./gutentext.db", cli.DatasetteDB)
}

func TestEnrichCommandParsing(t *testing.T) {
	testutil.ResetConfig(t)

	cli, _ := parseCLI(t, "enrich", "-f", "books.csv", "-o", "out.csv", "-w", "4",
		"--id-column", "pg", "--json", "--markdown", "--covers", "--yes")

	assert.Equal(t, "books.csv", cli.Enrich.Input)
	assert.Equal(t, "out.csv", cli.Enrich.Output)
	assert.Equal(t, 4, cli.Enrich.Workers)
	assert.Equal(t, "pg", cli.Enrich.IDColumn)
	assert.Equal(t, "title", cli.Enrich.TitleColumn)
	assert.Equal(t, "gutenberg", cli.Enrich.MarkdownOutput)
	assert.True(t, cli.Enrich.JSON)
	assert.True(t, cli.Enrich.Markdown)
	assert.True(t, cli.Enrich.Covers)
	assert.True(t, cli.Enrich.Yes)
}

func TestEnrichRequiresInput(t *testing.T) {
	testutil.ResetConfig(t)
	captureEnrich(t)

	cli, ctx := parseCLI(t, "enrich")
	updateGlobalConfig(cli)
	err := ctx.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input CSV file is required")
}

func TestEnrichReadsInputFromConfig(t *testing.T) {
	testutil.ResetConfig(t)
	got := captureEnrich(t)
	viper.Set("enrich.csvfile", "configured.csv")

	_, ctx := parseCLI(t, "enrich")
	require.NoError(t, ctx.Run())
	assert.Equal(t, "configured.csv", got.Input)
	assert.Equal(t, "gutenberg", got.MarkdownOutput)
}

func TestEnrichConfirmFlags(t *testing.T) {
	testutil.ResetConfig(t)

	t.Run("yes", func(t *testing.T) {
		got := captureEnrich(t)
		_, ctx := parseCLI(t, "enrich", "-f", "books.csv", "--yes")
		require.NoError(t, ctx.Run())
		require.NotNil(t, got.Confirm)
		ok, err := got.Confirm("text_data")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("no interactive", func(t *testing.T) {
		got := captureEnrich(t)
		_, ctx := parseCLI(t, "enrich", "-f", "books.csv", "--no-interactive")
		require.NoError(t, ctx.Run())
		require.NotNil(t, got.Confirm)
		ok, err := got.Confirm("text_data")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("interactive by default", func(t *testing.T) {
		got := captureEnrich(t)
		_, ctx := parseCLI(t, "enrich", "-f", "books.csv")
		require.NoError(t, ctx.Run())
		assert.True(t, got.Confirm == nil)
	})

	t.Run("conflicting", func(t *testing.T) {
		captureEnrich(t)
		_, ctx := parseCLI(t, "enrich", "-f", "books.csv", "--yes", "--no-interactive")
		err := ctx.Run()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be combined")
	})
}

func TestFetchPrintsStrippedText(t *testing.T) {
	newBookServer(t)
	out := captureStdout(t)

	_, ctx := parseCLI(t, "fetch", "2701")
	require.NoError(t, ctx.Run())
	assert.Equal(t, "Call me Ishmael.\n", out.String())
}

// redirectStd points os.Stdout and os.Stderr at pipes and returns functions
// that restore them and return everything written.
func redirectStd(t *testing.T) (stdoutText, stderrText func() string) {
	t.Helper()

	origOut, origErr := os.Stdout, os.Stderr
	outR, outW, err := os.Pipe()
	require.NoError(t, err)
	errR, errW, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout, os.Stderr = outW, errW

	drain := func(r *os.File) <-chan string {
		ch := make(chan string, 1)
		go func() {
			var buf bytes.Buffer
			_, _ = buf.ReadFrom(r)
			ch <- buf.String()
		}()
		return ch
	}
	outCh, errCh := drain(outR), drain(errR)

	var outText, errText string
	closed := false
	finish := func() {
		if closed {
			return
		}
		closed = true
		os.Stdout, os.Stderr = origOut, origErr
		_ = outW.Close()
		_ = errW.Close()
		outText, errText = <-outCh, <-errCh
	}
	t.Cleanup(finish)

	return func() string { finish(); return outText }, func() string { finish(); return errText }
}

func TestFetchStdoutHasNoLogLines(t *testing.T) {
	newBookServer(t)

	origLogger := slog.Default()
	t.Cleanup(func() { slog.SetDefault(origLogger) })

	stdoutText, stderrText := redirectStd(t)
	initLogging(false)

	orig := stdout
	t.Cleanup(func() { stdout = orig })
	stdout = os.Stdout

	_, ctx := parseCLI(t, "fetch", "2701")
	require.NoError(t, ctx.Run())

	assert.Equal(t, "Call me Ishmael.\n", stdoutText())
	assert.Contains(t, stderrText(), "Header stripped")
}

func TestFetchRaw(t *testing.T) {
	newBookServer(t)
	out := captureStdout(t)

	_, ctx := parseCLI(t, "fetch", "2701", "--raw")
	require.NoError(t, ctx.Run())
	assert.Equal(t, bookText+"\n", out.String())
}

func TestFetchToFile(t *testing.T) {
	newBookServer(t)
	env := testutil.NewTestEnv(t)
	target := env.Path("moby.txt")

	_, ctx := parseCLI(t, "fetch", "2701", "-o", target)
	require.NoError(t, ctx.Run())
	assert.Equal(t, "Call me Ishmael.\n", env.ReadFileString("moby.txt"))

	// A second run refuses to replace the file unless overwriting is enabled.
	_, ctx = parseCLI(t, "fetch", "2701", "-o", target)
	err := ctx.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	config.SetOverwriteFiles(true)
	_, ctx = parseCLI(t, "fetch", "2701", "-o", target)
	require.NoError(t, ctx.Run())
}

func TestFetchFailure(t *testing.T) {
	newBookServer(t)
	out := captureStdout(t)

	_, ctx := parseCLI(t, "fetch", "999999")
	err := ctx.Run()
	require.Error(t, err)
	assert.Equal(t, gutenberg.FailureExhausted, gutenberg.FailureOf(err))
	assert.Equal(t, "", out.String())
}

func TestUrlsListsCandidatesInOrder(t *testing.T) {
	server := newBookServer(t)
	out := captureStdout(t)

	_, ctx := parseCLI(t, "urls", "12")
	require.NoError(t, ctx.Run())

	want := "" +
		"archive " + server.URL + "/ebooks/1/12/12.zip\n" +
		"archive " + server.URL + "/ebooks/1/12/12-8.zip\n" +
		"archive " + server.URL + "/ebooks/1/12/12-0.zip\n" +
		"text    " + server.URL + "/ebooks/1/12/12.txt\n" +
		"text    " + server.URL + "/ebooks/1/12/12-8.txt\n" +
		"text    " + server.URL + "/ebooks/1/12/12-0.txt\n" +
		"cache   " + server.URL + "/cache/epub/12/pg12.txt\n"
	assert.Equal(t, want, out.String())
}

func TestInitConfigWritesDefaultFile(t *testing.T) {
	testutil.ResetConfig(t)
	env := testutil.NewTestEnv(t)
	env.Chdir(".")

	require.NoError(t, initConfig())
	assert.True(t, env.FileExists("config.yaml"))
	assert.Equal(t, gutenberg.DefaultMirror, config.Mirror)
	assert.Equal(t, "text_id", config.IDColumn)
}

func TestInitConfigReadsExistingFile(t *testing.T) {
	testutil.ResetConfig(t)
	env := testutil.NewTestEnv(t)
	env.WriteFileString("config.yaml", "enrich:\n  workers: 6\n  text_column: body\ngutenberg:\n  suffixes: [\"-0\"]\n")
	env.Chdir(".")

	require.NoError(t, initConfig())
	assert.Equal(t, 6, config.Workers)
	assert.Equal(t, "body", config.TextColumn)
	assert.Equal(t, []string{"-0"}, config.Suffixes)
}

func TestInitConfigRejectsBrokenFile(t *testing.T) {
	testutil.ResetConfig(t)
	env := testutil.NewTestEnv(t)
	env.WriteFileString("config.yaml", "enrich: [unclosed\n")
	env.Chdir(".")

	require.Error(t, initConfig())
}
