package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yuanying/paged2epub/internal/config"
	"github.com/yuanying/paged2epub/internal/converter"
)

const (
	defaultLogLevel  = "info"
	defaultLogFormat = "text"
)

// cliOptions is the resolved command line: the conversion options plus the
// file locations the library does not deal with.
type cliOptions struct {
	converter.ConvertOptions

	InputPath  string
	OutputPath string
	AssetsDir  string
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paged2epub [flags] <input.html>",
		Short: "Convert paginated HTML to a fixed-layout EPUB 3",
		Long: `paged2epub packages an HTML document that has already been split into
pages (for example by paged.js) as a pre-paginated EPUB 3 publication.

Each page container becomes one XHTML content document. Images are taken
from the assets directory, in-document links are rewritten to the page
that holds their target, and a navigation document lists every page.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readCLIOptions(cmd, args)
			if err != nil {
				return err
			}
			return run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringP("output", "o", "", "Output file path (default: input with .epub extension)")
	flags.StringP("assets", "a", "", "Directory whose files are packaged as assets")
	flags.String("config", "", "TOML config file")
	flags.String("width", "", "Page width written into every viewport")
	flags.String("height", "", "Page height written into every viewport")
	flags.String("identifier", "", "Package identifier (default: derived from the input)")
	flags.String("language", "", "Publication language (default: from the document)")
	flags.String("stylesheet", "", "Stylesheet path inside the package")
	flags.String("cover", "", "Asset filename to mark as cover image")
	flags.String("log-level", defaultLogLevel, "Log level: debug, info, warn, error")
	flags.String("log-format", defaultLogFormat, "Log format: text, json")
	flags.BoolP("verbose", "v", false, "Shorthand for --log-level debug")
	flags.Bool("strict", false, "Fail on unresolved links and missing assets")

	return cmd
}

// readCLIOptions layers the command line over the config file and
// PAGED2EPUB_* environment variables, which in turn are layered over the
// defaults. Only flags that were set override.
func readCLIOptions(cmd *cobra.Command, args []string) (*cliOptions, error) {
	flags := cmd.Flags()

	cfg := config.NewDefaultConfig()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg.UpdateFromEnv()
	}

	opts := &cliOptions{
		ConvertOptions: cfg.Options(),
		InputPath:      args[0],
	}

	overrides := []struct {
		flag string
		dst  *string
	}{
		{"width", &opts.Size.Width},
		{"height", &opts.Size.Height},
		{"identifier", &opts.Identifier},
		{"language", &opts.Language},
		{"stylesheet", &opts.StylesheetPath},
		{"cover", &opts.Cover},
	}
	for _, o := range overrides {
		if flags.Changed(o.flag) {
			*o.dst, _ = flags.GetString(o.flag)
		}
	}
	if flags.Changed("strict") {
		opts.Strict, _ = flags.GetBool("strict")
	}

	opts.OutputPath, _ = flags.GetString("output")
	if opts.OutputPath == "" {
		opts.OutputPath = defaultOutputPath(opts.InputPath)
	}
	opts.AssetsDir, _ = flags.GetString("assets")

	level, _ := flags.GetString("log-level")
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid --log-level %q: must be one of debug, info, warn, error", level)
	}
	if verbose, _ := flags.GetBool("verbose"); verbose {
		level = "debug"
	}

	format, _ := flags.GetString("log-format")
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "text" && format != "json" {
		return nil, fmt.Errorf("invalid --log-format %q: must be text or json", format)
	}

	opts.Logger = buildLogger(cmd.ErrOrStderr(), level, format)

	if err := opts.ConvertOptions.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func buildLogger(w io.Writer, level, format string) *slog.Logger {
	var lv slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lv = slog.LevelDebug
	case "warn":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: lv}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

func defaultOutputPath(inputPath string) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".epub"
}

// loadAssets reads every regular file under dir, in lexical order.
func loadAssets(dir string) ([]converter.Asset, error) {
	if dir == "" {
		return nil, nil
	}

	var assets []converter.Asset
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		assets = append(assets, converter.Asset{
			URL:      "file:" + filepath.ToSlash(rel),
			Filename: d.Name(),
			Data:     data,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load assets from %s: %w", dir, err)
	}
	return assets, nil
}

func run(ctx context.Context, opts *cliOptions) error {
	log := opts.Logger
	log.Info("converting", "input", opts.InputPath, "output", opts.OutputPath)

	html, err := os.ReadFile(opts.InputPath)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	assets, err := loadAssets(opts.AssetsDir)
	if err != nil {
		return err
	}
	log.Debug("assets loaded", "dir", opts.AssetsDir, "count", len(assets))

	out, err := converter.Convert(ctx, html, assets, opts.ConvertOptions)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if dir := filepath.Dir(opts.OutputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(opts.OutputPath, out, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	log.Info("done", "output", opts.OutputPath, "bytes", len(out))
	return nil
}

func main() {
	cmd := newRootCmd()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
