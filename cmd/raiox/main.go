// Command raiox queries the store performance sheet from a terminal.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/raiox-score/internal/domain/chat"
	"github.com/FACorreiaa/raiox-score/internal/domain/completion"
	"github.com/FACorreiaa/raiox-score/internal/domain/sheet"
	"github.com/FACorreiaa/raiox-score/internal/domain/store"
	"github.com/FACorreiaa/raiox-score/pkg/config"
)

var (
	// Global flags
	verbose   bool
	sheetFile string
	sheetURL  string
	timeout   time.Duration

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "raiox",
	Short: "Raio-X Score store performance from the command line",
	Long: `raiox loads the store performance sheet and answers the same questions
the chat assistant does: a store report by EG code, store listings per chain,
chain counts and a spreadsheet export.

The sheet is read from SHEET_CSV_URL unless --file points at a local CSV export.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&sheetFile, "file", "f", "", "Read the sheet from a local CSV file")
	rootCmd.PersistentFlags().StringVar(&sheetURL, "url", "", "Sheet CSV URL (default: SHEET_CSV_URL)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Operation timeout")

	askCmd.Flags().StringVar(&askCode, "eg", "", "Store code the question is about")
	askCmd.Flags().BoolVar(&askCompletion, "llm", false, "Fall through to the configured completion backend")
	storesCmd.Flags().StringVar(&storesChain, "rede", "", "Only stores of this chain")
	storesCmd.Flags().StringVarP(&storesQuery, "query", "q", "", "Only stores whose name, code or team contains this text")
	storesCmd.Flags().BoolVar(&storesJSON, "json", false, "Print JSON instead of a table")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(storesCmd)
	rootCmd.AddCommand(chainsCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newDataSource builds a data source over --file, --url or the configured sheet.
func newDataSource() (*store.DataSource, error) {
	var fetcher store.Fetcher
	switch {
	case sheetFile != "":
		fetcher = store.NewFileFetcher(sheetFile)
	case sheetURL != "":
		fetcher = store.NewHTTPFetcher(sheetURL, timeout, nil)
	default:
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		fetcher = store.NewHTTPFetcher(cfg.Sheet.URL, cfg.Sheet.Timeout, nil)
	}
	return store.NewDataSource(fetcher, sheet.NewBuilder(nil, nil), logger), nil
}

// loadSnapshot loads the sheet once; commands fail when nothing could be read.
func loadSnapshot(ctx context.Context) (*store.Snapshot, error) {
	ds, err := newDataSource()
	if err != nil {
		return nil, err
	}
	snap, err := ds.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sheet: %w", err)
	}
	return snap, nil
}

// newCompleter returns the configured completion backend, or nil when disabled.
func newCompleter(ctx context.Context) (completion.Completer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	switch cfg.Completion.Backend {
	case config.CompletionGemini:
		return completion.NewGeminiCompleter(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Completion.Timeout, logger)
	case config.CompletionHTTP:
		return completion.NewClient(cfg.Completion.URL, cfg.Completion.Timeout, nil, logger), nil
	default:
		return nil, nil
	}
}

func newRouter(ctx context.Context, ds chat.SnapshotProvider, withCompletion bool) (*chat.Router, error) {
	router := chat.NewRouter(ds, logger)
	if !withCompletion {
		return router, nil
	}
	c, err := newCompleter(ctx)
	if err != nil {
		return nil, err
	}
	if c != nil {
		router.WithCompleter(c)
	}
	return router, nil
}
