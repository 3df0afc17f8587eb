package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/raiox-score/internal/domain/analysis"
	"github.com/FACorreiaa/raiox-score/internal/domain/chat"
	"github.com/FACorreiaa/raiox-score/internal/domain/store"
)

var (
	askCode       string
	askCompletion bool

	storesChain string
	storesQuery string
	storesJSON  bool
)

// askCmd routes one message through the chat router
var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Ask the assistant a question",
	Long: `Routes a message exactly as the chat endpoint does.

Examples:
  raiox ask "bom dia"
  raiox ask "como está a loja 174028-1?"
  raiox ask "verdemar lourdes"
  raiox ask --eg 174028-1 "tem ponto extra?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

// reportCmd prints the report for one store
var reportCmd = &cobra.Command{
	Use:   "report [eg]",
	Short: "Print the Raio-X report for a store code",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

// storesCmd lists stores
var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "List stores, optionally filtered by chain or text",
	Args:  cobra.NoArgs,
	RunE:  runStores,
}

// chainsCmd lists chains
var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List chains and their store counts",
	Args:  cobra.NoArgs,
	RunE:  runChains,
}

// exportCmd writes the snapshot to an Excel workbook
var exportCmd = &cobra.Command{
	Use:   "export [file.xlsx]",
	Short: "Export the stores and chains to an Excel workbook",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	ds, err := newDataSource()
	if err != nil {
		return err
	}
	router, err := newRouter(ctx, ds, askCompletion)
	if err != nil {
		return err
	}

	reply := router.Respond(ctx, chat.Query{
		Message:   strings.Join(args, " "),
		StoreCode: askCode,
	})
	logger.Debug("reply routed",
		slog.String("intent", string(reply.Intent)),
		slog.String("eg", reply.StoreCode),
	)

	fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	snap, err := loadSnapshot(ctx)
	if err != nil {
		return err
	}

	matches := snap.FindByCode(args[0])
	if len(matches) == 0 {
		return fmt.Errorf("%s: %s", args[0], analysis.NotFoundMessage)
	}
	fmt.Fprintln(cmd.OutOrStdout(), analysis.Analyze(matches[0]).Text())
	return nil
}

func runStores(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	snap, err := loadSnapshot(ctx)
	if err != nil {
		return err
	}

	records := snap.Filter(storesChain, storesQuery)
	out := cmd.OutOrStdout()
	if storesJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EG\tLOJA\tREDE\tGN")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.StoreCode, r.DisplayName, r.ChainName, r.ManagerName)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d lojas\n", len(records))
	return nil
}

func runChains(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	snap, err := loadSnapshot(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "REDE\tLOJAS")
	for _, c := range snap.Chains() {
		fmt.Fprintf(w, "%s\t%d\n", c.Chain, c.Stores)
	}
	return w.Flush()
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	snap, err := loadSnapshot(ctx)
	if err != nil {
		return err
	}

	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", args[0], err)
	}
	if err := store.ExportXLSX(f, snap.Records(), snap.Chains()); err != nil {
		f.Close()
		return fmt.Errorf("failed to export stores: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d lojas exportadas para %s\n", snap.Len(), args[0])
	return nil
}
