package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"email_rag/internal/app"
	"email_rag/internal/config"
)

var (
	docsDir string
	dataDir string
	limit   int
)

func main() {
	// Контекст с сигналами завершения
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Fatalf("email_rag: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "email_rag",
		Short:        "Knowledge base for automatic email replies",
		Long:         "Indexes documents from the docs directory at startup, then answers queries read from stdin, one per line.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if _, err := a.ReindexAll(ctx); err != nil {
					return err
				}
				return a.Run(ctx, os.Stdin, os.Stdout)
			})
		},
	}

	root.PersistentFlags().StringVar(&docsDir, "docs", "", "Documents directory (overrides DOCS_DIR)")
	root.PersistentFlags().StringVar(&dataDir, "data", "", "Vector DB directory (overrides VECTOR_DB_DIR)")

	root.AddCommand(newReindexCmd(), newQueryCmd())
	return root
}

func newReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Index new or changed documents and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				stats, err := a.ReindexAll(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "files=%d indexed=%d skipped=%d failed=%d points=%d\n",
					stats.Files, stats.Indexed, stats.Skipped, stats.Failed, stats.Points)
				return nil
			})
		},
	}
}

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <text...>",
		Short: "Print the knowledge base context for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				fmt.Fprintln(cmd.OutOrStdout(), a.QueryKnowledgeBase(ctx, strings.Join(args, " "), limit))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Number of chunks to return (0 uses TOP_K)")
	return cmd
}

// withApp загружает конфиг, открывает хранилище и закрывает его после fn
func withApp(ctx context.Context, fn func(context.Context, *app.App) error) error {
	// Флаги переопределяют env
	if docsDir != "" {
		os.Setenv("DOCS_DIR", docsDir)
	}
	if dataDir != "" {
		os.Setenv("VECTOR_DB_DIR", dataDir)
	}

	// Загружаем .env (опционально)
	_ = godotenv.Load()

	cfg := config.Config{}
	if err := config.Init(&cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log.Printf("Docs directory: %s", cfg.DocsDir)
	log.Printf("Vector DB directory: %s", cfg.DataDir)

	a, err := app.New(ctx, &cfg)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}
	defer a.Close()

	return fn(ctx, a)
}
