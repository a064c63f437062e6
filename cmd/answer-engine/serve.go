// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/answer-engine/internal/contextstore"
	"github.com/pdiddy/answer-engine/internal/controller"
	"github.com/pdiddy/answer-engine/internal/feedback"
	"github.com/pdiddy/answer-engine/internal/generation"
	"github.com/pdiddy/answer-engine/internal/retrieval"
	"github.com/pdiddy/answer-engine/internal/server"
	"github.com/pdiddy/answer-engine/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API service",
	Long: `Serve starts the HTTP API. POST /api/unified-search answers a query
with a summary, a detailed answer, and citations; /api/feedback collects
ratings; /api/stats and /health report service state.

The search endpoint and AI model come from the config file or
ANSWER_ENGINE_* environment variables.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := serviceConfig()
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	log, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	if cfg.Search.EndpointURL == "" {
		return fmt.Errorf("search.endpoint_url is required")
	}

	llm, err := generation.NewOpenAIProvider(cfg.Generation)
	if err != nil {
		return err
	}

	if cfg.ContextStore.SweepInterval == 0 {
		cfg.ContextStore.SweepInterval = 5 * time.Minute
	}
	store := contextstore.New(cfg.ContextStore)
	defer store.Close()

	searchProvider := &retrieval.OpenSearchProvider{
		Client: &http.Client{Timeout: searchClientTimeout(cfg)},
		Cfg:    cfg.Search,
	}

	ret := retrieval.NewService(searchProvider, store, cfg.Search, os.Stderr)
	gen := generation.NewService(llm, store, cfg.Generation, os.Stderr)
	ctrl := controller.New(ret, gen, os.Stderr)

	fb, err := feedback.NewStore(cfg.Feedback)
	if err != nil {
		return fmt.Errorf("opening feedback store: %w", err)
	}
	defer fb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg.Server, ctrl, store, fb, log)
	return srv.Run(ctx)
}

// searchClientTimeout leaves headroom above the per-request timeout so
// retried calls are bounded by the request context, not the client.
func searchClientTimeout(cfg types.ServiceConfig) time.Duration {
	if cfg.Search.Timeout > 0 {
		return 3 * cfg.Search.Timeout
	}
	return 30 * time.Second
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")

	rootCmd.AddCommand(serveCmd)
}
