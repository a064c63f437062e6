// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/answer-engine/internal/contextstore"
	"github.com/pdiddy/answer-engine/internal/controller"
	"github.com/pdiddy/answer-engine/internal/generation"
	"github.com/pdiddy/answer-engine/internal/retrieval"
	"github.com/pdiddy/answer-engine/pkg/types"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question from the command line",
	Long: `Ask runs a single retrieval-then-generation pass and prints the summary,
the detailed answer, and the citation list. Output is human-readable by
default; use --json or --yaml for machine consumption.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := serviceConfig()
	if cfg.Search.EndpointURL == "" {
		return fmt.Errorf("search.endpoint_url is required")
	}

	query := strings.Join(args, " ")
	queryType, _ := cmd.Flags().GetString("type")

	llm, err := generation.NewOpenAIProvider(cfg.Generation)
	if err != nil {
		return err
	}

	// One-shot run: no sweeper, the process exits when done.
	cfg.ContextStore.SweepInterval = 0
	store := contextstore.New(cfg.ContextStore)
	defer store.Close()

	searchProvider := &retrieval.OpenSearchProvider{
		Client: &http.Client{Timeout: searchClientTimeout(cfg)},
		Cfg:    cfg.Search,
	}

	ret := retrieval.NewService(searchProvider, store, cfg.Search, os.Stderr)
	gen := generation.NewService(llm, store, cfg.Generation, os.Stderr)
	ctrl := controller.New(ret, gen, os.Stderr)

	result, err := ctrl.Handle(context.Background(), query, queryType)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	yamlOutput, _ := cmd.Flags().GetBool("yaml")
	switch {
	case jsonOutput:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case yamlOutput:
		out, err := yaml.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshaling result: %w", err)
		}
		_, err = os.Stdout.Write(out)
		return err
	default:
		printResult(result)
		return nil
	}
}

func printResult(res types.UnifiedResult) {
	fmt.Println("Summary")
	fmt.Println(strings.Repeat("-", 7))
	fmt.Println(res.Summary)
	fmt.Println()

	fmt.Println("Answer")
	fmt.Println(strings.Repeat("-", 6))
	fmt.Println(res.Answer)
	fmt.Println()

	if len(res.Citations) > 0 {
		fmt.Println("Citations")
		fmt.Println(strings.Repeat("-", 9))
		for _, c := range res.Citations {
			line := fmt.Sprintf("[%d] %s", c.ID, c.Title)
			if c.ExternalRef != "" {
				line += fmt.Sprintf(" (PMID/DOI: %s)", c.ExternalRef)
			}
			if c.Section != "" {
				line += " - " + c.Section
			}
			fmt.Println(line)
		}
		fmt.Println()
	}

	fmt.Printf("retrieval %.0fms, summary %.0fms, answer %.0fms, %d chunks\n",
		res.RetrievalLatencyMs, res.SummaryLatencyMs, res.AnswerLatencyMs, res.TotalChunks)
}

func init() {
	askCmd.Flags().String("type", "", "question type hint passed to retrieval (default research)")
	askCmd.Flags().Bool("json", false, "output the full result as JSON")
	askCmd.Flags().Bool("yaml", false, "output the full result as YAML")

	rootCmd.AddCommand(askCmd)
}
