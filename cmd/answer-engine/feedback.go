// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/answer-engine/internal/feedback"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Inspect collected response feedback",
	Long: `Feedback lists user ratings collected through the API, newest first.
Ratings are stored in a local SQLite database alongside the service.`,
	RunE: runFeedbackList,
}

func runFeedbackList(cmd *cobra.Command, args []string) error {
	cfg := serviceConfig()
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := feedback.NewStore(cfg.Feedback)
	if err != nil {
		return err
	}
	defer store.Close()

	items, err := store.List(context.Background(), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	if len(items) == 0 {
		fmt.Println("No feedback recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-36s  %-40s  %s\n", "Created", "Request", "Query", "Ratings")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
	for _, fb := range items {
		query := fb.UserQuery
		if len(query) > 40 {
			query = query[:37] + "..."
		}
		m := fb.Metrics
		ratings := fmt.Sprintf("clarity=%d relevance=%d depth=%d citations=%d",
			m.Clarity, m.Relevance, m.Depth, m.CitationsQuality)
		fmt.Fprintf(os.Stdout, "%-20s  %-36s  %-40s  %s\n",
			fb.CreatedAt.Format("2006-01-02 15:04:05"), fb.RequestID, query, ratings)
	}
	fmt.Fprintf(os.Stdout, "\n%d records\n", len(items))
	return nil
}

func init() {
	feedbackCmd.Flags().Int("limit", 20, "maximum records to list")
	feedbackCmd.Flags().Bool("json", false, "output records as JSON")

	rootCmd.AddCommand(feedbackCmd)
}
