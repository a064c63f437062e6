// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package controller sequences retrieval before generation, fans the
// two generation calls out concurrently against the same frozen
// context, joins them with per-branch failure isolation, and assembles
// the unified payload. This is the only place in the service with real
// concurrency coordination; the generation branches share nothing
// mutable, so no lock sits between them.
// See docs/ARCHITECTURE.md § Unified Controller.
package controller

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/pdiddy/answer-engine/internal/generation"
	"github.com/pdiddy/answer-engine/internal/retrieval"
	"github.com/pdiddy/answer-engine/pkg/types"
)

// defaultQueryType tags queries that arrive without a mode.
const defaultQueryType = "research"

// Controller orchestrates one request end to end.
type Controller struct {
	retrieval  *retrieval.Service
	generation *generation.Service
	log        io.Writer
}

// New wires a controller over the two stage services.
func New(r *retrieval.Service, g *generation.Service, log io.Writer) *Controller {
	if log == nil {
		log = io.Discard
	}
	return &Controller{retrieval: r, generation: g, log: log}
}

// Handle answers one query. Retrieval runs to completion first;
// generation never starts until the context id exists. The two
// generation calls then run concurrently, each re-resolving the context
// through the store, and are joined independently: a failed branch
// degrades to templated text without touching its sibling. Only a
// retrieval fault or cancellation fails the whole request.
func (c *Controller) Handle(ctx context.Context, query, queryType string) (types.UnifiedResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return types.UnifiedResult{}, fmt.Errorf("query is empty")
	}
	if queryType == "" {
		queryType = defaultQueryType
	}

	res, err := c.retrieval.Retrieve(ctx, query, queryType)
	if err != nil {
		return types.UnifiedResult{
			Query: query,
			Error: err.Error(),
		}, err
	}

	summary, answer, err := c.fanOut(ctx, res.RequestID, query)
	if err != nil {
		return types.UnifiedResult{}, err
	}

	return types.UnifiedResult{
		Success:            true,
		RequestID:          res.RequestID,
		Query:              query,
		Summary:            summary.Text,
		Answer:             answer.Text,
		Citations:          buildCitations(res.SelectedChunks),
		RetrievalLatencyMs: res.RetrievalLatencyMs,
		SummaryLatencyMs:   summary.LatencyMs,
		AnswerLatencyMs:    answer.LatencyMs,
		TotalChunks:        len(res.SelectedChunks),
		ChunksUsedSummary:  summary.ChunksUsed,
		ChunksUsedAnswer:   answer.ChunksUsed,
	}, nil
}

// fanOut runs the two generation branches concurrently and joins them.
// Both branches share ctx, so one cancellation signal reaches both; a
// cancelled request returns ctx.Err() and no payload.
func (c *Controller) fanOut(ctx context.Context, requestID, query string) (summary, answer generation.Outcome, err error) {
	type branchResult struct {
		mode generation.Mode
		out  generation.Outcome
		err  error
	}

	modes := []generation.Mode{generation.ModeSummary, generation.ModeDetailedAnswer}
	ch := make(chan branchResult, len(modes))
	var wg sync.WaitGroup

	for _, mode := range modes {
		wg.Add(1)
		go func(mode generation.Mode) {
			defer wg.Done()
			out, err := c.generation.Generate(ctx, requestID, mode)
			ch <- branchResult{mode: mode, out: out, err: err}
		}(mode)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var cancelled error
	for br := range ch {
		if br.err != nil {
			if ctx.Err() != nil {
				cancelled = ctx.Err()
				continue
			}
			// Branch-level fault (e.g. the context expired between
			// creation and this read). Isolate it: substitute the
			// fallback template and let the sibling finish.
			fmt.Fprintf(c.log, "warning: %s branch failed: %v\n", br.mode, br.err)
			br.out = generation.Outcome{
				Status: generation.StatusProviderFailedFallback,
				Text:   generation.InsufficientEvidenceTemplate(br.mode, query),
			}
		}
		if br.mode == generation.ModeSummary {
			summary = br.out
		} else {
			answer = br.out
		}
	}

	if cancelled != nil {
		return generation.Outcome{}, generation.Outcome{}, cancelled
	}
	return summary, answer, nil
}

// pmidPattern recognizes a bare PMID; anything else with a reference is
// treated as a DOI.
var pmidPattern = regexp.MustCompile(`^\d+$`)

// buildCitations renders the chunk list as the citation payload, ids
// assigned by stored order.
func buildCitations(chunks []types.Chunk) []types.Citation {
	citations := make([]types.Citation, 0, len(chunks))
	for i, chunk := range chunks {
		citations = append(citations, types.Citation{
			ID:          i + 1,
			Title:       chunk.Title,
			ExternalRef: chunk.ExternalRef,
			Section:     chunk.Section,
			Score:       chunk.Score,
			URL:         referenceURL(chunk.ExternalRef),
		})
	}
	return citations
}

// referenceURL builds a PubMed or DOI link from an external reference,
// or "" when there is none.
func referenceURL(ref string) string {
	switch {
	case ref == "":
		return ""
	case pmidPattern.MatchString(ref):
		return fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", ref)
	default:
		return fmt.Sprintf("https://doi.org/%s", ref)
	}
}
