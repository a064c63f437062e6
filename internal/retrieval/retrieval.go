// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieval executes a search against the configured provider,
// normalizes the hits into chunks, and registers the frozen evidence
// set with the context store. It is the only stage that creates
// contexts; generation only ever reads them.
// See docs/ARCHITECTURE.md § Retrieval Service.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pdiddy/answer-engine/internal/contextstore"
	"github.com/pdiddy/answer-engine/internal/normalize"
	"github.com/pdiddy/answer-engine/pkg/types"
)

// ErrRetrieval reports a provider fault (network error, timeout, bad
// response) during retrieval. It is fatal to the whole request: no
// context is created, so generation has nothing to consume.
var ErrRetrieval = errors.New("retrieval failed")

// Provider executes a raw search against an external index. Each hit is
// an untyped record; the normalizer owns interpreting its fields.
type Provider interface {
	Name() string
	Search(ctx context.Context, query, queryType string, size int) ([]map[string]any, error)
}

// Result is the outcome of a successful retrieval.
type Result struct {
	RequestID          string
	SelectedChunks     []types.Chunk
	RetrievalLatencyMs float64
}

// Service runs retrieval and context creation for incoming queries.
type Service struct {
	provider Provider
	store    *contextstore.Store
	cfg      types.SearchConfig
	log      io.Writer
}

// NewService wires a retrieval service. Progress and per-record skip
// notices are written to log.
func NewService(provider Provider, store *contextstore.Store, cfg types.SearchConfig, log io.Writer) *Service {
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 20
	}
	if log == nil {
		log = io.Discard
	}
	return &Service{provider: provider, store: store, cfg: cfg, log: log}
}

// Retrieve searches for evidence, normalizes and ranks it, and creates
// the response context. A provider failure returns ErrRetrieval and
// creates nothing. An empty result set is not an error: it yields a
// valid zero-chunk context signalling insufficient evidence downstream.
func (s *Service) Retrieve(ctx context.Context, query, queryType string) (Result, error) {
	start := time.Now()

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	hits, err := s.provider.Search(ctx, query, queryType, s.cfg.MaxCandidates)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %v", ErrRetrieval, s.provider.Name(), err)
	}

	chunks := s.normalizeHits(hits)

	// Rank by descending score; sort.SliceStable keeps arrival order
	// for ties. Positional ids are assigned after ranking so chunk id
	// and citation id agree.
	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Score > chunks[j].Score
	})
	if len(chunks) > types.MaxContextChunks {
		chunks = chunks[:types.MaxContextChunks]
	}
	for i := range chunks {
		chunks[i].ID = fmt.Sprintf("%d", i+1)
	}

	requestID := s.store.Create(query, queryType, chunks)

	return Result{
		RequestID:          requestID,
		SelectedChunks:     chunks,
		RetrievalLatencyMs: float64(time.Since(start)) / float64(time.Millisecond),
	}, nil
}

// normalizeHits converts raw hits to chunks, dropping individual
// malformed records rather than failing the batch.
func (s *Service) normalizeHits(hits []map[string]any) []types.Chunk {
	chunks := make([]types.Chunk, 0, len(hits))
	for i, hit := range hits {
		chunk, err := normalize.Record(hit)
		if err != nil {
			fmt.Fprintf(s.log, "warning: skipping malformed hit %d: %v\n", i, err)
			continue
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}
