// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generation produces citation-grounded text from a registered
// evidence context. Each call re-resolves its context through the store
// by request id, builds a grounded prompt over the frozen chunks, and
// invokes the external completion provider. Evidence problems and
// provider faults never escape as errors: they degrade into templated
// text, so every call after a successful retrieval yields a usable
// payload. Only an unknown or expired request id is a caller-visible
// error.
// See docs/ARCHITECTURE.md § Generation Service.
package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/answer-engine/internal/contextstore"
	"github.com/pdiddy/answer-engine/pkg/types"
)

// ErrProvider reports a completion provider fault. It stays internal to
// this package: after one retry the service absorbs it into a fallback
// outcome instead of returning it.
var ErrProvider = errors.New("generation provider failed")

// Mode selects which of the two generation calls to perform.
type Mode string

const (
	ModeSummary        Mode = "summary"
	ModeDetailedAnswer Mode = "detailed_answer"
)

// Status is the terminal state of one generation call. Every status
// carries usable text; the distinction exists for callers that report
// degradation.
type Status string

const (
	// StatusSuccess means the provider returned grounded text.
	StatusSuccess Status = "success"

	// StatusInsufficientEvidence means the context held zero chunks and
	// the provider was never invoked.
	StatusInsufficientEvidence Status = "insufficient_evidence"

	// StatusProviderFailedFallback means the provider failed twice and
	// the templated fallback text was substituted.
	StatusProviderFailedFallback Status = "provider_failed_fallback"
)

// Provider is the external completion collaborator. Implementations
// must be safe for concurrent use: the two generation branches of one
// request may call Complete at the same time.
type Provider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// Outcome is the tagged result of one generation call.
type Outcome struct {
	Status     Status
	Text       string
	ChunksUsed int
	LatencyMs  float64
}

// Service generates summary and detailed-answer text for registered
// contexts.
type Service struct {
	provider Provider
	store    *contextstore.Store
	cfg      types.GenerationConfig
	log      io.Writer
}

// NewService wires a generation service.
func NewService(provider Provider, store *contextstore.Store, cfg types.GenerationConfig, log io.Writer) *Service {
	if cfg.SummaryMaxTokens <= 0 {
		cfg.SummaryMaxTokens = 300
	}
	if cfg.AnswerMaxTokens <= 0 {
		cfg.AnswerMaxTokens = 800
	}
	if log == nil {
		log = io.Discard
	}
	return &Service{provider: provider, store: store, cfg: cfg, log: log}
}

// Generate produces text for the given mode from the context registered
// under requestID.
//
// An unknown or expired requestID returns contextstore.ErrContextNotFound.
// A zero-chunk context short-circuits to the insufficient-evidence
// template without touching the provider. A provider fault is retried
// once with identical input, then absorbed into the fallback template.
// Context cancellation returns promptly with ctx.Err() and no outcome.
func (s *Service) Generate(ctx context.Context, requestID string, mode Mode) (Outcome, error) {
	start := time.Now()

	rc, err := s.store.Get(requestID)
	if err != nil {
		return Outcome{}, fmt.Errorf("resolving context %s: %w", requestID, err)
	}

	if len(rc.SelectedChunks) == 0 {
		return Outcome{
			Status:    StatusInsufficientEvidence,
			Text:      InsufficientEvidenceTemplate(mode, rc.Query),
			LatencyMs: sinceMs(start),
		}, nil
	}

	system := systemPrompt()
	user := buildPrompt(rc, mode)

	text, err := s.complete(ctx, system, user, mode)
	if err != nil {
		if ctx.Err() != nil {
			// Cancelled mid-flight: no payload, no fallback.
			return Outcome{}, ctx.Err()
		}
		fmt.Fprintf(s.log, "warning: %s generation fell back after retry: %v\n", mode, err)
		return Outcome{
			Status:    StatusProviderFailedFallback,
			Text:      InsufficientEvidenceTemplate(mode, rc.Query),
			LatencyMs: sinceMs(start),
		}, nil
	}

	return Outcome{
		Status:     StatusSuccess,
		Text:       text,
		ChunksUsed: len(rc.SelectedChunks),
		LatencyMs:  sinceMs(start),
	}, nil
}

// complete invokes the provider with a per-attempt timeout, retrying
// once with identical input. Empty completions count as failures.
func (s *Service) complete(ctx context.Context, system, user string, mode Mode) (string, error) {
	maxTokens := s.cfg.AnswerMaxTokens
	if mode == ModeSummary {
		maxTokens = s.cfg.SummaryMaxTokens
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		attemptCtx := ctx
		if s.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
			defer cancel()
		}

		text, err := s.provider.Complete(attemptCtx, system, user, maxTokens)
		if err == nil && strings.TrimSpace(text) == "" {
			err = fmt.Errorf("%w: empty completion", ErrProvider)
		}
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("%w: %v", ErrProvider, lastErr)
}

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
