// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the answer-engine service.
// See docs/ARCHITECTURE.md § Data Structures.
package types

import "time"

// Chunk is a single normalized evidence passage. Chunks are created once
// by normalization and never mutated afterwards.
type Chunk struct {
	// ID is unique within the owning context and stable for its lifetime.
	ID string `json:"id" yaml:"id"`

	// Title is the source paper title.
	Title string `json:"title" yaml:"title"`

	// ExternalRef is the PMID or DOI of the source, empty when unknown.
	ExternalRef string `json:"pmid_or_doi,omitempty" yaml:"pmid_or_doi,omitempty"`

	// Section labels the provenance of the text (e.g. "Abstract").
	Section string `json:"section,omitempty" yaml:"section,omitempty"`

	// Text is the truncated abstract or snippet the chunk carries.
	Text string `json:"text" yaml:"text"`

	// Score is the provider relevance score, used only for ordering.
	Score float64 `json:"score" yaml:"score"`

	// Year is the publication year, zero when it could not be parsed.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`
}

// ResponseContext is the frozen evidence set bound to one request. It is
// shared read-only between the two generation calls; once registered with
// the context store its chunk list is never added to, removed from, or
// reordered. A context with zero chunks is valid and signals that no
// evidence was found.
type ResponseContext struct {
	// RequestID is the opaque token callers use to re-resolve the context.
	RequestID string `json:"request_id" yaml:"request_id"`

	// Query is the original user text.
	Query string `json:"query" yaml:"query"`

	// QueryType is the mode tag supplied with the query (e.g. "research").
	QueryType string `json:"query_type" yaml:"query_type"`

	// SelectedChunks holds at most MaxContextChunks chunks ordered by
	// descending score, ties broken by arrival order.
	SelectedChunks []Chunk `json:"selected_chunks" yaml:"selected_chunks"`

	// CreatedAt is when the context was registered; expiry counts from here.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// MaxContextChunks caps the evidence set of a single context.
const MaxContextChunks = 12
