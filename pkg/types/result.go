// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// AskRequest is the body of POST /api/unified-search. WantSummary is a
// pointer so an absent field keeps the default of returning a summary.
type AskRequest struct {
	Query       string `json:"query"`
	QueryType   string `json:"query_type"`
	WantSummary *bool  `json:"want_summary,omitempty"`
}

// Citation is one entry of the citation list returned with a unified
// result. ID is the positional citation id assigned to the chunk within
// its context, the same id generated text references in brackets.
type Citation struct {
	ID          int     `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	ExternalRef string  `json:"pmid_or_doi,omitempty" yaml:"pmid_or_doi,omitempty"`
	Section     string  `json:"section,omitempty" yaml:"section,omitempty"`
	Score       float64 `json:"score" yaml:"score"`
	URL         string  `json:"url,omitempty" yaml:"url,omitempty"`
}

// UnifiedResult is the assembled payload for one handled query: both
// generated texts, the citation list, and per-stage latencies.
type UnifiedResult struct {
	Success   bool   `json:"success" yaml:"success"`
	RequestID string `json:"request_id" yaml:"request_id"`
	Query     string `json:"query" yaml:"query"`

	// Summary and Answer always carry usable text after a successful
	// retrieval, degrading to the insufficient-evidence template or the
	// provider-failure fallback rather than surfacing internal errors.
	Summary string `json:"summary" yaml:"summary"`
	Answer  string `json:"answer" yaml:"answer"`

	Citations []Citation `json:"citations" yaml:"citations"`

	RetrievalLatencyMs float64 `json:"retrieval_latency_ms" yaml:"retrieval_latency_ms"`
	SummaryLatencyMs   float64 `json:"summary_latency_ms" yaml:"summary_latency_ms"`
	AnswerLatencyMs    float64 `json:"answer_latency_ms" yaml:"answer_latency_ms"`

	TotalChunks       int `json:"total_chunks" yaml:"total_chunks"`
	ChunksUsedSummary int `json:"chunks_used_summary" yaml:"chunks_used_summary"`
	ChunksUsedAnswer  int `json:"chunks_used_answer" yaml:"chunks_used_answer"`

	// Error holds the failure reason when Success is false.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}
