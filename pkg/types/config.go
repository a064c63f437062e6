// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "answer-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the retrieval stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// EndpointURL is the search provider endpoint (OpenSearch lambda).
	EndpointURL string `json:"endpoint_url" yaml:"endpoint_url"`

	// MaxCandidates is how many raw hits to request from the provider
	// before truncation to the context cap (default 20).
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates"`
}

// AIConfig holds shared settings for components that call a Generative
// AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// GenerationConfig holds settings for the generation stage.
type GenerationConfig struct {
	AIConfig `yaml:",inline"`

	// Timeout bounds a single generation provider call.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// SummaryMaxTokens caps the summary completion length (default 300).
	SummaryMaxTokens int `json:"summary_max_tokens" yaml:"summary_max_tokens"`

	// AnswerMaxTokens caps the detailed answer length (default 800).
	AnswerMaxTokens int `json:"answer_max_tokens" yaml:"answer_max_tokens"`
}

// ContextStoreConfig holds settings for the in-memory context registry.
type ContextStoreConfig struct {
	// TTL is how long an idle context stays resolvable (default 10m).
	TTL time.Duration `json:"ttl" yaml:"ttl"`

	// SweepInterval controls the background expiry sweep. Zero disables
	// the background sweeper; expired entries are still removed lazily
	// on access. The serve command defaults this to 5m.
	SweepInterval time.Duration `json:"sweep_interval" yaml:"sweep_interval"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// ShutdownGrace bounds graceful drain on SIGINT/SIGTERM (default 10s).
	ShutdownGrace time.Duration `json:"shutdown_grace" yaml:"shutdown_grace"`
}

// FeedbackConfig holds settings for the feedback store.
type FeedbackConfig struct {
	// DBPath is the SQLite database path (default "feedback.db").
	DBPath string `json:"db_path" yaml:"db_path"`
}

// ServiceConfig groups all component configurations for the service.
type ServiceConfig struct {
	Search       SearchConfig       `json:"search" yaml:"search"`
	Generation   GenerationConfig   `json:"generation" yaml:"generation"`
	ContextStore ContextStoreConfig `json:"context_store" yaml:"context_store"`
	Server       ServerConfig       `json:"server" yaml:"server"`
	Feedback     FeedbackConfig     `json:"feedback" yaml:"feedback"`
}
