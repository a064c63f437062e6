// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/viper"

	"github.com/pdiddy/answer-engine/pkg/types"
)

// serviceConfig assembles the full service configuration from viper.
// Components apply their own defaults for anything left zero here; only
// the AI key falls back to the loaded secrets.
func serviceConfig() types.ServiceConfig {
	cfg := types.ServiceConfig{
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: viper.GetString("search.user_agent"),
			},
			EndpointURL:   viper.GetString("search.endpoint_url"),
			MaxCandidates: viper.GetInt("search.max_candidates"),
		},
		Generation: types.GenerationConfig{
			AIConfig: types.AIConfig{
				Model:  viper.GetString("generation.model"),
				APIKey: secretDefault("openai-api-key", viper.GetString("generation.api_key")),
			},
			Timeout:          viper.GetDuration("generation.timeout"),
			SummaryMaxTokens: viper.GetInt("generation.summary_max_tokens"),
			AnswerMaxTokens:  viper.GetInt("generation.answer_max_tokens"),
		},
		ContextStore: types.ContextStoreConfig{
			TTL:           viper.GetDuration("context_store.ttl"),
			SweepInterval: viper.GetDuration("context_store.sweep_interval"),
		},
		Server: types.ServerConfig{
			Addr:          viper.GetString("server.addr"),
			ShutdownGrace: viper.GetDuration("server.shutdown_grace"),
		},
		Feedback: types.FeedbackConfig{
			DBPath: viper.GetString("feedback.db_path"),
		},
	}

	if cfg.Search.UserAgent == "" {
		cfg.Search.UserAgent = "answer-engine/" + version
	}
	return cfg
}
