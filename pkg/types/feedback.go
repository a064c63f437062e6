// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// FeedbackMetrics holds the 1-5 quality ratings a user assigns to a
// generated response.
type FeedbackMetrics struct {
	Clarity          int `json:"clarity" yaml:"clarity"`
	Interpretation   int `json:"interpretation" yaml:"interpretation"`
	Relevance        int `json:"relevance" yaml:"relevance"`
	Depth            int `json:"depth" yaml:"depth"`
	CitationsQuality int `json:"citations_quality" yaml:"citations_quality"`
	Reasoning        int `json:"reasoning" yaml:"reasoning"`
}

// Feedback is one user rating of a generated response.
type Feedback struct {
	// FeedbackID is assigned by the store when empty on submission.
	FeedbackID string `json:"feedback_id" yaml:"feedback_id"`

	// RequestID links the feedback to the rated request, when known.
	RequestID string `json:"request_id,omitempty" yaml:"request_id,omitempty"`

	UserQuery    string          `json:"user_query" yaml:"user_query"`
	AIResponse   string          `json:"ai_response" yaml:"ai_response"`
	QuestionType string          `json:"question_type,omitempty" yaml:"question_type,omitempty"`
	Metrics      FeedbackMetrics `json:"metrics" yaml:"metrics"`

	Topics       []string `json:"topics,omitempty" yaml:"topics,omitempty"`
	StrengthTags []string `json:"strength_tags,omitempty" yaml:"strength_tags,omitempty"`
	WeaknessTags []string `json:"weakness_tags,omitempty" yaml:"weakness_tags,omitempty"`

	// CreatedAt is assigned by the store when zero on submission.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
