// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generation

import (
	"context"
	"sync/atomic"
)

// MockProvider is a deterministic Provider for tests. It records call
// counts and the prompts it received, and can fail a configured number
// of leading attempts before succeeding.
type MockProvider struct {
	// Response is the text returned on success.
	Response string

	// Err, when set, is returned for the first FailFirst attempts, or
	// for every attempt when FailFirst is zero.
	Err       error
	FailFirst int

	calls          atomic.Int64
	lastSystem     atomic.Value
	lastUserPrompt atomic.Value
}

// Complete implements Provider.
func (m *MockProvider) Complete(ctx context.Context, systemPrompt, userPrompt string, _ int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	n := m.calls.Add(1)
	m.lastSystem.Store(systemPrompt)
	m.lastUserPrompt.Store(userPrompt)

	if m.Err != nil && (m.FailFirst == 0 || n <= int64(m.FailFirst)) {
		return "", m.Err
	}
	return m.Response, nil
}

// Calls returns how many times Complete was invoked.
func (m *MockProvider) Calls() int { return int(m.calls.Load()) }

// LastUserPrompt returns the most recent user prompt, or "".
func (m *MockProvider) LastUserPrompt() string {
	if v, ok := m.lastUserPrompt.Load().(string); ok {
		return v
	}
	return ""
}

// LastSystemPrompt returns the most recent system prompt, or "".
func (m *MockProvider) LastSystemPrompt() string {
	if v, ok := m.lastSystem.Load().(string); ok {
		return v
	}
	return ""
}
