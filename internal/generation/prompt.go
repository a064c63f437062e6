// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/answer-engine/pkg/types"
)

// systemPrompt returns the grounding instruction shared by both modes.
// It forbids information outside the supplied passages, mandates a
// bracketed citation id after every factual sentence, and mandates the
// literal unsupported-claim phrase.
func systemPrompt() string {
	return "You are a scientific assistant. Use ONLY the provided passages. " +
		"If a claim is not directly supported, respond with 'Unknown based on provided sources.' " +
		"Cite every factual sentence with [ID] from the provided citations. Do not invent citations."
}

// buildPrompt renders the mode-specific user prompt over the frozen
// chunks. Citation ids are assigned by stored order, position 1..N.
func buildPrompt(rc types.ResponseContext, mode Mode) string {
	citations := formatCitations(rc.SelectedChunks)

	if mode == ModeSummary {
		return fmt.Sprintf(`Based on the following research passages, provide a concise 3-5 sentence summary of the findings related to: %s

Citations:
%s

Provide a brief overview that directly addresses the query using only the provided sources. Cite each claim with [ID].`, rc.Query, citations)
	}

	return fmt.Sprintf(`Based on the following research passages, provide a comprehensive answer to: %s

Citations:
%s

Provide a detailed analysis that:
1. Directly addresses the query
2. Cites specific findings using [ID] format
3. Notes any limitations or uncertainties
4. Uses only the provided sources

If information is not available in the provided sources, state "Unknown based on provided sources."`, rc.Query, citations)
}

// formatCitations renders each chunk as a numbered citation followed by
// its passage text.
func formatCitations(chunks []types.Chunk) string {
	var b strings.Builder
	for i, chunk := range chunks {
		fmt.Fprintf(&b, "[%d] %s", i+1, chunk.Title)
		if chunk.ExternalRef != "" {
			fmt.Fprintf(&b, " (PMID/DOI: %s)", chunk.ExternalRef)
		}
		if chunk.Section != "" {
			fmt.Fprintf(&b, " - %s", chunk.Section)
		}
		b.WriteString("\n")
		if chunk.Text != "" {
			fmt.Fprintf(&b, "%s\n", chunk.Text)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// InsufficientEvidenceTemplate is the canned text returned when a
// context holds no usable evidence or the provider failed past its
// retry. The wording differs per mode only in its closing clause.
func InsufficientEvidenceTemplate(mode Mode, query string) string {
	goal := "a detailed analysis"
	if mode == ModeSummary {
		goal = "a reliable summary"
	}
	return fmt.Sprintf(
		"Insufficient evidence: No relevant studies found for query '%s'. More research is needed to provide %s.",
		query, goal)
}

// citedIDPattern matches bracketed citation ids in generated text.
var citedIDPattern = regexp.MustCompile(`\[(\d+)\]`)

// CitedIDs returns the distinct citation ids referenced in generated
// text, in first-occurrence order. Generated ids are expected to be a
// subset of the positional ids assigned to the context's chunks; this
// helper exists so that property can be checked, not enforced.
func CitedIDs(text string) []int {
	seen := make(map[int]bool)
	var ids []int
	for _, m := range citedIDPattern.FindAllStringSubmatch(text, -1) {
		id, err := strconv.Atoi(m[1])
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
