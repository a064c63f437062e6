package generation

import (
	"strings"
	"testing"

	"github.com/pdiddy/answer-engine/pkg/types"
)

func TestFormatCitationsAssignsPositionalIDs(t *testing.T) {
	chunks := []types.Chunk{
		{ID: "1", Title: "First", ExternalRef: "111", Section: "Abstract", Text: "a"},
		{ID: "2", Title: "Second", Section: "Results", Text: "b"},
		{ID: "3", Title: "Third", Text: ""},
	}

	got := formatCitations(chunks)
	lines := strings.Split(got, "\n")

	if lines[0] != "[1] First (PMID/DOI: 111) - Abstract" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "a" {
		t.Errorf("line 1 = %q", lines[1])
	}
	// No external ref: the PMID/DOI parenthetical is omitted entirely.
	if lines[2] != "[2] Second - Results" {
		t.Errorf("line 2 = %q", lines[2])
	}
	// No text: no blank passage line follows.
	if lines[len(lines)-1] != "[3] Third" {
		t.Errorf("last line = %q", lines[len(lines)-1])
	}
}

func TestInsufficientEvidenceTemplatePerMode(t *testing.T) {
	summary := InsufficientEvidenceTemplate(ModeSummary, "q1")
	answer := InsufficientEvidenceTemplate(ModeDetailedAnswer, "q1")

	if !strings.Contains(summary, "a reliable summary") {
		t.Errorf("summary template = %q", summary)
	}
	if !strings.Contains(answer, "a detailed analysis") {
		t.Errorf("answer template = %q", answer)
	}
	if !strings.Contains(summary, "'q1'") || !strings.Contains(answer, "'q1'") {
		t.Error("templates must embed the query")
	}
}

func TestCitedIDs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []int
	}{
		{"none", "no citations here", nil},
		{"single", "claim [1].", []int{1}},
		{"ordered distinct", "a [2] b [1] c [2] d [3]", []int{2, 1, 3}},
		{"ignores non-numeric brackets", "see [Smith2020] and [4]", []int{4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CitedIDs(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("CitedIDs() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("CitedIDs() = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}
