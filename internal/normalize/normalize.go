// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize converts heterogeneous raw search-hit records into
// canonical evidence chunks. Field resolution follows an explicit,
// ordered precedence list per source field, so normalization is total
// over the provider shapes observed in production: unparsable fields
// degrade to their zero value instead of failing the record.
// See docs/ARCHITECTURE.md § Chunk Normalizer.
package normalize

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/answer-engine/pkg/types"
)

// ErrMalformedRecord reports a record that yields neither a title nor
// any passage text. Callers drop the record and continue the batch.
var ErrMalformedRecord = errors.New("malformed record")

// maxTextLen bounds chunk text length in runes. Longer abstracts are
// truncated, never rejected.
const maxTextLen = 1600

// Field precedence tables. Order matters: the first present, non-empty
// field wins. Providers disagree on spelling (pmid vs PMID vs
// pubmed_id), so every observed variant is listed.
var (
	titleFields   = []string{"title", "Title", "paper_title"}
	textFields    = []string{"abstract", "text_for_rerank", "summary", "full_text", "text", "snippet"}
	pmidFields    = []string{"pmid", "PMID", "pubmed_id", "pubmedId"}
	doiFields     = []string{"doi", "DOI"}
	urlFields     = []string{"url", "link", "source_url"}
	sectionFields = []string{"section", "source_section"}
	scoreFields   = []string{"score", "relevance_score", "rerank_score"}
	yearFields    = []string{"year", "publication_year", "publication_date"}
)

// pmidURLPattern extracts a PMID from an embedded PubMed URL, the last
// resort of external-ref resolution.
var pmidURLPattern = regexp.MustCompile(`pubmed\.ncbi\.nlm\.nih\.gov/(\d+)`)

// doiURLPattern extracts a DOI from a doi.org URL.
var doiURLPattern = regexp.MustCompile(`doi\.org/(10\.[^\s]+)`)

// yearPattern finds a plausible publication year inside a date string.
var yearPattern = regexp.MustCompile(`\b(1[89]\d{2}|20\d{2})\b`)

// Record converts one raw provider record into a Chunk. The chunk ID is
// left empty; the retrieval stage assigns positional ids after ranking.
// Returns ErrMalformedRecord when the record has neither title nor text.
func Record(raw map[string]any) (types.Chunk, error) {
	if raw == nil {
		return types.Chunk{}, ErrMalformedRecord
	}

	title := strings.TrimSpace(firstString(raw, titleFields))
	text := strings.TrimSpace(firstString(raw, textFields))
	if title == "" && text == "" {
		return types.Chunk{}, ErrMalformedRecord
	}

	section := firstString(raw, sectionFields)
	if section == "" {
		section = "Abstract"
	}

	return types.Chunk{
		Title:       title,
		ExternalRef: resolveExternalRef(raw),
		Section:     section,
		Text:        truncateText(text),
		Score:       parseScore(firstValue(raw, scoreFields)),
		Year:        parseYear(firstValue(raw, yearFields)),
	}, nil
}

// resolveExternalRef resolves the PMID-or-DOI reference with fixed
// precedence: explicit PMID field (and its spellings), then DOI, then
// extraction from an embedded URL, then empty.
func resolveExternalRef(raw map[string]any) string {
	if pmid := strings.TrimSpace(firstString(raw, pmidFields)); pmid != "" {
		return pmid
	}
	if doi := strings.TrimSpace(firstString(raw, doiFields)); doi != "" {
		return doi
	}
	url := firstString(raw, urlFields)
	if m := pmidURLPattern.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	if m := doiURLPattern.FindStringSubmatch(url); m != nil {
		return strings.TrimRight(m[1], "/")
	}
	return ""
}

// firstString returns the first field in fields present in raw as a
// non-empty string. Numeric values are formatted; other types are
// skipped.
func firstString(raw map[string]any, fields []string) string {
	for _, f := range fields {
		switch v := raw[f].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		}
	}
	return ""
}

// firstValue returns the first field in fields present in raw with a
// non-nil value.
func firstValue(raw map[string]any, fields []string) any {
	for _, f := range fields {
		if v, ok := raw[f]; ok && v != nil {
			return v
		}
	}
	return nil
}

// parseScore parses a relevance score defensively. Unparsable values
// become zero, never an error.
func parseScore(v any) float64 {
	switch s := v.(type) {
	case float64:
		return s
	case int:
		return float64(s)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return 0
}

// parseYear parses a publication year defensively. Accepts bare years,
// numeric values, and date strings ("2023-05-01"); anything else
// becomes zero.
func parseYear(v any) int {
	switch y := v.(type) {
	case int:
		if plausibleYear(y) {
			return y
		}
	case float64:
		n := int(y)
		if float64(n) == y && plausibleYear(n) {
			return n
		}
	case string:
		if m := yearPattern.FindString(y); m != "" {
			n, _ := strconv.Atoi(m)
			return n
		}
	}
	return 0
}

func plausibleYear(y int) bool {
	return y >= 1800 && y <= 2100
}

// truncateText caps text at maxTextLen runes without splitting a rune.
func truncateText(text string) string {
	if utf8.RuneCountInString(text) <= maxTextLen {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxTextLen])
}
