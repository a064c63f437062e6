// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/answer-engine/internal/httputil"
	"github.com/pdiddy/answer-engine/pkg/types"
)

// OpenSearchProvider queries the OpenSearch-backed search endpoint
// (GET ?q=…&size=… returning {"hits": […]}). Hits are PMID-keyed
// PubMed records, but the provider makes no assumptions about their
// field names; records pass through untyped for the normalizer.
type OpenSearchProvider struct {
	Client *http.Client
	Cfg    types.SearchConfig
}

// Name returns the provider identifier.
func (p *OpenSearchProvider) Name() string { return "opensearch" }

// searchResponse is the envelope of the search endpoint.
type searchResponse struct {
	Hits  []map[string]any `json:"hits"`
	Total any              `json:"total"`
}

// Search runs the query and returns the raw hit records.
func (p *OpenSearchProvider) Search(ctx context.Context, query, queryType string, size int) ([]map[string]any, error) {
	if p.Cfg.EndpointURL == "" {
		return nil, fmt.Errorf("search endpoint not configured")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("size", strconv.Itoa(size))
	if queryType != "" {
		params.Set("type", queryType)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Cfg.EndpointURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.Cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search endpoint returned HTTP %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	return body.Hits, nil
}
