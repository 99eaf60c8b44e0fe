package kakao

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/chaekjang/chaekjang-server/internal/domain"
	"github.com/chaekjang/chaekjang-server/internal/errors"
)

// Search fetches one page of book results for the query.
// Pages are 1-indexed; size falls back to DefaultPageSize when non-positive.
func (c *Client) Search(ctx context.Context, query domain.SearchQuery, page, size int) (*domain.SearchPage, error) {
	if !query.Active() {
		return nil, errors.Validation("search query text is empty")
	}
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	if c.apiKey == "" {
		// Logged once, request still attempted (it will fail upstream).
		c.warnMissingKey.Do(func() {
			c.logger.Error("kakao REST API key is not configured, search will fail upstream",
				"error", errors.Config("KAKAO_REST_API_KEY is required"),
			)
		})
	}

	// Build search URL. Optional params are omitted when unset, matching
	// the provider's defaults.
	params := url.Values{}
	params.Set("query", query.Text)
	if query.Sort != "" {
		params.Set("sort", string(query.Sort))
	}
	if query.Target != domain.TargetNone {
		params.Set("target", string(query.Target))
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(size))

	searchURL := c.baseURL + "?" + params.Encode()

	c.logger.Debug("searching kakao books",
		"query", query.Text,
		"target", string(query.Target),
		"page", page,
		"size", size,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Upstream("book search provider unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Upstream(
			fmt.Sprintf("book search failed: status %d", resp.StatusCode), nil,
		)
	}

	var searchResp searchResponse
	if err := json.UnmarshalRead(resp.Body, &searchResp); err != nil {
		return nil, errors.Upstream("parse search response", err)
	}

	items := make([]domain.BookRecord, 0, len(searchResp.Documents))
	for i := range searchResp.Documents {
		items = append(items, searchResp.Documents[i].ToDomain())
	}

	c.logger.Debug("kakao search results",
		"query", query.Text,
		"page", page,
		"count", len(items),
		"total_count", searchResp.Meta.TotalCount,
		"is_end", searchResp.Meta.IsEnd,
	)

	return &domain.SearchPage{
		Items:         items,
		TotalCount:    searchResp.Meta.TotalCount,
		PageableCount: searchResp.Meta.PageableCount,
		IsLast:        searchResp.Meta.IsEnd,
	}, nil
}
