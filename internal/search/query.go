package search

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/chaekjang/chaekjang-server/internal/domain"
)

// Params configures a shelf search. Target and Sort carry the same
// meaning as in provider searches so the two surfaces behave alike.
type Params struct {
	Query  string
	Target domain.SearchTarget
	Sort   domain.SearchSort

	Limit  int
	Offset int

	Highlight bool
}

// DefaultParams returns sensible defaults.
func DefaultParams() Params {
	return Params{
		Limit:     20,
		Offset:    0,
		Sort:      domain.SortAccuracy,
		Highlight: true,
	}
}

// Result represents shelf search results.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit is a single shelf search result.
type Hit struct {
	ISBN       string            `json:"isbn"`
	Score      float64           `json:"score"`
	Title      string            `json:"title"`
	Authors    string            `json:"authors,omitempty"`
	Publisher  string            `json:"publisher,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search executes a search over the liked-books shelf.
// An empty query matches the whole shelf, which lets the same endpoint
// serve both "search my shelf" and "browse my shelf sorted".
func (s *LikedIndex) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = DefaultParams().Limit
	}

	searchQuery := buildShelfQuery(params)
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	addSorting(searchRequest, params.Sort)

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("title")
		searchRequest.Highlight.AddField("authors")
		searchRequest.Highlight.AddField("publisher")
	}

	searchRequest.Fields = []string{"isbn", "title", "authors", "publisher"}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute shelf search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		shelfHit := Hit{
			ISBN:  hit.ID,
			Score: hit.Score,
		}
		if t, ok := hit.Fields["title"].(string); ok {
			shelfHit.Title = t
		}
		if a, ok := hit.Fields["authors"].(string); ok {
			shelfHit.Authors = a
		}
		if p, ok := hit.Fields["publisher"].(string); ok {
			shelfHit.Publisher = p
		}
		if len(hit.Fragments) > 0 {
			shelfHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					shelfHit.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, shelfHit)
	}

	return result, nil
}

// buildShelfQuery constructs the Bleve query from params. The target
// scopes which fields are matched, mirroring provider search targets.
func buildShelfQuery(params Params) query.Query {
	if params.Query == "" {
		return bleve.NewMatchAllQuery()
	}

	switch params.Target {
	case domain.TargetISBN:
		// Exact keyword match, no analysis.
		tq := bleve.NewTermQuery(params.Query)
		tq.SetField("isbn")
		return tq

	case domain.TargetTitle:
		mq := bleve.NewMatchQuery(params.Query)
		mq.SetField("title")
		return mq

	case domain.TargetPublisher:
		mq := bleve.NewMatchQuery(params.Query)
		mq.SetField("publisher")
		return mq

	case domain.TargetPerson:
		authorMatch := bleve.NewMatchQuery(params.Query)
		authorMatch.SetField("authors")
		translatorMatch := bleve.NewMatchQuery(params.Query)
		translatorMatch.SetField("translators")
		return bleve.NewDisjunctionQuery(authorMatch, translatorMatch)

	default:
		// No target: match any field, title weighted highest.
		titleMatch := bleve.NewMatchQuery(params.Query)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)

		authorMatch := bleve.NewMatchQuery(params.Query)
		authorMatch.SetField("authors")
		authorMatch.SetBoost(2.0)

		translatorMatch := bleve.NewMatchQuery(params.Query)
		translatorMatch.SetField("translators")

		publisherMatch := bleve.NewMatchQuery(params.Query)
		publisherMatch.SetField("publisher")

		contentsMatch := bleve.NewMatchQuery(params.Query)
		contentsMatch.SetField("contents")
		contentsMatch.SetBoost(0.5)

		return bleve.NewDisjunctionQuery(
			titleMatch, authorMatch, translatorMatch, publisherMatch, contentsMatch,
		)
	}
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, sort domain.SearchSort) {
	switch sort {
	case domain.SortLatest, domain.SortPublishTime:
		req.SortBy([]string{"-published_at", "-_score"})
	default:
		// Accuracy (score) is the default.
		req.SortBy([]string{"-_score"})
	}
}
