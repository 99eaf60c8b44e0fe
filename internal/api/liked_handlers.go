package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/chaekjang/chaekjang-server/internal/domain"
	"github.com/chaekjang/chaekjang-server/internal/search"
)

func (s *Server) registerLikedRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listLiked",
		Method:      http.MethodGet,
		Path:        "/api/v1/liked",
		Summary:     "List liked books",
		Tags:        []string{"Liked"},
	}, s.handleListLiked)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchLiked",
		Method:      http.MethodGet,
		Path:        "/api/v1/liked/search",
		Summary:     "Search within liked books",
		Description: "Full-text search over the local shelf; an empty query browses everything.",
		Tags:        []string{"Liked"},
	}, s.handleSearchLiked)
}

// LikedListResponse is the liked-books document as stored.
type LikedListResponse struct {
	ISBNs []string            `json:"isbns"`
	Books []domain.BookRecord `json:"books"`
}

// LikedListOutput wraps the liked list for Huma.
type LikedListOutput struct {
	Body LikedListResponse
}

func (s *Server) handleListLiked(ctx context.Context, _ *struct{}) (*LikedListOutput, error) {
	liked := s.services.Liked.List(ctx)
	return &LikedListOutput{Body: LikedListResponse{
		ISBNs: liked.ISBNs,
		Books: liked.Books,
	}}, nil
}

type searchLikedInput struct {
	Query  string `query:"query" doc:"Search text; empty browses the whole shelf"`
	Target string `query:"target" enum:",title,isbn,publisher,person" doc:"Field to search"`
	Sort   string `query:"sort" enum:",accuracy,latest,publish_time" doc:"Result order"`
	Limit  int    `query:"limit" minimum:"1" maximum:"100" default:"20"`
	Offset int    `query:"offset" minimum:"0" default:"0"`
}

// ShelfSearchOutput wraps shelf search results for Huma.
type ShelfSearchOutput struct {
	Body search.Result
}

func (s *Server) handleSearchLiked(ctx context.Context, input *searchLikedInput) (*ShelfSearchOutput, error) {
	target, err := domain.ParseTarget(input.Target)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("invalid search target", err)
	}
	sort, err := domain.ParseSort(input.Sort)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("invalid sort order", err)
	}

	result, err := s.services.Liked.SearchShelf(ctx, search.Params{
		Query:     input.Query,
		Target:    target,
		Sort:      sort,
		Limit:     input.Limit,
		Offset:    input.Offset,
		Highlight: true,
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("shelf search failed", err)
	}
	return &ShelfSearchOutput{Body: *result}, nil
}
