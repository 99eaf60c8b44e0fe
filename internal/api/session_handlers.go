package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/chaekjang/chaekjang-server/internal/domain"
	"github.com/chaekjang/chaekjang-server/internal/service"
)

func (s *Server) registerSessionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createSession",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions",
		Summary:     "Create a search session",
		Tags:        []string{"Search"},
	}, s.handleCreateSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{id}",
		Summary:     "Get the session's current search view",
		Tags:        []string{"Search"},
	}, s.handleGetSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteSession",
		Method:      http.MethodDelete,
		Path:        "/api/v1/sessions/{id}",
		Summary:     "Discard a search session",
		Tags:        []string{"Search"},
	}, s.handleDeleteSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "setSimpleQuery",
		Method:      http.MethodPut,
		Path:        "/api/v1/sessions/{id}/query",
		Summary:     "Type into the simple search box",
		Description: "The effective query updates after the input settles; poll the session view for results.",
		Tags:        []string{"Search"},
	}, s.handleSetSimpleQuery)

	huma.Register(s.api, huma.Operation{
		OperationID: "submitDetailedQuery",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/detailed-query",
		Summary:     "Submit the detailed search form",
		Tags:        []string{"Search"},
	}, s.handleSubmitDetailedQuery)

	huma.Register(s.api, huma.Operation{
		OperationID: "fetchMore",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/fetch-more",
		Summary:     "Fetch the next result page",
		Tags:        []string{"Search"},
	}, s.handleFetchMore)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleLike",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/likes/{isbn}",
		Summary:     "Toggle the liked state of a result",
		Tags:        []string{"Liked"},
	}, s.handleToggleLike)
}

// SessionOutput wraps a session view for Huma.
type SessionOutput struct {
	Body service.View
}

type sessionIDInput struct {
	ID string `path:"id" doc:"Search session ID"`
}

func (s *Server) handleCreateSession(ctx context.Context, _ *struct{}) (*SessionOutput, error) {
	session := s.services.Search.CreateSession(ctx)
	return &SessionOutput{Body: session.View()}, nil
}

func (s *Server) handleGetSession(_ context.Context, input *sessionIDInput) (*SessionOutput, error) {
	session, err := s.services.Search.Session(input.ID)
	if err != nil {
		return nil, huma.Error404NotFound("session not found", err)
	}
	return &SessionOutput{Body: session.View()}, nil
}

func (s *Server) handleDeleteSession(_ context.Context, input *sessionIDInput) (*struct{}, error) {
	s.services.Search.RemoveSession(input.ID)
	return &struct{}{}, nil
}

type simpleQueryInput struct {
	ID   string `path:"id" doc:"Search session ID"`
	Body struct {
		Text string `json:"text" doc:"Raw simple search box contents; empty clears the results"`
	}
}

func (s *Server) handleSetSimpleQuery(_ context.Context, input *simpleQueryInput) (*SessionOutput, error) {
	session, err := s.services.Search.Session(input.ID)
	if err != nil {
		return nil, huma.Error404NotFound("session not found", err)
	}

	session.SetSimpleInput(input.Body.Text)
	return &SessionOutput{Body: session.View()}, nil
}

type detailedQueryInput struct {
	ID   string `path:"id" doc:"Search session ID"`
	Body struct {
		Query  string `json:"query" minLength:"1" doc:"Detailed search text"`
		Target string `json:"target" enum:"title,publisher,person" doc:"Field to search"`
	}
}

func (s *Server) handleSubmitDetailedQuery(_ context.Context, input *detailedQueryInput) (*SessionOutput, error) {
	session, err := s.services.Search.Session(input.ID)
	if err != nil {
		return nil, huma.Error404NotFound("session not found", err)
	}

	target, err := domain.ParseTarget(input.Body.Target)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("invalid search target", err)
	}

	session.SubmitDetailed(input.Body.Query, target)
	return &SessionOutput{Body: session.View()}, nil
}

func (s *Server) handleFetchMore(ctx context.Context, input *sessionIDInput) (*SessionOutput, error) {
	session, err := s.services.Search.Session(input.ID)
	if err != nil {
		return nil, huma.Error404NotFound("session not found", err)
	}

	if err := session.FetchMore(ctx); err != nil {
		return nil, huma.Error502BadGateway("fetch next page", err)
	}
	return &SessionOutput{Body: session.View()}, nil
}

type toggleLikeInput struct {
	ID   string `path:"id" doc:"Search session ID"`
	ISBN string `path:"isbn" doc:"Book ISBN"`
}

// ToggleLikeResponse reports the post-toggle liked state.
type ToggleLikeResponse struct {
	ISBN  string `json:"isbn"`
	Liked bool   `json:"liked"`
}

// ToggleLikeOutput wraps the toggle response for Huma.
type ToggleLikeOutput struct {
	Body ToggleLikeResponse
}

func (s *Server) handleToggleLike(ctx context.Context, input *toggleLikeInput) (*ToggleLikeOutput, error) {
	session, err := s.services.Search.Session(input.ID)
	if err != nil {
		return nil, huma.Error404NotFound("session not found", err)
	}

	liked, err := session.ToggleLike(ctx, input.ISBN)
	if err != nil {
		return nil, huma.Error503ServiceUnavailable("persist like toggle", err)
	}
	return &ToggleLikeOutput{Body: ToggleLikeResponse{ISBN: input.ISBN, Liked: liked}}, nil
}
