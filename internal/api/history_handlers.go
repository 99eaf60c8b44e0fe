package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/chaekjang/chaekjang-server/internal/domain"
)

func (s *Server) registerHistoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listHistory",
		Method:      http.MethodGet,
		Path:        "/api/v1/history",
		Summary:     "List recorded searches, newest first",
		Tags:        []string{"History"},
	}, s.handleListHistory)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteHistoryEntry",
		Method:      http.MethodDelete,
		Path:        "/api/v1/history/{timestamp}",
		Summary:     "Delete one recorded search",
		Tags:        []string{"History"},
	}, s.handleDeleteHistoryEntry)
}

// HistoryListResponse holds the recorded searches.
type HistoryListResponse struct {
	Items []domain.SearchHistoryEntry `json:"items"`
}

// HistoryListOutput wraps the history list for Huma.
type HistoryListOutput struct {
	Body HistoryListResponse
}

func (s *Server) handleListHistory(ctx context.Context, _ *struct{}) (*HistoryListOutput, error) {
	return &HistoryListOutput{Body: HistoryListResponse{
		Items: s.services.History.List(ctx),
	}}, nil
}

type deleteHistoryInput struct {
	Timestamp int64 `path:"timestamp" doc:"Entry timestamp in epoch milliseconds"`
}

func (s *Server) handleDeleteHistoryEntry(ctx context.Context, input *deleteHistoryInput) (*struct{}, error) {
	if err := s.services.History.Remove(ctx, input.Timestamp); err != nil {
		return nil, huma.Error404NotFound("history entry not found", err)
	}
	return &struct{}{}, nil
}
