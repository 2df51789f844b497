package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"roomchat/internal/models"
)

// AuditorMock records room lifecycle audit calls.
type AuditorMock struct {
	mock.Mock
}

func (m *AuditorMock) Emit(ctx context.Context, level, text, requestID string, actor *string) {
	m.Called(ctx, level, text, requestID, actor)
}

// LobbyMock stands in for the dispatch engine when only the room list is read.
type LobbyMock struct {
	mock.Mock
}

func (m *LobbyMock) Snapshot(ctx context.Context) ([]models.RoomSummary, error) {
	args := m.Called(ctx)
	var rooms []models.RoomSummary
	if val := args.Get(0); val != nil {
		rooms = val.([]models.RoomSummary)
	}
	return rooms, args.Error(1)
}
