package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"roomchat/internal/middleware"
	"roomchat/internal/mocks"
	"roomchat/internal/models"
)

func setupRouter(lobby Lobby, auditor Auditor, debug bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/rooms", NewRoomHandler(lobby).ListRooms)
	r.GET("/health", Health)
	RegisterDebugRoutes(r, auditor, debug)
	return r
}

func TestListRoomsSuccess(t *testing.T) {
	lobby := new(mocks.LobbyMock)
	lobby.On("Snapshot", mock.Anything).Return([]models.RoomSummary{
		{Name: "general", UserCount: 2},
		{Name: "secret", IsLocked: true},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	rec := httptest.NewRecorder()
	setupRouter(lobby, nil, false).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"rooms":[
		{"name":"general","userCount":2,"isLocked":false},
		{"name":"secret","userCount":0,"isLocked":true}
	]}`, rec.Body.String())
	lobby.AssertExpectations(t)
}

func TestListRoomsEmpty(t *testing.T) {
	lobby := new(mocks.LobbyMock)
	lobby.On("Snapshot", mock.Anything).Return(nil, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	rec := httptest.NewRecorder()
	setupRouter(lobby, nil, false).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"rooms":[]}`, rec.Body.String())
}

func TestListRoomsEngineError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "stopped", err: assert.AnError, status: http.StatusServiceUnavailable},
		{name: "timeout", err: context.DeadlineExceeded, status: http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lobby := new(mocks.LobbyMock)
			lobby.On("Snapshot", mock.Anything).Return(nil, tt.err).Once()

			req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
			rec := httptest.NewRecorder()
			setupRouter(lobby, nil, false).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			var resp map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, "room list unavailable", resp["error"])
		})
	}
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	setupRouter(new(mocks.LobbyMock), nil, false).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestDebugRoutesDisabled(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/debug/audit-test", nil)
	rec := httptest.NewRecorder()
	setupRouter(new(mocks.LobbyMock), new(mocks.AuditorMock), false).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDebugAuditEmits(t *testing.T) {
	auditor := new(mocks.AuditorMock)
	actor := "ops"
	auditor.On("Emit", mock.Anything, "INFO", "audit test", "req-1", &actor).Once()

	req := httptest.NewRequest(http.MethodGet, "/debug/audit-test", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-1")
	req.Header.Set("X-Actor", "ops")
	rec := httptest.NewRecorder()
	setupRouter(new(mocks.LobbyMock), auditor, true).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	auditor.AssertExpectations(t)
}

func TestDebugAuditWithoutEmitter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/debug/audit-test", nil)
	rec := httptest.NewRecorder()
	setupRouter(new(mocks.LobbyMock), nil, true).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
