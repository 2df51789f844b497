package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindCreatesEmptySession(t *testing.T) {
	table := NewTable()
	table.Bind("c1")

	s, ok := table.Get("c1")
	require.True(t, ok)
	assert.Equal(t, Session{}, s)
	assert.Equal(t, StateAnonymous, s.State())
}

func TestGetAbsentIsDistinctFromEmpty(t *testing.T) {
	table := NewTable()

	_, ok := table.Get("missing")
	assert.False(t, ok)
}

func TestSetIdentityAndClear(t *testing.T) {
	table := NewTable()
	table.Bind("c1")

	require.True(t, table.SetIdentity("c1", "alice", "general"))
	s, _ := table.Get("c1")
	assert.Equal(t, "alice", s.DisplayName)
	assert.Equal(t, "general", s.RoomName)
	assert.Equal(t, StateInRoom, s.State())

	table.Clear("c1")
	s, ok := table.Get("c1")
	require.True(t, ok)
	assert.Equal(t, Session{}, s)
}

func TestLeaveRoomKeepsName(t *testing.T) {
	table := NewTable()
	table.Bind("c1")
	require.True(t, table.SetIdentity("c1", "alice", "general"))

	require.True(t, table.LeaveRoom("c1"))
	s, ok := table.Get("c1")
	require.True(t, ok)
	assert.Equal(t, Session{DisplayName: "alice"}, s)
	assert.Equal(t, StateIdle, s.State())

	assert.False(t, table.LeaveRoom("ghost"))
}

func TestSetIdentityUnknownConnection(t *testing.T) {
	table := NewTable()
	assert.False(t, table.SetIdentity("ghost", "alice", "general"))
	assert.Equal(t, 0, table.Len())
}

func TestRemoveDeletesRow(t *testing.T) {
	table := NewTable()
	table.Bind("c1")
	table.Bind("c2")

	table.Remove("c1")

	_, ok := table.Get("c1")
	assert.False(t, ok)
	assert.Equal(t, []string{"c2"}, table.ConnIDs())
}

func TestGetReturnsCopy(t *testing.T) {
	table := NewTable()
	table.Bind("c1")
	table.SetIdentity("c1", "alice", "general")

	s, _ := table.Get("c1")
	s.RoomName = "elsewhere"

	again, _ := table.Get("c1")
	assert.Equal(t, "general", again.RoomName)
}

func TestStateIdle(t *testing.T) {
	assert.Equal(t, StateIdle, Session{DisplayName: "alice"}.State())
	assert.Equal(t, "idle", StateIdle.String())
}
