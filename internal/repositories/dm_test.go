package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveDMNameIsSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"alice", "bob"},
		{"bob", "alice"},
		{"Zed", "amy"},
		{"same", "same"},
		{"a_b", "c"},
		{"", "x"},
	}
	for _, p := range pairs {
		assert.Equal(t, DeriveDMName(p[0], p[1]), DeriveDMName(p[1], p[0]))
	}
	assert.Equal(t, "DM_alice_bob", DeriveDMName("bob", "alice"))
}

func TestIsDMParticipant(t *testing.T) {
	room := DeriveDMName("alice", "bob")

	assert.True(t, IsDMParticipant(room, "alice"))
	assert.True(t, IsDMParticipant(room, "bob"))
	assert.False(t, IsDMParticipant(room, "carol"))
	assert.False(t, IsDMParticipant(room, ""))
	assert.False(t, IsDMParticipant("general", "alice"))

	underscored := DeriveDMName("a_b", "c")
	assert.True(t, IsDMParticipant(underscored, "a_b"))
	assert.True(t, IsDMParticipant(underscored, "c"))
	assert.False(t, IsDMParticipant(underscored, "b"))
}
