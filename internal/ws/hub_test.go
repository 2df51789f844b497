package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubRegisterAndUnregister(t *testing.T) {
	hub := NewHub(4)

	c := hub.register(ConnInfo{ConnID: "c1"})
	assert.Equal(t, 1, hub.Len())

	hub.unregister("c1")
	assert.Equal(t, 0, hub.Len())
	_, open := <-c.send
	assert.False(t, open)

	assert.NotPanics(t, func() { hub.unregister("c1") })
}

func TestHubDeliver(t *testing.T) {
	hub := NewHub(4)
	c := hub.register(ConnInfo{ConnID: "c1"})

	hub.Deliver("c1", []byte(`{"type":"rooms:list"}`))
	hub.Deliver("unknown", []byte(`{}`))

	require.Len(t, c.send, 1)
	assert.JSONEq(t, `{"type":"rooms:list"}`, string(<-c.send))
}

func TestHubDeliverDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(1)
	c := hub.register(ConnInfo{ConnID: "c1"})

	hub.Deliver("c1", []byte("first"))
	hub.Deliver("c1", []byte("second"))

	require.Len(t, c.send, 1)
	assert.Equal(t, "first", string(<-c.send))
}

func TestHubCloseAll(t *testing.T) {
	hub := NewHub(0)
	a := hub.register(ConnInfo{ConnID: "a"})
	b := hub.register(ConnInfo{ConnID: "b"})

	hub.CloseAll()

	assert.Equal(t, 0, hub.Len())
	_, openA := <-a.send
	_, openB := <-b.send
	assert.False(t, openA)
	assert.False(t, openB)
}
