package models

// RoomSummary is the lobby view of a room. The password never leaves the server.
type RoomSummary struct {
	Name      string `json:"name"`
	UserCount int    `json:"userCount"`
	IsLocked  bool   `json:"isLocked"`
}
