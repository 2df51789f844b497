package dispatch

import (
	"errors"

	"roomchat/internal/repositories"
)

var (
	ErrUnknownConnection = errors.New("unknown connection")
	ErrNotInRoom         = errors.New("not in a room")
	ErrEmptyMessage      = errors.New("empty message")
	ErrMessageTooLarge   = errors.New("message too large")
	ErrInvalidImage      = errors.New("invalid image")
	ErrMalformedEvent    = errors.New("malformed event")
	ErrStopped           = errors.New("dispatch engine stopped")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{repositories.ErrInvalidName, "invalid_name"},
	{repositories.ErrDuplicateName, "duplicate_name"},
	{repositories.ErrRoomNotFound, "room_not_found"},
	{repositories.ErrWrongPassword, "wrong_password"},
	{repositories.ErrNameTaken, "name_taken"},
	{repositories.ErrNotDMParticipant, "not_dm_participant"},
	{repositories.ErrMessageNotFound, "message_not_found"},
	{ErrUnknownConnection, "unknown_connection"},
	{ErrNotInRoom, "not_in_room"},
	{ErrEmptyMessage, "empty_message"},
	{ErrMessageTooLarge, "message_too_large"},
	{ErrInvalidImage, "invalid_image"},
	{ErrMalformedEvent, "malformed_event"},
	{ErrStopped, "stopped"},
}

// Code maps an error to the stable code sent in error acks.
func Code(err error) string {
	if err == nil {
		return "ok"
	}
	for _, entry := range errorCodes {
		if errors.Is(err, entry.err) {
			return entry.code
		}
	}
	return "internal"
}
