package repositories

import "strings"

// DMPrefix marks rooms derived from two participants. They never show in the lobby.
const DMPrefix = "DM_"

// DeriveDMName returns the canonical direct-message room for two display names.
// The result does not depend on argument order.
func DeriveDMName(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return DMPrefix + a + "_" + b
}

// IsDMName reports whether name belongs to a direct-message room.
func IsDMName(name string) bool {
	return strings.HasPrefix(name, DMPrefix)
}

// IsDMParticipant reports whether displayName is one of the two people the DM room was derived from.
func IsDMParticipant(room, displayName string) bool {
	if !IsDMName(room) || displayName == "" {
		return false
	}
	rest := strings.TrimPrefix(room, DMPrefix)
	if other, ok := strings.CutPrefix(rest, displayName+"_"); ok && DeriveDMName(displayName, other) == room {
		return true
	}
	if other, ok := strings.CutSuffix(rest, "_"+displayName); ok && DeriveDMName(displayName, other) == room {
		return true
	}
	return false
}
