package realtime

// ScopeKind distinguishes the two kinds of addressable scope.
type ScopeKind uint8

const (
	// ScopeIdentity addresses every live connection of one verified user.
	ScopeIdentity ScopeKind = iota
	// ScopeRoom addresses every connection that explicitly joined a room.
	ScopeRoom
)

// ScopeKey identifies a set of live connections. The kind is part of the key,
// so a room that happens to be named after a user id can never collide with
// that user's identity scope.
type ScopeKey struct {
	Kind ScopeKind
	ID   string
}

// IdentityScope returns the scope key for a user identity.
func IdentityScope(userID string) ScopeKey {
	return ScopeKey{Kind: ScopeIdentity, ID: userID}
}

// RoomScope returns the scope key for a room.
func RoomScope(roomID string) ScopeKey {
	return ScopeKey{Kind: ScopeRoom, ID: roomID}
}

func (k ScopeKey) String() string {
	if k.Kind == ScopeRoom {
		return "room:" + k.ID
	}
	return "user:" + k.ID
}
