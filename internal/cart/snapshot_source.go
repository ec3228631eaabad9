package cart

import "fmt"

// SnapshotSource hands out guest snapshot repositories bound to whatever
// session id the request carried.
type SnapshotSource struct {
	store snapshotStore
	keyer snapshotKeyer
}

// NewSnapshotSource builds a source over the shared redis client.
func NewSnapshotSource(store snapshotStore, keyer snapshotKeyer) (*SnapshotSource, error) {
	if store == nil || keyer == nil {
		return nil, fmt.Errorf("snapshot store and keyer are required")
	}
	return &SnapshotSource{store: store, keyer: keyer}, nil
}

// ForSession binds a snapshot repository to the given guest session.
func (s *SnapshotSource) ForSession(sessionID string) (*RedisSnapshotRepository, error) {
	return NewRedisSnapshotRepository(s.store, s.keyer, sessionID)
}
