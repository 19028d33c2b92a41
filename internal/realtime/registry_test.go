package realtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_JoinAndResolve(t *testing.T) {
	r := NewRegistry()
	r.Join(RoomScope("42"), "c-1")
	r.Join(RoomScope("42"), "c-2")

	ids := r.Resolve(RoomScope("42"))
	require.ElementsMatch(t, []ConnID{"c-1", "c-2"}, ids)
}

func TestRegistry_JoinIsIdempotent(t *testing.T) {
	r := NewRegistry()
	r.Join(RoomScope("42"), "c-1")
	r.Join(RoomScope("42"), "c-1")

	require.Len(t, r.Resolve(RoomScope("42")), 1)
	require.Len(t, r.Scopes("c-1"), 1)
}

func TestRegistry_ResolveUnknownKey(t *testing.T) {
	r := NewRegistry()
	require.Empty(t, r.Resolve(RoomScope("nope")))
	require.Empty(t, r.Scopes("nobody"))
}

func TestRegistry_LeavePrunesEmptyEntry(t *testing.T) {
	r := NewRegistry()
	r.Join(RoomScope("42"), "c-1")
	r.Leave(RoomScope("42"), "c-1")

	require.Empty(t, r.Resolve(RoomScope("42")))
	r.mu.RLock()
	defer r.mu.RUnlock()
	require.Empty(t, r.byScope)
	require.Empty(t, r.byConn)
}

func TestRegistry_LeaveIsIdempotent(t *testing.T) {
	r := NewRegistry()
	r.Leave(RoomScope("42"), "c-1")
	r.Join(RoomScope("42"), "c-1")
	r.Leave(RoomScope("42"), "c-1")
	r.Leave(RoomScope("42"), "c-1")

	require.Empty(t, r.Resolve(RoomScope("42")))
}

func TestRegistry_LeaveKeepsOtherMembers(t *testing.T) {
	r := NewRegistry()
	r.Join(RoomScope("42"), "c-1")
	r.Join(RoomScope("42"), "c-2")
	r.Leave(RoomScope("42"), "c-1")

	require.Equal(t, []ConnID{"c-2"}, r.Resolve(RoomScope("42")))
}

func TestRegistry_LeaveAll(t *testing.T) {
	r := NewRegistry()
	r.Join(IdentityScope("u-1"), "c-1")
	r.Join(RoomScope("42"), "c-1")
	r.Join(RoomScope("43"), "c-1")
	r.Join(RoomScope("42"), "c-2")

	r.LeaveAll("c-1")

	require.Empty(t, r.Resolve(IdentityScope("u-1")))
	require.Empty(t, r.Resolve(RoomScope("43")))
	require.Equal(t, []ConnID{"c-2"}, r.Resolve(RoomScope("42")))
	require.Empty(t, r.Scopes("c-1"))
}

func TestRegistry_LeaveAllWithoutJoins(t *testing.T) {
	r := NewRegistry()
	r.LeaveAll("c-1")
	r.LeaveAll("c-1")
	require.Empty(t, r.Scopes("c-1"))
}

func TestRegistry_IdentityAndRoomKeysDoNotCollide(t *testing.T) {
	r := NewRegistry()
	r.Join(IdentityScope("42"), "c-1")
	r.Join(RoomScope("42"), "c-2")

	require.Equal(t, []ConnID{"c-1"}, r.Resolve(IdentityScope("42")))
	require.Equal(t, []ConnID{"c-2"}, r.Resolve(RoomScope("42")))
}

// Concurrent joins and leaveAlls on the same key must neither lose an add nor
// leave an id behind after its owner is gone.
func TestRegistry_ConcurrentJoinLeaveAll(t *testing.T) {
	r := NewRegistry()
	key := RoomScope("contended")

	const conns = 50
	const rounds = 100

	var wg sync.WaitGroup
	for i := 0; i < conns; i++ {
		id := ConnID(fmt.Sprintf("c-%d", i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			for round := 0; round < rounds; round++ {
				r.Join(key, id)
				r.Join(IdentityScope(string(id)), id)
				if !r.Contains(key, id) {
					t.Errorf("join of %s lost before its own LeaveAll", id)
					return
				}
				r.LeaveAll(id)
			}
		}()
	}
	wg.Wait()

	// Every goroutine ended with LeaveAll, so nothing may linger.
	require.Empty(t, r.Resolve(key))
	r.mu.RLock()
	defer r.mu.RUnlock()
	require.Empty(t, r.byScope)
	require.Empty(t, r.byConn)
}

func TestRegistry_ConcurrentJoinsAllLand(t *testing.T) {
	r := NewRegistry()
	key := RoomScope("busy")

	const conns = 100
	var wg sync.WaitGroup
	for i := 0; i < conns; i++ {
		id := ConnID(fmt.Sprintf("c-%d", i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Join(key, id)
		}()
	}
	wg.Wait()

	require.Len(t, r.Resolve(key), conns)
}
