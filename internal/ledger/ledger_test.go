package ledger

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_AddRemoveReplica(t *testing.T) {
	l := New(3)
	s := l.Server(1)

	require.NoError(t, s.AddReplica(7, Primary))
	require.NoError(t, s.AddReplica(8, VirtualPrimary))
	require.NoError(t, s.AddReplica(9, NonPrimary))

	assert.Equal(t, 2, s.Load())
	assert.Equal(t, 3, s.NumResidents())
	assert.Equal(t, 2, s.InterServerCost())

	role, ok := s.Replica(8)
	require.True(t, ok)
	assert.Equal(t, VirtualPrimary, role)
	assert.True(t, s.HasRole(9, NonPrimary))
	assert.False(t, s.HasRole(9, Primary))

	err := s.AddReplica(7, NonPrimary)
	require.ErrorIs(t, err, ErrExists)

	role, err = s.RemoveReplica(7)
	require.NoError(t, err)
	assert.Equal(t, Primary, role)
	assert.Equal(t, 1, s.Load())

	_, err = s.RemoveReplica(7)
	require.ErrorIs(t, err, ErrNotFound)
	assert.False(t, s.HasReplica(7))
}

func TestLedger_LoadOrderFollowsMutations(t *testing.T) {
	l := New(3)
	assert.Equal(t, []int{0, 1, 2}, l.LeastLoaded(3))

	require.NoError(t, l.Server(0).AddReplica(1, Primary))
	assert.Equal(t, []int{1, 2, 0}, l.LeastLoaded(3))

	// Caches do not change load or order.
	require.NoError(t, l.Server(1).AddReplica(1, NonPrimary))
	assert.Equal(t, []int{1, 2, 0}, l.LeastLoaded(3))

	require.NoError(t, l.Server(1).AddReplica(2, VirtualPrimary))
	assert.Equal(t, []int{2, 0, 1}, l.LeastLoaded(3))

	_, err := l.Server(0).RemoveReplica(1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, l.LeastLoaded(2))
	assert.Equal(t, []int{0, 1, 0}, l.Loads())
}

func TestServer_LoadMatchesRecords(t *testing.T) {
	l := New(2)
	s := l.Server(0)

	for v := uint32(0); v < 6; v++ {
		require.NoError(t, s.AddReplica(v, Role(v%3)))
	}
	_, err := s.RemoveReplica(1)
	require.NoError(t, err)
	_, err = s.RemoveReplica(2)
	require.NoError(t, err)

	// 0, 3 primary; 4 virtual primary; 5 cache.
	assert.Equal(t, 3, s.Load())
	assert.Equal(t, s.NumPrimaries()+len(s.VirtualPrimaryIDs()), s.Load())
	assert.Equal(t, []int{1, 0}, l.LeastLoaded(2))

	err = s.AddReplica(3, NonPrimary)
	require.ErrorIs(t, err, ErrExists)
	assert.Contains(t, err.Error(), "server 0: vertex 3")
	assert.Equal(t, 3, s.Load())
}

func TestLedger_InterServerCost(t *testing.T) {
	l := New(2)
	require.NoError(t, l.Server(0).AddReplica(1, Primary))
	require.NoError(t, l.Server(0).AddReplica(2, NonPrimary))
	require.NoError(t, l.Server(1).AddReplica(2, Primary))
	require.NoError(t, l.Server(1).AddReplica(1, VirtualPrimary))

	assert.Equal(t, 2, l.InterServerCost())
}

func TestServer_IterationIsAscending(t *testing.T) {
	l := New(1)
	s := l.Server(0)
	for _, v := range []uint32{9, 3, 5} {
		require.NoError(t, s.AddReplica(v, Primary))
	}
	require.NoError(t, s.AddReplica(4, VirtualPrimary))
	require.NoError(t, s.AddReplica(1, NonPrimary))

	assert.Equal(t, []uint32{3, 5, 9}, slices.Collect(s.Primaries()))
	assert.Equal(t, []uint32{3, 5, 9}, s.PrimaryIDs())
	assert.Equal(t, []uint32{4}, slices.Collect(s.VirtualPrimaries()))
	assert.Equal(t, []uint32{4}, s.VirtualPrimaryIDs())
	assert.Equal(t, []uint32{1}, slices.Collect(s.NonPrimaries()))
	assert.Equal(t, 3, s.NumPrimaries())
}

func TestRole_String(t *testing.T) {
	assert.Equal(t, "PRIMARY", Primary.String())
	assert.Equal(t, "VIRTUAL_PRIMARY", VirtualPrimary.String())
	assert.Equal(t, "NON_PRIMARY", NonPrimary.String())
	assert.True(t, VirtualPrimary.CountsTowardLoad())
	assert.False(t, NonPrimary.CountsTowardLoad())
}
