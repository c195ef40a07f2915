package ledger

import (
	"fmt"
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cockroachdb/errors"
	"github.com/hupe1980/sparsim/internal/queue"
)

var (
	// ErrNotFound is returned when a server holds no record for a vertex.
	ErrNotFound = errors.New("replica not found")

	// ErrExists is returned when a server already holds a record for a vertex.
	ErrExists = errors.New("replica already exists")
)

// Role is the replica role of a vertex copy on a server.
type Role uint8

const (
	// Primary is the authoritative copy. Exactly one per assigned vertex.
	Primary Role = iota
	// VirtualPrimary is a standby authoritative copy.
	VirtualPrimary
	// NonPrimary is a read-only cache kept for edge locality.
	NonPrimary
)

func (r Role) String() string {
	switch r {
	case Primary:
		return "PRIMARY"
	case VirtualPrimary:
		return "VIRTUAL_PRIMARY"
	case NonPrimary:
		return "NON_PRIMARY"
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// CountsTowardLoad reports whether a copy with this role adds to load.
func (r Role) CountsTowardLoad() bool {
	switch r {
	case Primary, VirtualPrimary:
		return true
	case NonPrimary:
		return false
	default:
		panic(fmt.Sprintf("ledger: unknown role %d", uint8(r)))
	}
}

// Ledger owns all servers and their load order.
type Ledger struct {
	servers []*Server
	order   *queue.IndexedHeap
}

// New creates a ledger with n empty servers.
func New(n int) *Ledger {
	l := &Ledger{
		servers: make([]*Server, n),
		order:   queue.NewIndexed(n),
	}
	for i := range l.servers {
		l.servers[i] = &Server{
			id:         i,
			ledger:     l,
			primaries:  roaring.New(),
			virtuals:   roaring.New(),
			nonPrimary: roaring.New(),
		}
	}
	return l
}

// NumServers returns the number of servers.
func (l *Ledger) NumServers() int { return len(l.servers) }

// Server returns the server with the given id.
func (l *Ledger) Server(id int) *Server { return l.servers[id] }

// Servers iterates over all servers in id order.
func (l *Ledger) Servers() iter.Seq[*Server] {
	return func(yield func(*Server) bool) {
		for _, s := range l.servers {
			if !yield(s) {
				return
			}
		}
	}
}

// LeastLoaded returns the ids of the k servers that come first in
// (load, id) order.
func (l *Ledger) LeastLoaded(k int) []int {
	return l.order.Smallest(k)
}

// Loads returns the current load of every server in id order.
func (l *Ledger) Loads() []int {
	loads := make([]int, len(l.servers))
	for i, s := range l.servers {
		loads[i] = s.Load()
	}
	return loads
}

// InterServerCost returns the sum over servers of resident copies minus
// primary copies, i.e. all virtual-primary and non-primary copies.
func (l *Ledger) InterServerCost() int {
	cost := 0
	for _, s := range l.servers {
		cost += s.InterServerCost()
	}
	return cost
}

// Server is the replica ledger of one server.
type Server struct {
	id         int
	ledger     *Ledger
	primaries  *roaring.Bitmap
	virtuals   *roaring.Bitmap
	nonPrimary *roaring.Bitmap
}

// ID returns the server id.
func (s *Server) ID() int { return s.id }

// Load returns the number of PRIMARY and VIRTUAL_PRIMARY records, as
// tracked by the ledger's load order.
func (s *Server) Load() int {
	return s.ledger.order.Key(s.id)
}

// NumResidents returns the number of records of any role.
func (s *Server) NumResidents() int {
	return s.Load() + int(s.nonPrimary.GetCardinality())
}

// InterServerCost returns resident copies minus primary copies.
func (s *Server) InterServerCost() int {
	return int(s.virtuals.GetCardinality() + s.nonPrimary.GetCardinality())
}

// HasReplica reports whether the server holds any copy of v.
func (s *Server) HasReplica(v uint32) bool {
	_, ok := s.Replica(v)
	return ok
}

// Replica returns the role of the copy of v, if any.
func (s *Server) Replica(v uint32) (Role, bool) {
	switch {
	case s.primaries.Contains(v):
		return Primary, true
	case s.virtuals.Contains(v):
		return VirtualPrimary, true
	case s.nonPrimary.Contains(v):
		return NonPrimary, true
	default:
		return 0, false
	}
}

// HasRole reports whether the server holds v with exactly the given role.
func (s *Server) HasRole(v uint32, role Role) bool {
	return s.set(role).Contains(v)
}

// AddReplica inserts a record for v. Load-counting roles update the
// ledger's load order before returning.
func (s *Server) AddReplica(v uint32, role Role) error {
	if s.HasReplica(v) {
		return errors.Wrapf(ErrExists, "server %d: vertex %d", s.id, v)
	}
	s.set(role).Add(v)
	if role.CountsTowardLoad() {
		s.ledger.order.Add(s.id, 1)
	}
	return nil
}

// RemoveReplica deletes the record for v and returns its role.
func (s *Server) RemoveReplica(v uint32) (Role, error) {
	role, ok := s.Replica(v)
	if !ok {
		return 0, errors.Wrapf(ErrNotFound, "server %d: vertex %d", s.id, v)
	}
	s.set(role).Remove(v)
	if role.CountsTowardLoad() {
		s.ledger.order.Add(s.id, -1)
	}
	return role, nil
}

// Primaries iterates over the vertices with a PRIMARY record, ascending.
func (s *Server) Primaries() iter.Seq[uint32] { return bitmapSeq(s.primaries) }

// VirtualPrimaries iterates over the VIRTUAL_PRIMARY vertices, ascending.
func (s *Server) VirtualPrimaries() iter.Seq[uint32] { return bitmapSeq(s.virtuals) }

// NonPrimaries iterates over the NON_PRIMARY vertices, ascending.
func (s *Server) NonPrimaries() iter.Seq[uint32] { return bitmapSeq(s.nonPrimary) }

// PrimaryIDs returns a snapshot of the PRIMARY vertices, ascending.
// Use it when the server is mutated while iterating.
func (s *Server) PrimaryIDs() []uint32 { return s.primaries.ToArray() }

// VirtualPrimaryIDs returns a snapshot of the VIRTUAL_PRIMARY vertices.
func (s *Server) VirtualPrimaryIDs() []uint32 { return s.virtuals.ToArray() }

// NumPrimaries returns the number of PRIMARY records.
func (s *Server) NumPrimaries() int { return int(s.primaries.GetCardinality()) }

func (s *Server) set(role Role) *roaring.Bitmap {
	switch role {
	case Primary:
		return s.primaries
	case VirtualPrimary:
		return s.virtuals
	case NonPrimary:
		return s.nonPrimary
	default:
		panic(fmt.Sprintf("ledger: unknown role %d", uint8(role)))
	}
}

func bitmapSeq(b *roaring.Bitmap) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		it := b.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}
