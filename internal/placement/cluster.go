package placement

import (
	"log/slog"
	"math/rand"

	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"
	"github.com/hupe1980/sparsim/graph"
	"github.com/hupe1980/sparsim/internal/ledger"
)

const unassigned = -1

// Config controls the placement engine.
type Config struct {
	// Servers is the number of servers.
	Servers int
	// VirtualPrimaries is the number of standby copies per vertex (k).
	VirtualPrimaries int
	// LoadConstraint bounds |load(A) - load(B)| for committed decisions.
	LoadConstraint int
	// Seed drives the cluster-merge pass.
	Seed int64

	// RefineRounds caps the rounds of IterativeRefine.
	RefineRounds int
	// RefineMinGain stops IterativeRefine once a round's relative cost
	// reduction falls below it.
	RefineMinGain float64
	// MergePartnerLimit caps the partner groups tried per group. Zero means
	// unlimited.
	MergePartnerLimit int
	// MergeRebalanceSteps caps singleton moves per group swap attempt.
	MergeRebalanceSteps int

	Logger *slog.Logger
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		Servers:             128,
		VirtualPrimaries:    3,
		LoadConstraint:      1,
		Seed:                1,
		RefineRounds:        10,
		RefineMinGain:       0.001,
		MergePartnerLimit:   32,
		MergeRebalanceSteps: 16,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch {
	case c.Servers <= 0:
		return errors.Newf("servers must be positive, got %d", c.Servers)
	case c.VirtualPrimaries < 0:
		return errors.Newf("virtual primaries must not be negative, got %d", c.VirtualPrimaries)
	case c.VirtualPrimaries >= c.Servers:
		return errors.Newf("need more than %d servers for %d virtual primaries", c.Servers, c.VirtualPrimaries)
	case c.LoadConstraint < 0:
		return errors.Newf("load constraint must not be negative, got %d", c.LoadConstraint)
	case c.RefineRounds < 0, c.MergePartnerLimit < 0, c.MergeRebalanceSteps < 0:
		return errors.New("refinement limits must not be negative")
	case c.RefineMinGain < 0:
		return errors.Newf("refine min gain must not be negative, got %g", c.RefineMinGain)
	}
	return nil
}

// Cluster is the mutable placement state of one simulation.
type Cluster struct {
	cfg    Config
	g      *graph.Graph
	ledger *ledger.Ledger

	primary  []int32
	virtuals []int32
	assigned *bitset.BitSet

	rng     *rand.Rand
	logger  *slog.Logger
	journal journal
}

// New creates an empty cluster over g.
func New(g *graph.Graph, cfg Config) (*Cluster, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	n := g.NumVertices()
	c := &Cluster{
		cfg:      cfg,
		g:        g,
		ledger:   ledger.New(cfg.Servers),
		primary:  make([]int32, n),
		virtuals: make([]int32, n),
		assigned: bitset.New(uint(n)),
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		logger:   logger,
	}
	for i := range c.primary {
		c.primary[i] = unassigned
	}
	return c, nil
}

// Config returns the engine configuration.
func (c *Cluster) Config() Config { return c.cfg }

// Graph returns the social graph.
func (c *Cluster) Graph() *graph.Graph { return c.g }

// Ledger returns the replica ledger. Callers must not mutate it.
func (c *Cluster) Ledger() *ledger.Ledger { return c.ledger }

// Rand returns the cluster's seeded random source.
func (c *Cluster) Rand() *rand.Rand { return c.rng }

// NumServers returns the number of servers.
func (c *Cluster) NumServers() int { return c.ledger.NumServers() }

// Primary returns the primary server of v, or -1 if v is unassigned.
func (c *Cluster) Primary(v uint32) int { return int(c.primary[v]) }

// Assigned reports whether v has been ingested.
func (c *Cluster) Assigned(v uint32) bool { return c.assigned.Test(uint(v)) }

// NumAssigned returns the number of ingested vertices.
func (c *Cluster) NumAssigned() int { return int(c.assigned.Count()) }

// VirtualPrimaryCount returns the number of VIRTUAL_PRIMARY copies of v.
func (c *Cluster) VirtualPrimaryCount(v uint32) int { return int(c.virtuals[v]) }

// Assignment returns the primary server of every vertex.
func (c *Cluster) Assignment() []int {
	out := make([]int, len(c.primary))
	for v, s := range c.primary {
		out[v] = int(s)
	}
	return out
}

// InterServerCost returns the sum over servers of resident copies minus
// primary copies.
func (c *Cluster) InterServerCost() int { return c.ledger.InterServerCost() }

// Loads returns the load of every server in id order.
func (c *Cluster) Loads() []int { return c.ledger.Loads() }

// LoadSpread returns max(load) - min(load).
func (c *Cluster) LoadSpread() int {
	loads := c.ledger.Loads()
	lo, hi := loads[0], loads[0]
	for _, l := range loads[1:] {
		lo = min(lo, l)
		hi = max(hi, l)
	}
	return hi - lo
}

func (c *Cluster) server(id int32) *ledger.Server { return c.ledger.Server(int(id)) }

func (c *Cluster) balanced(a, b int32) bool {
	return abs(c.server(a).Load()-c.server(b).Load()) <= c.cfg.LoadConstraint
}

// addReplica, removeReplica and setPrimary are the only mutating
// primitives. Each records its inverse in the journal.

func (c *Cluster) addReplica(s int32, v uint32, role ledger.Role) error {
	if err := c.server(s).AddReplica(v, role); err != nil {
		return errors.NewAssertionErrorWithWrappedErrf(err, "add %s copy", role)
	}
	if role == ledger.VirtualPrimary {
		c.virtuals[v]++
	}
	c.journal.record(delta{op: opAdd, server: s, vertex: v, role: role})
	return nil
}

func (c *Cluster) removeReplica(s int32, v uint32) (ledger.Role, error) {
	role, err := c.server(s).RemoveReplica(v)
	if err != nil {
		return 0, errors.NewAssertionErrorWithWrappedErrf(err, "remove copy")
	}
	if role == ledger.VirtualPrimary {
		c.virtuals[v]--
	}
	c.journal.record(delta{op: opRemove, server: s, vertex: v, role: role})
	return role, nil
}

func (c *Cluster) setPrimary(v uint32, s int32) {
	c.journal.record(delta{op: opSetPrimary, server: c.primary[v], vertex: v})
	c.primary[v] = s
	if s == unassigned {
		c.assigned.Clear(uint(v))
	} else {
		c.assigned.Set(uint(v))
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
