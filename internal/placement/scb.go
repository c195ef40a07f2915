package placement

import (
	"math"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/hupe1980/sparsim/internal/ledger"
)

// SCB is the swap-cost-benefit of moving a vertex's primary from its
// current server A to a candidate server B.
type SCB struct {
	// PDSNB counts neighbors on B whose cache on A becomes removable.
	PDSNB int
	// PDSNAB counts neighbors elsewhere whose cache on A becomes removable.
	PDSNAB int
	// PSSN counts neighbors on A with no other neighbor on B.
	PSSN int
	// DSNAB counts neighbors on other servers that B would have to cache.
	DSNAB   int
	Bonus   int
	Penalty int
	Value   int
}

// neighborProfile is a neighbor u of v with the distinct servers of u's
// other assigned neighbors.
type neighborProfile struct {
	vertex uint32
	server int32
	others []int32
}

// hasOtherOn reports whether a neighbor of u other than v is primary on s.
func (p *neighborProfile) hasOtherOn(s int32) bool {
	_, ok := slices.BinarySearch(p.others, s)
	return ok
}

// scorer holds the B-independent state of one FindMaxSCB call.
type scorer struct {
	c        *Cluster
	v        uint32
	a        int32
	profiles []neighborProfile
	pdsn     map[int32]int
	total    int
}

func (c *Cluster) newScorer(v uint32) (*scorer, error) {
	a := c.primary[v]
	if a == unassigned {
		return nil, errors.AssertionFailedf("score of unassigned vertex %d", v)
	}
	sc := &scorer{c: c, v: v, a: a, pdsn: make(map[int32]int)}

	home := c.server(a)
	for _, u := range c.g.Neighbors(v) {
		su := c.primary[u]
		if su == unassigned {
			continue
		}
		p := neighborProfile{vertex: u, server: su}
		for _, w := range c.g.Neighbors(u) {
			if w == v || c.primary[w] == unassigned {
				continue
			}
			p.others = append(p.others, c.primary[w])
		}
		slices.Sort(p.others)
		p.others = slices.Compact(p.others)
		sc.profiles = append(sc.profiles, p)

		// Pass 1: caches on A that become removable once v leaves.
		role, ok := home.Replica(u)
		if !ok {
			return nil, errors.AssertionFailedf("locality broken: server %d holds no copy of %d, neighbor of %d", a, u, v)
		}
		if role == ledger.NonPrimary && su != a && !p.hasOtherOn(a) {
			sc.pdsn[su]++
			sc.total++
		}
	}
	return sc, nil
}

// score is pass 2 for candidate server b.
func (sc *scorer) score(b int32) SCB {
	var s SCB
	s.PDSNB = sc.pdsn[b]
	s.PDSNAB = sc.total - sc.pdsn[sc.a] - sc.pdsn[b]

	if sc.c.server(b).HasRole(sc.v, ledger.VirtualPrimary) {
		s.Penalty = -1
		s.Bonus = 1
	}
	for i := range sc.profiles {
		p := &sc.profiles[i]
		switch p.server {
		case sc.a:
			if !p.hasOtherOn(b) {
				s.PSSN++
			}
		case b:
		default:
			if !p.hasOtherOn(b) {
				s.DSNAB++
			}
		}
		if s.Bonus == 0 && p.server == b {
			s.Bonus = 1
		}
		if s.Penalty == 0 && p.server == sc.a {
			s.Penalty = -1
		}
	}
	s.Value = s.PDSNB + s.PDSNAB - s.PSSN - s.DSNAB + s.Bonus + s.Penalty
	return s
}

// NoTarget makes FindMaxSCB evaluate every server.
const NoTarget = -1

// FindMaxSCB scores moving v to every server other than its current one,
// or only to target when target is not NoTarget, and returns the best
// score and server. Ties go to the lowest server id. With a single server
// the result is v's own server with Value math.MinInt.
func (c *Cluster) FindMaxSCB(v uint32, target int) (SCB, int, error) {
	sc, err := c.newScorer(v)
	if err != nil {
		return SCB{}, 0, err
	}
	if target != NoTarget {
		if int32(target) == sc.a {
			return SCB{}, 0, errors.AssertionFailedf("vertex %d: target server %d is its current server", v, target)
		}
		return sc.score(int32(target)), target, nil
	}

	best := SCB{Value: math.MinInt}
	bestServer := sc.a
	for b := range int32(c.NumServers()) {
		if b == sc.a {
			continue
		}
		if s := sc.score(b); s.Value > best.Value {
			best, bestServer = s, b
		}
	}
	return best, int(bestServer), nil
}
