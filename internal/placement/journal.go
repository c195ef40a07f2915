package placement

import (
	"github.com/cockroachdb/errors"
	"github.com/hupe1980/sparsim/internal/ledger"
)

type opKind uint8

const (
	opAdd opKind = iota
	opRemove
	opSetPrimary
)

// delta is one applied mutation. For opSetPrimary, server holds the
// previous primary.
type delta struct {
	op     opKind
	server int32
	vertex uint32
	role   ledger.Role
}

// journal records deltas while at least one savepoint is open.
type journal struct {
	entries []delta
	open    int
}

func (j *journal) record(d delta) {
	if j.open > 0 {
		j.entries = append(j.entries, d)
	}
}

// Savepoint marks a position in the journal.
type Savepoint struct {
	mark  int
	depth int
}

// Begin opens a savepoint. Savepoints nest and must be closed in reverse
// order with Commit or Rollback.
func (c *Cluster) Begin() Savepoint {
	c.journal.open++
	return Savepoint{mark: len(c.journal.entries), depth: c.journal.open}
}

// Commit keeps every mutation since sp. The entries stay in the journal
// while an enclosing savepoint is open.
func (c *Cluster) Commit(sp Savepoint) {
	c.close(sp)
	if c.journal.open == 0 {
		c.journal.entries = c.journal.entries[:0]
	}
}

// Rollback undoes every mutation since sp, newest first.
func (c *Cluster) Rollback(sp Savepoint) error {
	entries := c.journal.entries[sp.mark:]
	// Inverses must not be recorded.
	open := c.journal.open
	c.journal.open = 0
	defer func() {
		c.journal.open = open
		c.close(sp)
		c.journal.entries = c.journal.entries[:sp.mark]
	}()

	for i := len(entries) - 1; i >= 0; i-- {
		d := entries[i]
		var err error
		switch d.op {
		case opAdd:
			_, err = c.removeReplica(d.server, d.vertex)
		case opRemove:
			err = c.addReplica(d.server, d.vertex, d.role)
		case opSetPrimary:
			c.setPrimary(d.vertex, d.server)
		default:
			err = errors.AssertionFailedf("unknown journal op %d", d.op)
		}
		if err != nil {
			return errors.Wrap(err, "rollback")
		}
	}
	return nil
}

func (c *Cluster) close(sp Savepoint) {
	if sp.depth != c.journal.open {
		panic(errors.AssertionFailedf("savepoint %d closed at depth %d", sp.depth, c.journal.open))
	}
	c.journal.open--
}
