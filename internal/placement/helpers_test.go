package placement

import (
	"fmt"
	"strings"
	"testing"

	"github.com/hupe1980/sparsim/graph"
	"github.com/stretchr/testify/require"
)

func testConfig(servers, k, lc int) Config {
	cfg := DefaultConfig()
	cfg.Servers = servers
	cfg.VirtualPrimaries = k
	cfg.LoadConstraint = lc
	return cfg
}

func newTestCluster(t *testing.T, edges string, cfg Config) *Cluster {
	t.Helper()
	g, err := graph.Load(strings.NewReader(edges))
	require.NoError(t, err)
	c, err := New(g, cfg)
	require.NoError(t, err)
	return c
}

// placeAt pins primaries in the given order with no virtual primaries
// beyond what IngestAt picks.
func placeAt(t *testing.T, c *Cluster, servers ...int) {
	t.Helper()
	for v, s := range servers {
		require.NoError(t, c.IngestAt(uint32(v), s))
	}
}

// dump renders every server's records and the total cost.
func dump(c *Cluster) string {
	var b strings.Builder
	for srv := range c.ledger.Servers() {
		fmt.Fprintf(&b, "s%d load=%d P=%v VP=%v NP=%v\n",
			srv.ID(), srv.Load(), srv.PrimaryIDs(), srv.VirtualPrimaryIDs(), nonPrimaryIDs(c, srv.ID()))
	}
	fmt.Fprintf(&b, "cost=%d", c.InterServerCost())
	return b.String()
}

func nonPrimaryIDs(c *Cluster, s int) []uint32 {
	var out []uint32
	for v := range c.ledger.Server(s).NonPrimaries() {
		out = append(out, v)
	}
	return out
}
