package coordinator

import (
	"net"
	"sort"

	"github.com/mwindels/turtlemesh/internal/mesh"
)

// NodeRecord is the coordinator's one record per region, created on
// REGISTER and live for the whole run, per spec.md 3's Lifecycles.
type NodeRecord struct {
	ID     int
	Addr   *net.UDPAddr
	Active bool
	Region mesh.Region
}

// NodeTable is the coordinator-owned replacement for the source's
// process-wide node table (spec.md 9's "stateful global singletons" flag).
// The coordinator's event loop is single-threaded (spec.md 5), so unlike
// master/pool/pool.go's Pool in the teacher repo, this table needs no lock:
// it is only ever touched from the one goroutine driving the coordinator.
type NodeTable struct {
	byID map[int]*NodeRecord
}

// NewNodeTable returns an empty table.
func NewNodeTable() *NodeTable {
	return &NodeTable{byID: make(map[int]*NodeRecord)}
}

// Register records a node's address the first time it's seen and returns
// whether this was a new registration. A duplicate REGISTER from an
// already-registered id is idempotent: it changes nothing and reports
// isNew=false, per spec.md 4.D Phase 1.
func (t *NodeTable) Register(id int, addr *net.UDPAddr, region mesh.Region) (isNew bool) {
	if _, exists := t.byID[id]; exists {
		return false
	}
	t.byID[id] = &NodeRecord{ID: id, Addr: addr, Active: true, Region: region}
	return true
}

// Get returns the record for id, if any.
func (t *NodeTable) Get(id int) (*NodeRecord, bool) {
	r, ok := t.byID[id]
	return r, ok
}

// Deactivate marks a node inactive after it fails to respond through all
// retries during assignment (spec.md 4.D Phase 2).
func (t *NodeTable) Deactivate(id int) {
	if r, ok := t.byID[id]; ok {
		r.Active = false
	}
}

// Count returns the number of distinct registered nodes.
func (t *NodeTable) Count() int {
	return len(t.byID)
}

// Active returns every active node record, ordered by id for deterministic
// iteration during assignment and collection.
func (t *NodeTable) Active() []*NodeRecord {
	ids := make([]int, 0, len(t.byID))
	for id, r := range t.byID {
		if r.Active {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)

	out := make([]*NodeRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.byID[id])
	}
	return out
}
