// Package oplog implements the append-only operation log (spec §4.2,
// component C3) and the YATA integration algorithm that gives it meaning
// (spec §4.5, component C5). An OpLog owns the agent table, the packed
// insert/delete content, the History DAG and the RangeTree; Branches hold
// only a reference to an OpLog plus their own materialized rope.
package oplog

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nikhilsahni/listcrdt/history"
	"github.com/nikhilsahni/listcrdt/id"
	"github.com/nikhilsahni/listcrdt/internal/rle"
	"github.com/nikhilsahni/listcrdt/rangetree"
)

// Sentinel errors, surfaced per the taxonomy in spec §7.
var (
	ErrUnknownAgent   = errors.New("oplog: unknown agent")
	ErrOutOfRange     = errors.New("oplog: position out of range")
	ErrDataMissing    = errors.New("oplog: parents reference unknown local time")
	ErrSeqConflict    = errors.New("oplog: (agent, seq) reassignment conflict")
	ErrMalformedTxn   = errors.New("oplog: malformed remote transaction")
	ErrPartialOverlap = errors.New("oplog: remote transaction partially overlaps known history")
)

// OpLog is the append-only log described in spec §4.2.
type OpLog struct {
	agents   *id.Table
	clientLV *rle.Run[id.CRDTSpan] // LV -> agent span, spec's client_with_lv
	ops      *rle.Run[Operation]
	hist     *history.History
	tree     *rangetree.Tree
	frontier id.Frontier

	insContent []rune
	delContent []rune

	doubleDeletes DoubleDeleteList

	log *logrus.Entry
}

// New returns an empty OpLog.
func New() *OpLog {
	return &OpLog{
		agents:   id.NewTable(),
		clientLV: rle.New[id.CRDTSpan](),
		ops:      rle.New[Operation](),
		hist:     history.New(),
		tree:     rangetree.New(),
		log:      logrus.WithField("component", "oplog"),
	}
}

// GetOrCreateAgent interns an agent name, returning its AgentId. Spec §4.2.
func (o *OpLog) GetOrCreateAgent(name string) id.AgentId {
	return o.agents.GetOrCreate(name)
}

// Len returns the number of local times (LVs) assigned so far.
func (o *OpLog) Len() id.LV {
	return o.hist.Len()
}

// LocalVersion returns the OpLog's current frontier in LV form.
func (o *OpLog) LocalVersion() id.Frontier {
	return o.frontier.Clone()
}

// RemoteVersion returns the OpLog's current frontier in (agent, seq) form,
// suitable for transmitting to a peer.
func (o *OpLog) RemoteVersion() ([]id.CRDTId, error) {
	return o.FrontierToRemote(o.frontier)
}

// LVToCRDTId resolves a local time to its global (agent, seq) identity via
// binary search over the client_with_lv run list.
func (o *OpLog) LVToCRDTId(lv id.LV) (id.CRDTId, error) {
	if lv == id.RootTime {
		return id.Root, nil
	}
	spans := o.clientLV.All()
	lo, hi := 0, len(spans)
	for lo < hi {
		mid := (lo + hi) / 2
		if spans[mid].LVSpan().End <= lv {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo >= len(spans) || !spans[lo].LVSpan().Contains(lv) {
		return id.CRDTId{}, errors.Errorf("oplog: lv %d not assigned", lv)
	}
	return spans[lo].AtLV(lv), nil
}

// CRDTIdToLV resolves a global id to its local time via the agent table.
func (o *OpLog) CRDTIdToLV(cid id.CRDTId) (id.LV, error) {
	return o.agents.SeqToLV(cid)
}

// IterHistory returns every HistoryEntry appended so far, in append order.
func (o *OpLog) IterHistory() []history.Entry {
	return o.hist.Entries()
}

// IterOps returns every run-length-compressed Operation appended so far.
func (o *OpLog) IterOps() []Operation {
	return o.ops.All()
}

// ContentLen returns the number of live characters across the whole
// OpLog (i.e. the RangeTree's global aggregate, spec §4.3).
func (o *OpLog) ContentLen() int {
	return o.tree.ContentLen()
}

// assignLVs allocates a contiguous run of n new local times for agent,
// recording the agent<->LV mapping in both client_with_lv and the agent
// table's own seq->lv runs.
func (o *OpLog) assignLVs(agent id.AgentId, n int) (id.LV, error) {
	seqBase, err := o.agents.NextSeq(agent)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	lvBase := o.Len()
	if err := o.agents.RecordRun(agent, seqBase, uint64(n), lvBase); err != nil {
		return 0, errors.Wrap(err, "oplog: assigning lvs")
	}
	o.clientLV.Push(id.CRDTSpan{Agent: agent, SeqBase: seqBase, Len: uint64(n), LVBase: lvBase})
	return lvBase, nil
}
