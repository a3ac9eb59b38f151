package id

import "github.com/pkg/errors"

// ErrUnknownAgent is returned when an AgentId or agent name has no entry in
// the table.
var ErrUnknownAgent = errors.New("id: unknown agent")

// seqRun records one contiguous [SeqBase, SeqBase+Len) run of sequence
// numbers an agent has been assigned, mapped to the LV it starts at.
type seqRun struct {
	seqBase uint64
	length  uint64
	lvBase  LV
}

func (r seqRun) seqEnd() uint64 { return r.seqBase + r.length }

// agentEntry is one interned agent: its name, and the ordered, disjoint
// list of seq->lv runs assigned to it so far.
type agentEntry struct {
	name string
	runs []seqRun
}

func (e *agentEntry) nextSeq() uint64 {
	if len(e.runs) == 0 {
		return 0
	}
	last := e.runs[len(e.runs)-1]
	return last.seqEnd()
}

// Table interns agent names to small AgentIds and maintains the CRDTId ->
// LV direction of spec §3's maps via a per-agent seq->lv run list. The
// LV -> CRDTId direction is not kept here; OpLog.LVToCRDTId answers it
// from the OpLog's own client_with_lv run list.
//
// Table owns no LV allocation policy itself -- callers (OpLog) decide when
// an agent gets new seqs; Table only records the resulting runs so lookups
// stay O(log n) via binary search instead of a linear rescan.
type Table struct {
	byName  map[string]AgentId
	entries []agentEntry
}

// NewTable returns an empty agent table.
func NewTable() *Table {
	return &Table{byName: make(map[string]AgentId)}
}

// GetOrCreate interns name, returning its existing AgentId if already known
// or creating a fresh one. Idempotent.
func (t *Table) GetOrCreate(name string) AgentId {
	if a, ok := t.byName[name]; ok {
		return a
	}
	a := AgentId(len(t.entries))
	t.entries = append(t.entries, agentEntry{name: name})
	t.byName[name] = a
	return a
}

// Lookup returns the AgentId for name without creating it.
func (t *Table) Lookup(name string) (AgentId, bool) {
	a, ok := t.byName[name]
	return a, ok
}

// Name returns the interned name for an AgentId.
func (t *Table) Name(a AgentId) (string, error) {
	if int(a) >= len(t.entries) {
		return "", errors.Wrapf(ErrUnknownAgent, "agent id %d", a)
	}
	return t.entries[a].name, nil
}

// NextSeq returns the next sequence number that would be assigned to a.
func (t *Table) NextSeq(a AgentId) (uint64, error) {
	if int(a) >= len(t.entries) {
		return 0, errors.Wrapf(ErrUnknownAgent, "agent id %d", a)
	}
	return t.entries[a].nextSeq(), nil
}

// RecordRun registers that agent a was assigned [seqBase, seqBase+length)
// starting at local time lvBase. The run must immediately follow the
// agent's previously recorded seqs -- i.e. seqBase == NextSeq(a) -- or
// reassignment of an existing (agent, seq) pair would occur, which spec §3
// forbids as corrupting convergence.
func (t *Table) RecordRun(a AgentId, seqBase uint64, length uint64, lvBase LV) error {
	if int(a) >= len(t.entries) {
		return errors.Wrapf(ErrUnknownAgent, "agent id %d", a)
	}
	e := &t.entries[a]
	if want := e.nextSeq(); seqBase != want {
		return errors.Errorf("id: seq reuse/gap for agent %d: got base %d, want %d", a, seqBase, want)
	}
	e.runs = append(e.runs, seqRun{seqBase: seqBase, length: length, lvBase: lvBase})
	return nil
}

// RecordRunAt registers a seq run that need not immediately follow the
// agent's previously recorded seqs, inserting it in sorted order and
// rejecting only genuine overlap with a run already known. Used solely by
// package encoding while decoding: a file's AgentAssignment chunk may
// interleave an agent's runs in a different order than their own seq
// numbers (spec §6's "jump" field), unlike a local or remote push, which
// always advances an agent's seqs contiguously via RecordRun.
func (t *Table) RecordRunAt(a AgentId, seqBase uint64, length uint64, lvBase LV) error {
	if int(a) >= len(t.entries) {
		return errors.Wrapf(ErrUnknownAgent, "agent id %d", a)
	}
	e := &t.entries[a]
	newRun := seqRun{seqBase: seqBase, length: length, lvBase: lvBase}
	lo, hi := 0, len(e.runs)
	for lo < hi {
		mid := (lo + hi) / 2
		if e.runs[mid].seqBase < seqBase {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo > 0 && e.runs[lo-1].seqEnd() > seqBase {
		return errors.Errorf("id: decoded run [%d,%d) for agent %d overlaps an existing run", seqBase, newRun.seqEnd(), a)
	}
	if lo < len(e.runs) && newRun.seqEnd() > e.runs[lo].seqBase {
		return errors.Errorf("id: decoded run [%d,%d) for agent %d overlaps an existing run", seqBase, newRun.seqEnd(), a)
	}
	e.runs = append(e.runs, seqRun{})
	copy(e.runs[lo+1:], e.runs[lo:])
	e.runs[lo] = newRun
	return nil
}

// SeqToLV resolves a (agent, seq) pair to its LV via binary search over the
// agent's run list.
func (t *Table) SeqToLV(id CRDTId) (LV, error) {
	if id.IsRoot() {
		return RootTime, nil
	}
	if int(id.Agent) >= len(t.entries) {
		return 0, errors.Wrapf(ErrUnknownAgent, "agent id %d", id.Agent)
	}
	runs := t.entries[id.Agent].runs
	lo, hi := 0, len(runs)
	for lo < hi {
		mid := (lo + hi) / 2
		if runs[mid].seqEnd() <= id.Seq {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo >= len(runs) {
		return 0, errors.Errorf("id: seq %d not assigned for agent %d", id.Seq, id.Agent)
	}
	r := runs[lo]
	if id.Seq < r.seqBase || id.Seq >= r.seqEnd() {
		return 0, errors.Errorf("id: seq %d not assigned for agent %d", id.Seq, id.Agent)
	}
	return r.lvBase + LV(id.Seq-r.seqBase), nil
}

// RunAt returns the lv corresponding to (a, seq) together with the seq at
// which that contiguous run ends, letting a caller walk a multi-run seq
// range (e.g. a remote delete target spanning two separate local inserts
// from the same agent) in O(runs) instead of one binary search per seq.
func (t *Table) RunAt(a AgentId, seq uint64) (lv LV, runSeqEnd uint64, err error) {
	if int(a) >= len(t.entries) {
		return 0, 0, errors.Wrapf(ErrUnknownAgent, "agent id %d", a)
	}
	runs := t.entries[a].runs
	lo, hi := 0, len(runs)
	for lo < hi {
		mid := (lo + hi) / 2
		if runs[mid].seqEnd() <= seq {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo >= len(runs) || seq < runs[lo].seqBase {
		return 0, 0, errors.Errorf("id: seq %d not assigned for agent %d", seq, a)
	}
	r := runs[lo]
	return r.lvBase + LV(seq-r.seqBase), r.seqEnd(), nil
}

// AgentCount returns the number of interned agents.
func (t *Table) AgentCount() int {
	return len(t.entries)
}

// Names returns every interned agent name in AgentId order, used when
// encoding the AgentNames chunk.
func (t *Table) Names() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.name
	}
	return out
}
