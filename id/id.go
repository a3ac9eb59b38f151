// Package id defines the identity and time model shared by every other
// package in this module: agent interning, the (agent, seq) CRDTId that
// names an inserted element, and the densely assigned local-time integers
// (LV) an OpLog uses internally.
package id

import "fmt"

// AgentId is a small integer an OpLog interns agent names to. Agents are
// never removed once created.
type AgentId uint32

// RootAgent is the reserved AgentId of the ROOT sentinel. No real agent is
// ever assigned this value.
const RootAgent AgentId = ^AgentId(0)

// LV is a local-time: a per-OpLog integer assigned densely in append order.
type LV uint64

// RootTime is the reserved sentinel LV representing "before everything".
const RootTime LV = ^LV(0)

// CRDTId is the global identity of one inserted element: the agent that
// created it and that agent's sequence number at creation time.
type CRDTId struct {
	Agent AgentId
	Seq   uint64
}

// Root is the distinguished sentinel id, ordered smaller than every real
// CRDTId in parent/origin comparisons.
var Root = CRDTId{Agent: RootAgent, Seq: ^uint64(0)}

// IsRoot reports whether id names the ROOT sentinel.
func (c CRDTId) IsRoot() bool {
	return c.Agent == RootAgent
}

func (c CRDTId) String() string {
	if c.IsRoot() {
		return "ROOT"
	}
	return fmt.Sprintf("(a%d,%d)", c.Agent, c.Seq)
}

// TimeSpan is a half-open [Start, End) range over LV, the run-length unit
// used throughout the OpLog, History and RangeTree.
type TimeSpan struct {
	Start LV
	End   LV
}

// Len returns the number of LVs covered by the span.
func (s TimeSpan) Len() int {
	if s.End <= s.Start {
		return 0
	}
	return int(s.End - s.Start)
}

// Contains reports whether v falls within the span.
func (s TimeSpan) Contains(v LV) bool {
	return v >= s.Start && v < s.End
}

// Overlaps reports whether the two spans share any LV.
func (s TimeSpan) Overlaps(o TimeSpan) bool {
	return s.Start < o.End && o.Start < s.End
}

// CanAppend reports whether o immediately follows s, so the pair can be
// represented as one run-length entry.
func (s TimeSpan) CanAppend(o TimeSpan) bool {
	return o.Start == s.End
}

// CRDTSpan is a run of contiguous sequence numbers assigned to one agent,
// mapped to a contiguous run of local time.
type CRDTSpan struct {
	Agent   AgentId
	SeqBase uint64 // seq of the first id in the run
	Len     uint64
	LVBase  LV // lv of the first id in the run
}

// SeqSpan returns the [SeqBase, SeqBase+Len) half-open range.
func (s CRDTSpan) SeqSpan() (start, end uint64) {
	return s.SeqBase, s.SeqBase + s.Len
}

// LVSpan returns the [LVBase, LVBase+Len) half-open range.
func (s CRDTSpan) LVSpan() TimeSpan {
	return TimeSpan{Start: s.LVBase, End: s.LVBase + LV(s.Len)}
}

// AtSeq returns the LV assigned to a given sequence number, which must lie
// within [SeqBase, SeqBase+Len).
func (s CRDTSpan) AtSeq(seq uint64) LV {
	return s.LVBase + LV(seq-s.SeqBase)
}

// AtLV returns the CRDTId assigned to a given LV, which must lie within
// the span's LV range.
func (s CRDTSpan) AtLV(lv LV) CRDTId {
	return CRDTId{Agent: s.Agent, Seq: s.SeqBase + uint64(lv-s.LVBase)}
}

// CanAppend reports whether other is the same agent and immediately
// continues both the seq and lv ranges, so client_with_lv (spec §4.2) can
// run-length compress consecutive spans from one agent.
func (s CRDTSpan) CanAppend(other CRDTSpan) bool {
	return s.Agent == other.Agent &&
		other.SeqBase == s.SeqBase+s.Len &&
		other.LVBase == s.LVBase+LV(s.Len)
}

// Append fuses other onto the receiver.
func (s CRDTSpan) Append(other CRDTSpan) CRDTSpan {
	s.Len += other.Len
	return s
}
