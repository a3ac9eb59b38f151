package rangetree

import "github.com/nikhilsahni/listcrdt/id"

// Entry is one leaf element of the RangeTree: a run of contiguous
// (seq, lv) positions from a single agent whose originators are also
// contiguous (spec §3). Len > 0 means the run is live; Len < 0 means it is
// tombstoned and abs(Len) is the tombstone length.
type Entry struct {
	IDBase      id.CRDTId
	LVBase      id.LV
	Len         int32
	Parent      id.CRDTId
	LeftOrigin  id.CRDTId
	RightOrigin id.CRDTId
}

// AbsLen returns the number of positions the entry occupies, live or
// tombstoned.
func (e Entry) AbsLen() int {
	if e.Len < 0 {
		return int(-e.Len)
	}
	return int(e.Len)
}

// IsLive reports whether the entry is currently visible content.
func (e Entry) IsLive() bool {
	return e.Len > 0
}

// LVSpan returns the [LVBase, LVBase+AbsLen) half-open LV range covered.
func (e Entry) LVSpan() id.TimeSpan {
	n := id.LV(e.AbsLen())
	return id.TimeSpan{Start: e.LVBase, End: e.LVBase + n}
}

// IDAt returns the CRDTId of the position offset characters into the
// entry.
func (e Entry) IDAt(offset int) id.CRDTId {
	return id.CRDTId{Agent: e.IDBase.Agent, Seq: e.IDBase.Seq + uint64(offset)}
}

// FirstID returns the id of the entry's first character.
func (e Entry) FirstID() id.CRDTId {
	return e.IDBase
}

// LastID returns the id of the entry's last character.
func (e Entry) LastID() id.CRDTId {
	return e.IDAt(e.AbsLen() - 1)
}

// LastLV returns the lv of the entry's last character.
func (e Entry) LastLV() id.LV {
	return e.LVAt(e.AbsLen() - 1)
}

// LVAt returns the LV of the position offset characters into the entry.
func (e Entry) LVAt(offset int) id.LV {
	return e.LVBase + id.LV(offset)
}

// splitAt splits the entry at content offset `at` (0 < at < AbsLen) into
// two entries that together cover the same id/lv/parent/tombstone state.
// Only the left half keeps the original LeftOrigin; only the right half
// keeps the original RightOrigin. The right half's own LeftOrigin becomes
// the last character of the left half, and the left half's RightOrigin
// becomes the first character of the right half -- both halves remain
// addressable by (agent, seq) independently of where the split falls.
func (e Entry) splitAt(at int) (left, right Entry) {
	n := e.AbsLen()
	left = e
	right = e
	if e.Len > 0 {
		left.Len = int32(at)
		right.Len = int32(n - at)
	} else {
		left.Len = -int32(at)
		right.Len = -int32(n - at)
	}
	right.IDBase = e.IDAt(at)
	right.LVBase = e.LVAt(at)
	right.LeftOrigin = left.IDAt(at - 1)
	left.RightOrigin = right.IDBase
	return left, right
}

// toggleSign flips live<->tombstoned for the whole entry, preserving
// magnitude.
func (e Entry) toggleSign() Entry {
	e.Len = -e.Len
	return e
}
