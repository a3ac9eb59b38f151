package oplog

import (
	"github.com/pkg/errors"

	"github.com/nikhilsahni/listcrdt/id"
	"github.com/nikhilsahni/listcrdt/rangetree"
)

// rankOf returns the absolute (live+tombstoned) position of cid in the
// tree, or -1 for ROOT -- a total order over already-integrated ids that
// the YATA scan uses to compare two concurrent siblings' origins.
func (o *OpLog) rankOf(cid id.CRDTId) (int, error) {
	if cid.IsRoot() {
		return -1, nil
	}
	lv, err := o.CRDTIdToLV(cid)
	if err != nil {
		return 0, err
	}
	cur, err := o.tree.CursorAfterLV(lv)
	if err != nil {
		return 0, err
	}
	return o.tree.SpanPosOf(cur) - 1, nil
}

// agentLess reports whether a's agent name is lexicographically before
// b's, with seq as the secondary tiebreak (spec §4.5 step 2).
func (o *OpLog) agentLess(a, b id.CRDTId) (bool, error) {
	an, err := o.agents.Name(a.Agent)
	if err != nil {
		return false, err
	}
	bn, err := o.agents.Name(b.Agent)
	if err != nil {
		return false, err
	}
	if an != bn {
		return an < bn, nil
	}
	return a.Seq < b.Seq, nil
}

// findInsertionCursor walks the RangeTree from just after leftOrigin,
// applying the YATA scan rule of spec §4.5 step 2 to find the boundary
// immediately before which newID (whose origins are leftOrigin/
// rightOrigin) must be spliced.
func (o *OpLog) findInsertionCursor(newID, leftOrigin, rightOrigin id.CRDTId) (rangetree.Cursor, error) {
	leftLV := id.RootTime
	if !leftOrigin.IsRoot() {
		lv, err := o.CRDTIdToLV(leftOrigin)
		if err != nil {
			return rangetree.Cursor{}, err
		}
		leftLV = lv
	}
	cur, err := o.tree.CursorAfterLV(leftLV)
	if err != nil {
		return rangetree.Cursor{}, err
	}
	leftRank, err := o.rankOf(leftOrigin)
	if err != nil {
		return rangetree.Cursor{}, err
	}

	for {
		e, ok := o.tree.PeekEntry(cur)
		if !ok {
			break
		}
		if e.FirstID() == rightOrigin {
			break
		}
		eLeftRank, err := o.rankOf(e.LeftOrigin)
		if err != nil {
			return rangetree.Cursor{}, err
		}
		switch {
		case eLeftRank < leftRank:
			// e's origin precedes ours: e belongs strictly after us.
			return cur, nil
		case eLeftRank > leftRank:
			// e's origin sits between our origin and us: e is nested
			// under a sibling inserted after our origin; skip past it.
			cur = o.tree.Advance(cur)
			continue
		default:
			// Same left origin: concurrent siblings, tiebreak by agent.
			winsAgainstE, err := o.agentLess(newID, e.FirstID())
			if err != nil {
				return rangetree.Cursor{}, err
			}
			if winsAgainstE {
				return cur, nil
			}
			cur = o.tree.Advance(cur)
		}
	}
	return cur, nil
}

// integrateInsert splices a freshly-created run of length n, starting at
// newID, between leftOrigin and rightOrigin, returning the entry's final
// content position (number of live characters strictly before it) so
// callers can patch a Branch's rope at the right spot.
func (o *OpLog) integrateInsert(newID id.CRDTId, lv id.LV, n int, leftOrigin, rightOrigin id.CRDTId) (contentPos int, err error) {
	cur, err := o.findInsertionCursor(newID, leftOrigin, rightOrigin)
	if err != nil {
		return 0, errors.Wrap(err, "oplog: integrating insert")
	}
	contentPos = o.tree.ContentPosOf(cur)
	entry := rangetree.Entry{
		IDBase:      newID,
		LVBase:      lv,
		Len:         int32(n),
		Parent:      leftOrigin,
		LeftOrigin:  leftOrigin,
		RightOrigin: rightOrigin,
	}
	if err := o.tree.InsertAt(cur, entry); err != nil {
		return 0, err
	}
	return contentPos, nil
}
