package oplog

import (
	"github.com/pkg/errors"

	"github.com/nikhilsahni/listcrdt/id"
)

// RemoteDeleteTarget names a contiguous run of originally-inserted
// characters, identified by the agent that inserted them and their seq
// range, that a remote delete transaction removes.
type RemoteDeleteTarget struct {
	Agent    id.AgentId
	SeqStart uint64
	Len      int
}

// RemoteTxn is one incoming operation from a peer, addressed entirely in
// (agent, seq) terms since the sender has no knowledge of this OpLog's
// local LVs (spec §4.2 apply_remote_txn). The caller must have already
// resolved every agent name to this OpLog's own AgentId via
// GetOrCreateAgent -- remapping a peer's agent indices is not this
// method's job (spec §4.7).
type RemoteTxn struct {
	Agent    id.AgentId
	SeqStart uint64
	Parents  []id.CRDTId
	Kind     OpKind

	// Insert-only.
	Text        string
	LeftOrigin  id.CRDTId
	RightOrigin id.CRDTId

	// Delete-only.
	Targets []RemoteDeleteTarget
	Fwd     bool
}

// seqRangeToLVSpans resolves a contiguous (agent, seq) range to the LV
// spans backing it, which may be more than one TimeSpan if the range
// crosses a boundary between two of the agent's separate local inserts.
func (o *OpLog) seqRangeToLVSpans(agent id.AgentId, seqStart uint64, length int) ([]id.TimeSpan, error) {
	var spans []id.TimeSpan
	seq := seqStart
	remaining := length
	for remaining > 0 {
		lv, runEnd, err := o.agents.RunAt(agent, seq)
		if err != nil {
			return nil, err
		}
		take := int(runEnd - seq)
		if take > remaining {
			take = remaining
		}
		spans = append(spans, id.TimeSpan{Start: lv, End: lv + id.LV(take)})
		seq += uint64(take)
		remaining -= take
	}
	return spans, nil
}

// ApplyRemoteTxn integrates one remote operation, assigning it fresh LVs
// and splicing it into the RangeTree/History exactly as a local push
// would, except that origins (insert) or targets (delete) arrive already
// resolved rather than being derived from a content position. Spec §4.2:
// re-applying a txn whose entire seq range is already known is a no-op;
// a txn that partially overlaps known history is an error.
func (o *OpLog) ApplyRemoteTxn(txn RemoteTxn) (id.LV, error) {
	n := 0
	switch txn.Kind {
	case OpInsert:
		n = len([]rune(txn.Text))
		if n == 0 {
			return 0, errors.Wrap(ErrMalformedTxn, "oplog: empty remote insert")
		}
	case OpDelete:
		for _, tgt := range txn.Targets {
			n += tgt.Len
		}
		if n == 0 {
			return 0, errors.Wrap(ErrMalformedTxn, "oplog: empty remote delete")
		}
	default:
		return 0, errors.Wrap(ErrMalformedTxn, "oplog: unknown remote operation kind")
	}

	nextSeq, err := o.agents.NextSeq(txn.Agent)
	if err != nil {
		return 0, errors.Wrap(err, "oplog: apply_remote_txn")
	}
	switch {
	case txn.SeqStart+uint64(n) <= nextSeq:
		lv, err := o.agents.SeqToLV(id.CRDTId{Agent: txn.Agent, Seq: txn.SeqStart})
		if err != nil {
			return 0, errors.Wrap(err, "oplog: apply_remote_txn idempotence check")
		}
		o.log.WithField("agent", txn.Agent).Debug("remote txn already known, ignoring")
		return lv, nil
	case txn.SeqStart < nextSeq:
		return 0, errors.Wrapf(ErrPartialOverlap, "agent %d seq [%d,%d) partially known (next seq %d)", txn.Agent, txn.SeqStart, txn.SeqStart+uint64(n), nextSeq)
	case txn.SeqStart > nextSeq:
		return 0, errors.Wrapf(ErrDataMissing, "agent %d seq %d arrived before expected next seq %d", txn.Agent, txn.SeqStart, nextSeq)
	}

	parentLVs := make([]id.LV, 0, len(txn.Parents))
	for _, p := range txn.Parents {
		lv, err := o.CRDTIdToLV(p)
		if err != nil {
			return 0, errors.Wrapf(ErrDataMissing, "oplog: remote txn parent %v", p)
		}
		parentLVs = append(parentLVs, lv)
	}
	parents := id.NewFrontier(parentLVs...)

	lvBase, err := o.assignLVs(txn.Agent, n)
	if err != nil {
		return 0, err
	}

	var span id.TimeSpan
	switch txn.Kind {
	case OpInsert:
		firstID := id.CRDTId{Agent: txn.Agent, Seq: txn.SeqStart}
		contentPos, err := o.integrateInsert(firstID, lvBase, n, txn.LeftOrigin, txn.RightOrigin)
		if err != nil {
			return 0, errors.Wrap(err, "oplog: apply_remote_txn insert")
		}
		contentStart := len(o.insContent)
		o.insContent = append(o.insContent, []rune(txn.Text)...)
		span = id.TimeSpan{Start: lvBase, End: lvBase + id.LV(n)}
		o.ops.Push(Operation{
			Span:       span,
			Kind:       OpInsert,
			Fwd:        true,
			ContentPos: ContentRange{Start: contentStart, End: contentStart + n},
			Pos:        contentPos,
		})
	case OpDelete:
		var targetSpans []id.TimeSpan
		var deleted []rune
		firstSpanSeen := false
		deletePos := 0
		for _, tgt := range txn.Targets {
			spans, err := o.seqRangeToLVSpans(tgt.Agent, tgt.SeqStart, tgt.Len)
			if err != nil {
				return 0, errors.Wrap(err, "oplog: apply_remote_txn delete target")
			}
			for _, s := range spans {
				if !firstSpanSeen {
					cur, err := o.tree.CursorAfterLV(s.Start)
					if err != nil {
						return 0, errors.Wrap(err, "oplog: apply_remote_txn delete target")
					}
					deletePos = o.tree.ContentPosOf(cur) - 1
					firstSpanSeen = true
				}
				text, err := o.originalText(s)
				if err != nil {
					return 0, errors.Wrap(err, "oplog: apply_remote_txn delete target")
				}
				already, err := o.tree.Delete(s)
				if err != nil {
					return 0, errors.Wrap(err, "oplog: apply_remote_txn delete")
				}
				for _, dbl := range already {
					o.doubleDeletes.record(dbl)
				}
				deleted = append(deleted, text...)
				targetSpans = append(targetSpans, s)
			}
		}
		contentStart := len(o.delContent)
		o.delContent = append(o.delContent, deleted...)
		span = id.TimeSpan{Start: lvBase, End: lvBase + id.LV(n)}
		o.ops.Push(Operation{
			Span:        span,
			Kind:        OpDelete,
			Fwd:         txn.Fwd,
			TargetSpans: targetSpans,
			ContentPos:  ContentRange{Start: contentStart, End: contentStart + n},
			Pos:         deletePos,
		})
	}

	if err := o.hist.Insert(parents, span); err != nil {
		return 0, errors.Wrap(err, "oplog: apply_remote_txn")
	}
	o.frontier = o.frontier.Advance(parents, span)
	o.log.WithFields(map[string]interface{}{"agent": txn.Agent, "kind": txn.Kind.String(), "len": n}).Debug("remote txn integrated")
	return lvBase, nil
}
