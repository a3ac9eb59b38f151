package encoding

import (
	"github.com/sirupsen/logrus"

	"github.com/nikhilsahni/listcrdt/id"
	"github.com/nikhilsahni/listcrdt/oplog"
)

// EncodeOptions carries the optional pieces of a FileInfo chunk (spec §6).
type EncodeOptions struct {
	// UserData is opaque application bytes stashed in the FileInfo chunk.
	// Never interpreted by this package.
	UserData []byte
}

// Encode serializes the whole of o into the container format described in
// spec §6: a magic header, a FileInfo chunk (agent table + optional user
// data), a StartBranch chunk (always the empty/ROOT frontier -- this
// encoder only supports dumping an OpLog from scratch, never an incremental
// delta), a Patches chunk carrying the run-length operation log, and a
// trailing CRC32 chunk.
func Encode(o *oplog.OpLog, opts EncodeOptions) []byte {
	var buf []byte
	buf = append(buf, magicBytes[:]...)
	buf = append(buf, make([]byte, reservedHeaderLen)...)
	buf = writeUvarint(buf, protocolVersion)

	buf = append(buf, encodeFileInfo(o, opts)...)
	buf = append(buf, encodeStartBranch()...)
	buf = append(buf, encodePatches(o)...)

	crc := crcOf(buf)
	crcBody := make([]byte, 4)
	crcBody[0] = byte(crc)
	crcBody[1] = byte(crc >> 8)
	crcBody[2] = byte(crc >> 16)
	crcBody[3] = byte(crc >> 24)
	buf = writeChunk(buf, chunkCRC, crcBody)
	return buf
}

func encodeFileInfo(o *oplog.OpLog, opts EncodeOptions) []byte {
	var body []byte
	if opts.UserData != nil {
		body = writeChunk(body, chunkUserData, opts.UserData)
	}
	var names []byte
	for _, n := range o.AgentNames() {
		names = writeLenPrefixed(names, []byte(n))
	}
	body = writeChunk(body, chunkAgentNames, names)
	return writeChunk(nil, chunkFileInfo, body)
}

// encodeStartBranch writes the (always empty, for a from-scratch dump)
// frontier this file assumes is already present at the destination.
func encodeStartBranch() []byte {
	body := writeChunk(nil, chunkFrontier, encodeFrontierIDs(nil))
	return writeChunk(nil, chunkStartBranch, body)
}

// encodeFrontierIDs writes a Frontier chunk body: a sequence of
// (mapped_agent<<1 | has_more, seq) pairs, spec §6. A Frontier never names
// id.Root as an element (the root cut is the empty Frontier), so every id
// here carries a real file-local agent index.
func encodeFrontierIDs(ids []id.CRDTId) []byte {
	var body []byte
	for i, cid := range ids {
		hasMore := i < len(ids)-1
		body = writeUvarint(body, withBit(uint64(cid.Agent), hasMore))
		body = writeUvarint(body, cid.Seq)
	}
	return body
}

// rootAgentSentinel marks id.Root in a TimeDAG parent entry, which (unlike
// a Frontier element) legitimately needs to name the root. It is written
// with a plain writeUvarint, never through withBit/stripBit, since shifting
// this value left would silently drop its top bit.
const rootAgentSentinel = ^uint64(0)

func encodePatches(o *oplog.OpLog) []byte {
	var body []byte
	if ins := string(o.InsertedContent()); ins != "" {
		body = writeChunk(body, chunkInsertedContent, []byte(ins))
	}
	if del := string(o.DeletedContent()); del != "" {
		body = writeChunk(body, chunkDeletedContent, []byte(del))
	}
	body = writeChunk(body, chunkAgentAssignment, encodeAgentAssignment(o))
	body = writeChunk(body, chunkPositionalPatches, encodePositionalPatches(o))
	body = writeChunk(body, chunkTimeDAG, encodeTimeDAG(o))
	return writeChunk(nil, chunkPatches, body)
}

// encodeAgentAssignment packs client_with_lv (spec §4.2) as an RLE of
// (agent_idx with jump flag, length, optional zigzag jump): jump is the
// signed delta between this run's seq base and the seq the decoder would
// otherwise expect next for that agent, letting interleaved agents compress
// to almost nothing when each one's seqs simply keep advancing in lockstep
// with LV order.
func encodeAgentAssignment(o *oplog.OpLog) []byte {
	var body []byte
	nextSeq := make(map[id.AgentId]uint64)
	for _, span := range o.ClientSpans() {
		expected := nextSeq[span.Agent]
		jump := int64(span.SeqBase) - int64(expected)
		hasJump := jump != 0
		body = writeUvarint(body, withBit(uint64(span.Agent), hasJump))
		body = writeUvarint(body, span.Len)
		if hasJump {
			body = writeZigzag(body, jump)
		}
		nextSeq[span.Agent] = span.SeqBase + span.Len
	}
	return body
}

const (
	posFlagDel         = 1 << 0
	posFlagFwd         = 1 << 1
	posFlagDiffNonzero = 1 << 2
)

// encodePositionalPatches packs the Operation RLE as an OT-style cursor
// patch stream (spec §6): for each run, whether it is a delete, its
// direction, its length, and the signed diff between its content position
// and the position a purely-sequential edit stream would already be sitting
// at. Target spans are deliberately not serialized -- a decoder replays
// each run through the same position-to-origin walk a live edit would use
// (oplog.DecodeInsert / oplog.DecodeDelete), re-deriving origins/targets
// instead of storing them twice. See DESIGN.md.
func encodePositionalPatches(o *oplog.OpLog) []byte {
	var body []byte
	runningPos := 0
	for _, op := range o.IterOps() {
		flags := byte(0)
		if op.Kind == oplog.OpDelete {
			flags |= posFlagDel
			if op.Fwd {
				flags |= posFlagFwd
			}
		}
		diff := op.Pos - runningPos
		if diff != 0 {
			flags |= posFlagDiffNonzero
		}
		body = append(body, flags)
		body = writeUvarint(body, uint64(op.Span.Len()))
		if diff != 0 {
			body = writeZigzag(body, int64(diff))
		}
		if op.Kind == oplog.OpInsert {
			runningPos = op.Pos + op.Span.Len()
		} else {
			runningPos = op.Pos
		}
	}
	return body
}

// encodeTimeDAG packs the History DAG as, per entry, its span length
// followed by its parents. Each parent is written as a (file-local agent
// index, seq) pair resolved through the agent table; id.Root is written
// with the reserved rootAgentSentinel index. Spec §6.
func encodeTimeDAG(o *oplog.OpLog) []byte {
	var body []byte
	for _, e := range o.IterHistory() {
		body = writeUvarint(body, uint64(e.Span.Len()))
		body = writeUvarint(body, uint64(len(e.Parents)))
		for _, p := range e.Parents {
			cid := id.Root
			if p != id.RootTime {
				var err error
				cid, err = o.LVToCRDTId(p)
				if err != nil {
					logrus.WithError(err).Error("encoding: parent lv missing from agent table; writing as ROOT")
					cid = id.Root
				}
			}
			agentTag := rootAgentSentinel
			if !cid.IsRoot() {
				agentTag = uint64(cid.Agent)
			}
			body = writeUvarint(body, agentTag)
			body = writeUvarint(body, cid.Seq)
		}
	}
	return body
}
