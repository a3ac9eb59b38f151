package encoding

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nikhilsahni/listcrdt/id"
	"github.com/nikhilsahni/listcrdt/oplog"
)

// DecodeResult carries the pieces of a decoded file that are not themselves
// part of the reconstructed OpLog.
type DecodeResult struct {
	OpLog    *oplog.OpLog
	UserData []byte
}

// positionalRecord is one decoded PositionalPatches entry, still carrying
// its full (possibly fused) length; Load re-slices it against the TimeDAG's
// finer per-entry granularity as it replays (see encodePositionalPatches).
type positionalRecord struct {
	del    bool
	fwd    bool
	length int
	pos    int
}

// timeDAGEntry is one decoded TimeDAG record: a span length plus the
// parents it was appended after, as (agent, seq) ids whose file-local
// agent index has already been mapped to the destination OpLog's AgentId
// (a rootAgentSentinel parent becomes id.Root).
type timeDAGEntry struct {
	length  int
	parents []id.CRDTId
}

// Load decodes data into a freshly created OpLog, per spec §6/§7. Loading
// into a non-empty OpLog is out of scope for this decoder: if the file's
// StartBranch frontier is non-empty the file represents an incremental
// delta rather than a from-scratch dump, and per spec §4.7/§7 that merge
// path is unsupported (ErrUnsupportedMerge). On any error the partially
// built OpLog is discarded; callers get a clean error instead of a
// half-populated instance (spec §5, §7).
func Load(data []byte) (DecodeResult, error) {
	if len(data) < headerLen+1 {
		return DecodeResult{}, errors.Wrap(ErrMalformedChunk, "encoding: file too short")
	}
	for i, b := range magicBytes {
		if data[i] != b {
			return DecodeResult{}, ErrInvalidMagic
		}
	}
	cur := newCursor(data[headerLen:])
	version, err := cur.uvarint()
	if err != nil {
		return DecodeResult{}, errors.Wrap(err, "encoding: reading protocol version")
	}
	if version != protocolVersion {
		return DecodeResult{}, errors.Wrapf(ErrUnsupportedVersion, "got %d, want %d", version, protocolVersion)
	}
	bodyStart := headerLen + cur.pos

	if err := verifyCRC(data, bodyStart); err != nil {
		return DecodeResult{}, err
	}

	reader := newChunkReader(data[bodyStart:])

	dst := oplog.New()
	var userData []byte
	var names []string
	var startBranchSeen bool
	var patchesSeen bool

	for {
		kind, chunkBody, ok, err := reader.next()
		if err != nil {
			return DecodeResult{}, err
		}
		if !ok {
			break
		}
		switch kind {
		case chunkFileInfo:
			userData, names, err = decodeFileInfo(chunkBody)
			if err != nil {
				return DecodeResult{}, err
			}
		case chunkStartBranch:
			startBranchSeen = true
			empty, err := decodeStartBranchIsEmpty(chunkBody)
			if err != nil {
				return DecodeResult{}, err
			}
			if !empty {
				return DecodeResult{}, errors.Wrap(ErrUnsupportedMerge, "encoding: file's start branch is non-empty")
			}
		case chunkPatches:
			patchesSeen = true
			if err := decodePatches(dst, names, chunkBody); err != nil {
				return DecodeResult{}, err
			}
		case chunkCRC:
			// Already verified above; nothing further to do.
		default:
			logrus.WithField("chunk_type", uint32(kind)).Debug("encoding: skipping unknown chunk")
		}
	}
	if !startBranchSeen {
		return DecodeResult{}, errors.Wrap(ErrMissingChunk, "encoding: missing StartBranch chunk")
	}
	if !patchesSeen {
		return DecodeResult{}, errors.Wrap(ErrMissingChunk, "encoding: missing Patches chunk")
	}
	return DecodeResult{OpLog: dst, UserData: userData}, nil
}

// verifyCRC recomputes the checksum over every byte before the trailing CRC
// chunk and compares it against the stored value. offsetAfterVersion is the
// byte offset in data immediately after the version varint, i.e. where
// top-level chunks begin.
func verifyCRC(data []byte, offsetAfterVersion int) error {
	reader := newChunkReader(data[offsetAfterVersion:])
	for {
		start := reader.pos
		kind, chunkBody, ok, err := reader.next()
		if err != nil {
			return errors.Wrap(err, "encoding: scanning for CRC chunk")
		}
		if !ok {
			return errors.Wrap(ErrMissingChunk, "encoding: no CRC chunk present")
		}
		if kind == chunkCRC {
			if len(chunkBody) != 4 {
				return errors.Wrap(ErrMalformedChunk, "encoding: CRC chunk must be 4 bytes")
			}
			want := uint32(chunkBody[0]) | uint32(chunkBody[1])<<8 | uint32(chunkBody[2])<<16 | uint32(chunkBody[3])<<24
			got := crcOf(data[:offsetAfterVersion+start])
			if got != want {
				return ErrChecksumFailed
			}
			return nil
		}
	}
}

func decodeFileInfo(body []byte) (userData []byte, names []string, err error) {
	r := newChunkReader(body)
	for {
		kind, chunkBody, ok, err := r.next()
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			break
		}
		switch kind {
		case chunkUserData:
			userData = append([]byte(nil), chunkBody...)
		case chunkAgentNames:
			names, err = decodeAgentNames(chunkBody)
			if err != nil {
				return nil, nil, err
			}
		default:
			logrus.WithField("chunk_type", uint32(kind)).Debug("encoding: skipping unknown FileInfo sub-chunk")
		}
	}
	return userData, names, nil
}

func decodeAgentNames(body []byte) ([]string, error) {
	c := newCursor(body)
	var names []string
	for c.remaining() > 0 {
		name, err := c.lenPrefixedString()
		if err != nil {
			return nil, errors.Wrap(err, "encoding: decoding agent names")
		}
		names = append(names, name)
	}
	return names, nil
}

// decodeStartBranchIsEmpty reports whether the nested Frontier chunk names
// zero ids, the only start-branch this decoder can load (spec §4.7: a
// disagreeing/non-empty start frontier means an overlapping merge).
func decodeStartBranchIsEmpty(body []byte) (bool, error) {
	r := newChunkReader(body)
	frontierBody, err := r.expect(chunkFrontier)
	if err != nil {
		return false, err
	}
	return len(frontierBody) == 0, nil
}

func decodePatches(dst *oplog.OpLog, names []string, body []byte) error {
	r := newChunkReader(body)
	var insContent, delContent string
	var agentAssignmentBody, positionalBody, timeDAGBody []byte
	sawAgentAssignment, sawPositional, sawTimeDAG := false, false, false

	for {
		kind, chunkBody, ok, err := r.next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		switch kind {
		case chunkInsertedContent:
			insContent = string(chunkBody)
		case chunkDeletedContent:
			delContent = string(chunkBody)
		case chunkAgentAssignment:
			agentAssignmentBody = chunkBody
			sawAgentAssignment = true
		case chunkPositionalPatches:
			positionalBody = chunkBody
			sawPositional = true
		case chunkTimeDAG:
			timeDAGBody = chunkBody
			sawTimeDAG = true
		default:
			logrus.WithField("chunk_type", uint32(kind)).Debug("encoding: skipping unknown Patches sub-chunk")
		}
	}
	if !sawAgentAssignment {
		return errors.Wrap(ErrMissingChunk, "encoding: missing AgentAssignment chunk")
	}
	if !sawPositional {
		return errors.Wrap(ErrMissingChunk, "encoding: missing PositionalPatches chunk")
	}
	if !sawTimeDAG {
		return errors.Wrap(ErrMissingChunk, "encoding: missing TimeDAG chunk")
	}

	dst.SetContent([]rune(insContent), []rune(delContent))

	fileAgents := make([]id.AgentId, len(names))
	for i, n := range names {
		fileAgents[i] = dst.GetOrCreateAgent(n)
	}

	if err := decodeAgentAssignment(dst, fileAgents, agentAssignmentBody); err != nil {
		return err
	}
	records, err := decodePositionalPatches(positionalBody)
	if err != nil {
		return err
	}
	entries, err := decodeTimeDAG(timeDAGBody, fileAgents)
	if err != nil {
		return err
	}
	if err := replay(dst, records, entries); err != nil {
		return err
	}
	return nil
}

func decodeAgentAssignment(dst *oplog.OpLog, fileAgents []id.AgentId, body []byte) error {
	c := newCursor(body)
	nextSeq := make(map[id.AgentId]uint64)
	var lvCursor id.LV
	for c.remaining() > 0 {
		tagged, err := c.uvarint()
		if err != nil {
			return errors.Wrap(err, "encoding: decoding agent assignment")
		}
		hasJump := stripBit(&tagged)
		fileIdx := tagged
		if int(fileIdx) >= len(fileAgents) {
			return errors.Wrapf(ErrMalformedChunk, "encoding: agent assignment references unknown file-local agent %d", fileIdx)
		}
		agent := fileAgents[fileIdx]
		length, err := c.uvarint()
		if err != nil {
			return errors.Wrap(err, "encoding: decoding agent assignment")
		}
		jump := int64(0)
		if hasJump {
			jump, err = c.zigzag()
			if err != nil {
				return errors.Wrap(err, "encoding: decoding agent assignment jump")
			}
		}
		expected := nextSeq[agent]
		seqBase := uint64(int64(expected) + jump)
		if err := dst.DecodeAgentSpan(id.CRDTSpan{Agent: agent, SeqBase: seqBase, Len: length, LVBase: lvCursor}); err != nil {
			return errors.Wrap(err, "encoding: decoding agent assignment")
		}
		nextSeq[agent] = seqBase + length
		lvCursor += id.LV(length)
	}
	return nil
}

func decodePositionalPatches(body []byte) ([]positionalRecord, error) {
	c := newCursor(body)
	var out []positionalRecord
	runningPos := 0
	for c.remaining() > 0 {
		if c.remaining() < 1 {
			return nil, errors.Wrap(ErrMalformedChunk, "encoding: truncated positional patch flags")
		}
		flags := c.data[c.pos]
		c.pos++
		length, err := c.uvarint()
		if err != nil {
			return nil, errors.Wrap(err, "encoding: decoding positional patch length")
		}
		diff := int64(0)
		if flags&posFlagDiffNonzero != 0 {
			diff, err = c.zigzag()
			if err != nil {
				return nil, errors.Wrap(err, "encoding: decoding positional patch diff")
			}
		}
		pos := runningPos + int(diff)
		del := flags&posFlagDel != 0
		fwd := flags&posFlagFwd != 0
		out = append(out, positionalRecord{del: del, fwd: fwd, length: int(length), pos: pos})
		if del {
			runningPos = pos
		} else {
			runningPos = pos + int(length)
		}
	}
	return out, nil
}

func decodeTimeDAG(body []byte, fileAgents []id.AgentId) ([]timeDAGEntry, error) {
	c := newCursor(body)
	var out []timeDAGEntry
	for c.remaining() > 0 {
		length, err := c.uvarint()
		if err != nil {
			return nil, errors.Wrap(err, "encoding: decoding time DAG length")
		}
		numParents, err := c.uvarint()
		if err != nil {
			return nil, errors.Wrap(err, "encoding: decoding time DAG parent count")
		}
		parents := make([]id.CRDTId, 0, numParents)
		for i := uint64(0); i < numParents; i++ {
			agentTag, err := c.uvarint()
			if err != nil {
				return nil, errors.Wrap(err, "encoding: decoding time DAG parent agent")
			}
			seq, err := c.uvarint()
			if err != nil {
				return nil, errors.Wrap(err, "encoding: decoding time DAG parent seq")
			}
			if agentTag == rootAgentSentinel {
				parents = append(parents, id.Root)
				continue
			}
			if int(agentTag) >= len(fileAgents) {
				return nil, errors.Wrapf(ErrMalformedChunk, "encoding: time DAG references unknown file-local agent %d", agentTag)
			}
			parents = append(parents, id.CRDTId{Agent: fileAgents[agentTag], Seq: seq})
		}
		out = append(out, timeDAGEntry{length: int(length), parents: parents})
	}
	return out, nil
}

// replay walks the TimeDAG entries -- the finer of the two RLE streams,
// since each one corresponds to exactly one original push with its own
// parents -- re-slicing the (possibly further-fused) PositionalPatches
// records to match. See encodePositionalPatches and DESIGN.md.
func replay(dst *oplog.OpLog, records []positionalRecord, entries []timeDAGEntry) error {
	var lvCursor id.LV
	var insCursor, delCursor int
	recIdx := 0
	consumedInRec := 0

	for _, e := range entries {
		if recIdx >= len(records) {
			return errors.Wrap(ErrLengthMismatch, "encoding: TimeDAG longer than PositionalPatches")
		}
		rec := records[recIdx]
		if consumedInRec+e.length > rec.length {
			return errors.Wrap(ErrLengthMismatch, "encoding: TimeDAG entry crosses a PositionalPatches record boundary")
		}

		parentLVs := make([]id.LV, 0, len(e.parents))
		for _, p := range e.parents {
			if p.IsRoot() {
				parentLVs = append(parentLVs, id.RootTime)
				continue
			}
			lv, err := dst.CRDTIdToLV(p)
			if err != nil {
				return errors.Wrapf(ErrDataMissing, "encoding: time DAG parent %v: %v", p, err)
			}
			parentLVs = append(parentLVs, lv)
		}
		parents := id.NewFrontier(parentLVs...)

		if rec.del {
			pos := rec.pos
			if err := dst.DecodeDelete(lvCursor, parents, pos, e.length, rec.fwd, delCursor); err != nil {
				return errors.Wrap(err, "encoding: replaying delete")
			}
			delCursor += e.length
		} else {
			pos := rec.pos + consumedInRec
			if err := dst.DecodeInsert(lvCursor, parents, pos, e.length, insCursor); err != nil {
				return errors.Wrap(err, "encoding: replaying insert")
			}
			insCursor += e.length
		}

		lvCursor += id.LV(e.length)
		consumedInRec += e.length
		if consumedInRec == rec.length {
			recIdx++
			consumedInRec = 0
		}
	}
	if recIdx != len(records) {
		return errors.Wrap(ErrLengthMismatch, "encoding: PositionalPatches longer than TimeDAG")
	}
	return nil
}
