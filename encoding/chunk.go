package encoding

import (
	"hash/crc32"

	"github.com/pkg/errors"
)

// magicBytes identifies a list-crdt container file, written as the first
// two bytes of every encoded blob, per spec §6.
var magicBytes = [2]byte{'D', 'T'}

// reservedHeaderLen is the number of zero bytes written immediately after
// magicBytes, reserved for future header fields (spec §6). A decoder does
// not validate their contents, only their presence.
const reservedHeaderLen = 6

// headerLen is the total byte length of magicBytes plus the reserved run,
// i.e. where the protocol version varint begins.
const headerLen = len(magicBytes) + reservedHeaderLen

// protocolVersion is bumped whenever a chunk's wire layout changes in a
// way older decoders can't tolerate.
const protocolVersion = 1

// chunkType tags the body that follows a chunk header. Values and their
// rough groupings (file-level metadata, branch/version bookkeeping, patch
// data) mirror diamond-types' Chunk enum.
type chunkType uint32

const (
	chunkFileInfo          chunkType = 1
	chunkUserData          chunkType = 2
	chunkAgentNames        chunkType = 3
	chunkStartBranch       chunkType = 10
	chunkFrontier          chunkType = 11
	chunkPatches           chunkType = 20
	chunkInsertedContent   chunkType = 21
	chunkDeletedContent    chunkType = 22
	chunkAgentAssignment   chunkType = 23
	chunkPositionalPatches chunkType = 24
	chunkTimeDAG           chunkType = 25
	chunkCRC               chunkType = 100
)

// writeChunk appends a framed (type, length, body) record to buf: a
// typed/length-prefixed chunk per spec §6.
func writeChunk(buf []byte, kind chunkType, body []byte) []byte {
	buf = writeUvarint(buf, uint64(kind))
	buf = writeUvarint(buf, uint64(len(body)))
	return append(buf, body...)
}

// chunkReader walks a flat sequence of framed chunks such as the Patches
// chunk's own body (which nests InsertedContent/AgentAssignment/... as
// child chunks) or the top-level container.
type chunkReader struct {
	*cursor
}

func newChunkReader(data []byte) *chunkReader {
	return &chunkReader{cursor: newCursor(data)}
}

// next reads the next (type, body) pair, or ok=false at end of input.
func (r *chunkReader) next() (kind chunkType, body []byte, ok bool, err error) {
	if r.remaining() == 0 {
		return 0, nil, false, nil
	}
	k, err := r.uvarint()
	if err != nil {
		return 0, nil, false, err
	}
	n, err := r.uvarint()
	if err != nil {
		return 0, nil, false, err
	}
	b, err := r.bytes(int(n))
	if err != nil {
		return 0, nil, false, err
	}
	return chunkType(k), b, true, nil
}

// expect reads the next chunk and requires it to have the given type.
func (r *chunkReader) expect(kind chunkType) ([]byte, error) {
	k, body, ok, err := r.next()
	if err != nil {
		return nil, err
	}
	if !ok || k != kind {
		return nil, errors.Wrapf(ErrMissingChunk, "expected chunk type %d", kind)
	}
	return body, nil
}

// crcOf computes the checksum the CRC chunk stores: IEEE CRC32 over every
// byte preceding the CRC chunk itself (header + all prior chunks).
func crcOf(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}
