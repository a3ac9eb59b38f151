// Package encoding implements the binary container format described in
// spec §6/§7 (component C7): a magic-prefixed, versioned header followed
// by typed, length-prefixed chunks, integers packed as unsigned LEB128
// varints (optionally zigzag-mapped for signed deltas), and a trailing
// CRC32 checksum over everything that precedes it. It is grounded on the
// diamond-types Rust decoder this spec was distilled from
// (original_source/crates/diamond-types/src/list/encoding/decode_oplog.rs)
// for the exact bit layout of each chunk body.
package encoding

import "github.com/pkg/errors"

// Sentinel errors, surfaced per the taxonomy in spec §7.
var (
	ErrInvalidMagic       = errors.New("encoding: not a list-crdt container (bad magic)")
	ErrUnsupportedVersion = errors.New("encoding: unsupported container protocol version")
	ErrMalformedChunk     = errors.New("encoding: malformed or truncated chunk")
	ErrMissingChunk       = errors.New("encoding: required chunk absent")
	ErrChecksumFailed     = errors.New("encoding: CRC32 checksum mismatch")
	ErrUnsupportedMerge   = errors.New("encoding: decoding into a non-empty OpLog is not supported")
	ErrLengthMismatch     = errors.New("encoding: chunk lengths disagree on the total operation count")
	ErrDataMissing        = errors.New("encoding: parent references unknown local time")
)
