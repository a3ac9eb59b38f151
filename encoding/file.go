package encoding

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/nikhilsahni/listcrdt/oplog"
)

// SaveFile encodes o and writes it to path, resolving the "atomic rename on
// save" open question (spec §9) by writing to a sibling temp file, fsyncing
// it, then renaming over the destination: a reader can never observe a
// half-written container, and a crash mid-write leaves path untouched.
func SaveFile(path string, o *oplog.OpLog, opts EncodeOptions) error {
	data := Encode(o, opts)
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "encoding: creating temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "encoding: writing temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "encoding: fsyncing temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "encoding: closing temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "encoding: renaming temp file into place")
	}
	return nil
}

// LoadFile reads and decodes the container file at path.
func LoadFile(path string) (DecodeResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DecodeResult{}, errors.Wrap(err, "encoding: reading file")
	}
	return Load(data)
}
