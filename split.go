package pkgar

import (
	"io"
	"os"
	"path/filepath"

	"github.com/redox-os/pkgar/internal/binfmt"
	"github.com/redox-os/pkgar/internal/fsops"
)

// Split reads the combined archive at archivePath and writes the
// byte-exact head (bytes [0, 136+308*count)) to headPath and the remainder
// to dataPath. No re-signing or re-hashing occurs; this is pure slicing
// (spec.md §4.6: "No re-signing; byte-exact slicing").
func Split(archivePath, headPath, dataPath string) error {
	src, err := os.Open(archivePath)
	if err != nil {
		return newErr(ErrKindIO, archivePath, err)
	}
	defer src.Close()

	fi, err := src.Stat()
	if err != nil {
		return newErr(ErrKindIO, archivePath, err)
	}
	size := fi.Size()

	headerBuf := make([]byte, binfmt.HeaderSize)
	if _, err := io.ReadFull(io.NewSectionReader(src, 0, size), headerBuf); err != nil {
		return newErr(ErrKindCorrupt, archivePath, err)
	}
	hdr, err := binfmt.UnmarshalHeader(headerBuf)
	if err != nil {
		return newErr(ErrKindCorrupt, archivePath, err)
	}

	headerAndEntries, err := binfmt.TableSize(hdr.Count)
	if err != nil {
		return newErr(ErrKindCorrupt, archivePath, err)
	}
	if size < headerAndEntries {
		return newErr(ErrKindCorrupt, archivePath, io.ErrUnexpectedEOF)
	}

	if err := copyRange(src, headPath, 0, headerAndEntries); err != nil {
		return err
	}
	return copyRange(src, dataPath, headerAndEntries, size-headerAndEntries)
}

// copyRange writes exactly n bytes read from src starting at off to a fresh
// file at dstPath, atomically (write to temp, fsync, rename).
func copyRange(src *os.File, dstPath string, off, n int64) error {
	tmp, err := os.CreateTemp(filepath.Dir(dstPath), ".pkgar-split-*")
	if err != nil {
		return newErr(ErrKindIO, dstPath, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, io.NewSectionReader(src, off, n)); err != nil {
		tmp.Close()
		return newErr(ErrKindIO, dstPath, err)
	}
	if err := fsops.SyncFile(tmp); err != nil {
		tmp.Close()
		return newErr(ErrKindIO, dstPath, err)
	}
	if err := tmp.Close(); err != nil {
		return newErr(ErrKindIO, dstPath, err)
	}
	if err := fsops.Rename(tmpPath, dstPath); err != nil {
		return newErr(ErrKindIO, dstPath, err)
	}
	return nil
}
