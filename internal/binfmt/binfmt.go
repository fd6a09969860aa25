// Package binfmt encodes and decodes the packed, little-endian records that
// make up a pkgar header: the 136-byte header prefix and the 308-byte entry
// records that follow it. Every field is read and written explicitly with
// encoding/binary; nothing here ever aliases a Go struct onto the wire bytes,
// so behavior does not depend on host endianness or struct padding.
package binfmt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// HeaderSize is the size in bytes of the fixed header prefix.
	HeaderSize = 64 + 32 + 32 + 8

	// EntrySize is the size in bytes of one fixed entry record.
	EntrySize = 32 + 8 + 8 + 4 + 256

	// PathFieldSize is the width of the NUL-padded path field in an entry.
	PathFieldSize = 256

	sigOff   = 0
	pubOff   = 64
	hashOff  = 96
	countOff = 128

	// maxCount bounds Header.Count to what HeaderSize+Count*EntrySize can
	// express as an int64 without overflowing, so callers can size buffers
	// and section readers safely. A header claiming more entries than this
	// is corrupt by definition — no real archive reaches this count.
	maxCount = uint64(math.MaxInt64-HeaderSize) / EntrySize
)

// Header is the decoded form of the 136-byte header prefix.
type Header struct {
	Signature   [64]byte
	PublicKey   [32]byte
	EntriesHash [32]byte
	Count       uint64
}

// TableSize returns the total byte length of the header plus count entry
// records, as an int64 safe for slicing and SectionReader math. It rejects
// any count large enough that HeaderSize+count*EntrySize would overflow
// int64, since such a count can only come from a corrupt or hostile header
// — every real archive's count is bounded by how many files fit on a disk.
func TableSize(count uint64) (int64, error) {
	if count > maxCount {
		return 0, fmt.Errorf("binfmt: entry count %d exceeds the maximum representable table size", count)
	}
	return int64(HeaderSize) + int64(count)*EntrySize, nil
}

// Marshal writes h into a freshly allocated 136-byte slice.
func (h Header) Marshal() []byte {
	b := make([]byte, HeaderSize)
	copy(b[sigOff:], h.Signature[:])
	copy(b[pubOff:], h.PublicKey[:])
	copy(b[hashOff:], h.EntriesHash[:])
	binary.LittleEndian.PutUint64(b[countOff:], h.Count)
	return b
}

// UnmarshalHeader decodes the 136-byte header prefix. b must be exactly
// HeaderSize bytes.
func UnmarshalHeader(b []byte) (Header, error) {
	if len(b) != HeaderSize {
		return Header{}, fmt.Errorf("binfmt: header must be %d bytes, got %d", HeaderSize, len(b))
	}
	var h Header
	copy(h.Signature[:], b[sigOff:pubOff])
	copy(h.PublicKey[:], b[pubOff:hashOff])
	copy(h.EntriesHash[:], b[hashOff:countOff])
	h.Count = binary.LittleEndian.Uint64(b[countOff:])
	return h, nil
}

// Preimage returns the exact 72-byte signature preimage:
// public_key ∥ entries_hash ∥ count (little-endian).
func Preimage(publicKey, entriesHash [32]byte, count uint64) [72]byte {
	var p [72]byte
	copy(p[0:32], publicKey[:])
	copy(p[32:64], entriesHash[:])
	binary.LittleEndian.PutUint64(p[64:72], count)
	return p
}

// Entry is the decoded form of one 308-byte entry record.
type Entry struct {
	Hash   [32]byte
	Offset uint64
	Size   uint64
	Mode   uint32
	Path   string
}

// Marshal encodes e into a freshly allocated 308-byte slice. It returns an
// error if Path does not fit (including its NUL terminator) in the 256-byte
// path field, or contains a NUL byte before the end.
func (e Entry) Marshal() ([]byte, error) {
	if i := bytes.IndexByte([]byte(e.Path), 0); i >= 0 {
		return nil, fmt.Errorf("binfmt: path contains a NUL byte at index %d", i)
	}
	if len(e.Path)+1 > PathFieldSize {
		return nil, fmt.Errorf("binfmt: path %q is %d bytes, exceeds %d including terminator", e.Path, len(e.Path)+1, PathFieldSize)
	}

	b := make([]byte, EntrySize)
	copy(b[0:32], e.Hash[:])
	binary.LittleEndian.PutUint64(b[32:40], e.Offset)
	binary.LittleEndian.PutUint64(b[40:48], e.Size)
	binary.LittleEndian.PutUint32(b[48:52], e.Mode)
	copy(b[52:52+len(e.Path)], e.Path)
	// The rest of the path field is already zero from make([]byte, ...).
	return b, nil
}

// UnmarshalEntry decodes one 308-byte entry record. b must be exactly
// EntrySize bytes.
func UnmarshalEntry(b []byte) (Entry, error) {
	if len(b) != EntrySize {
		return Entry{}, fmt.Errorf("binfmt: entry must be %d bytes, got %d", EntrySize, len(b))
	}
	var e Entry
	copy(e.Hash[:], b[0:32])
	e.Offset = binary.LittleEndian.Uint64(b[32:40])
	e.Size = binary.LittleEndian.Uint64(b[40:48])
	e.Mode = binary.LittleEndian.Uint32(b[48:52])

	pathField := b[52:EntrySize]
	nul := bytes.IndexByte(pathField, 0)
	if nul < 0 {
		return Entry{}, fmt.Errorf("binfmt: path field has no NUL terminator")
	}
	for _, c := range pathField[nul:] {
		if c != 0 {
			return Entry{}, fmt.Errorf("binfmt: non-zero byte after path terminator")
		}
	}
	e.Path = string(pathField[:nul])
	return e, nil
}

// MarshalEntries encodes entries in order into one contiguous buffer, the
// literal on-disk bytes that the entries_hash is computed over.
func MarshalEntries(entries []Entry) ([]byte, error) {
	b := make([]byte, 0, len(entries)*EntrySize)
	for i, e := range entries {
		enc, err := e.Marshal()
		if err != nil {
			return nil, fmt.Errorf("binfmt: entry %d: %w", i, err)
		}
		b = append(b, enc...)
	}
	return b, nil
}

// UnmarshalEntries decodes count contiguous entry records from b.
func UnmarshalEntries(b []byte, count uint64) ([]Entry, error) {
	if uint64(len(b)) != count*EntrySize {
		return nil, fmt.Errorf("binfmt: entry table must be %d bytes for %d entries, got %d", count*EntrySize, count, len(b))
	}
	entries := make([]Entry, count)
	for i := uint64(0); i < count; i++ {
		e, err := UnmarshalEntry(b[i*EntrySize : (i+1)*EntrySize])
		if err != nil {
			return nil, fmt.Errorf("binfmt: entry %d: %w", i, err)
		}
		entries[i] = e
	}
	return entries, nil
}
