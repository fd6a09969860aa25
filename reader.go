package pkgar

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/redox-os/pkgar/internal/binfmt"
	"github.com/redox-os/pkgar/internal/blakehash"
	"github.com/redox-os/pkgar/internal/sig"
	"github.com/redox-os/pkgar/internal/walkorder"
)

// Reader is a parsed, signature-verified archive: a header, its entry
// vector, and random access to the data region (absent for a header-only
// reader). Construction performs every check in spec.md §4.4; once a Reader
// exists, Entries and ReadFile never re-verify the signature.
type Reader struct {
	header  binfmt.Header
	entries []Entry
	data    io.ReaderAt // nil when no data region is available
	dataLen int64
	closer  io.Closer // non-nil when data is backed by a file this Reader opened
}

// Close releases any file handle this Reader opened for data access. It is
// a no-op for readers built over an in-memory buffer or with no data
// region.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// offsetReaderAt adapts an io.ReaderAt whose zero offset is not byte zero of
// the logical data region — the combined single-file case, where the data
// region begins after the header and entry table.
type offsetReaderAt struct {
	r    io.ReaderAt
	base int64
}

func (o offsetReaderAt) ReadAt(p []byte, off int64) (int, error) {
	return o.r.ReadAt(p, off+o.base)
}

// OpenFile opens a single combined .pkgar file.
func OpenFile(path string, trust TrustSet) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newErr(ErrKindIO, path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, newErr(ErrKindIO, path, err)
	}
	size := fi.Size()

	headerBuf := make([]byte, binfmt.HeaderSize)
	if _, err := io.ReadFull(io.NewSectionReader(f, 0, size), headerBuf); err != nil {
		return nil, newErr(ErrKindCorrupt, path, fmt.Errorf("truncated header: %w", err))
	}
	hdr, err := binfmt.UnmarshalHeader(headerBuf)
	if err != nil {
		return nil, newErr(ErrKindCorrupt, path, err)
	}

	headerAndEntries, err := binfmt.TableSize(hdr.Count)
	if err != nil {
		return nil, newErr(ErrKindCorrupt, path, err)
	}
	if size < headerAndEntries {
		return nil, newErr(ErrKindCorrupt, path, fmt.Errorf("archive is %d bytes, need at least %d for %d entries", size, headerAndEntries, hdr.Count))
	}

	entriesLen := headerAndEntries - int64(binfmt.HeaderSize)
	entryBuf := make([]byte, entriesLen)
	if _, err := io.ReadFull(io.NewSectionReader(f, int64(binfmt.HeaderSize), entriesLen), entryBuf); err != nil {
		return nil, newErr(ErrKindCorrupt, path, fmt.Errorf("truncated entry table: %w", err))
	}

	headerOnly := size == headerAndEntries
	var data io.ReaderAt
	var dataLen int64
	var closer io.Closer
	if !headerOnly {
		realFile, err := os.Open(path)
		if err != nil {
			return nil, newErr(ErrKindIO, path, err)
		}
		data = offsetReaderAt{r: realFile, base: headerAndEntries}
		dataLen = size - headerAndEntries
		closer = realFile
	}

	return buildReader(hdr, entryBuf, data, dataLen, closer, trust)
}

// OpenSplit opens a split-form archive: a head file (.pkgar_head) and an
// optional data file (.pkgar_data). dataPath == "" constructs a
// header-only reader — the header-only download case spec.md §1 exists for.
func OpenSplit(headPath, dataPath string, trust TrustSet) (*Reader, error) {
	headBytes, err := os.ReadFile(headPath)
	if err != nil {
		return nil, newErr(ErrKindIO, headPath, err)
	}
	if len(headBytes) < binfmt.HeaderSize {
		return nil, newErr(ErrKindCorrupt, headPath, fmt.Errorf("head file is %d bytes, shorter than the %d-byte header", len(headBytes), binfmt.HeaderSize))
	}
	hdr, err := binfmt.UnmarshalHeader(headBytes[:binfmt.HeaderSize])
	if err != nil {
		return nil, newErr(ErrKindCorrupt, headPath, err)
	}

	headerAndEntries, err := binfmt.TableSize(hdr.Count)
	if err != nil {
		return nil, newErr(ErrKindCorrupt, headPath, err)
	}
	if int64(len(headBytes)) != headerAndEntries {
		return nil, newErr(ErrKindCorrupt, headPath, fmt.Errorf("head file is %d bytes, want exactly %d for %d entries", len(headBytes), headerAndEntries, hdr.Count))
	}
	entryBuf := headBytes[binfmt.HeaderSize:]

	var data io.ReaderAt
	var dataLen int64
	var closer io.Closer
	if dataPath != "" {
		df, err := os.Open(dataPath)
		if err != nil {
			return nil, newErr(ErrKindIO, dataPath, err)
		}
		fi, err := df.Stat()
		if err != nil {
			return nil, newErr(ErrKindIO, dataPath, err)
		}
		data = offsetReaderAt{r: df, base: 0}
		dataLen = fi.Size()
		closer = df
	}

	return buildReader(hdr, entryBuf, data, dataLen, closer, trust)
}

// OpenMemory constructs a Reader directly from an in-memory buffer holding a
// full combined archive.
func OpenMemory(buf []byte, trust TrustSet) (*Reader, error) {
	if len(buf) < binfmt.HeaderSize {
		return nil, newErr(ErrKindCorrupt, "", fmt.Errorf("buffer is %d bytes, shorter than the %d-byte header", len(buf), binfmt.HeaderSize))
	}
	hdr, err := binfmt.UnmarshalHeader(buf[:binfmt.HeaderSize])
	if err != nil {
		return nil, newErr(ErrKindCorrupt, "", err)
	}

	headerAndEntries, err := binfmt.TableSize(hdr.Count)
	if err != nil {
		return nil, newErr(ErrKindCorrupt, "", err)
	}
	if int64(len(buf)) < headerAndEntries {
		return nil, newErr(ErrKindCorrupt, "", fmt.Errorf("buffer is %d bytes, need at least %d for %d entries", len(buf), headerAndEntries, hdr.Count))
	}
	entryBuf := buf[binfmt.HeaderSize:headerAndEntries]

	var data io.ReaderAt
	var dataLen int64
	if int64(len(buf)) > headerAndEntries {
		data = offsetReaderAt{r: bytes.NewReader(buf), base: headerAndEntries}
		dataLen = int64(len(buf)) - headerAndEntries
	}

	return buildReader(hdr, entryBuf, data, dataLen, nil, trust)
}

// buildReader runs every check in spec.md §4.4 steps 3-5: entries-hash
// comparison, the trust-set check on the embedded public key, signature
// verification, then per-entry invariant validation.
func buildReader(hdr binfmt.Header, entryBuf []byte, data io.ReaderAt, dataLen int64, closer io.Closer, trust TrustSet) (rd *Reader, err error) {
	defer func() {
		if err != nil && closer != nil {
			closer.Close()
		}
	}()

	gotHash := blakehash.SumBytes(entryBuf)
	if gotHash != hdr.EntriesHash {
		return nil, newErr(ErrKindCorrupt, "", fmt.Errorf("entries hash mismatch"))
	}

	var pub PublicKey
	copy(pub[:], hdr.PublicKey[:])
	if !trust.Trusts(pub) {
		return nil, &Error{Kind: ErrKindUntrustedKey, Path: pub.String()}
	}

	preimage := binfmt.Preimage(hdr.PublicKey, hdr.EntriesHash, hdr.Count)
	if !sig.Verify(hdr.PublicKey[:], preimage[:], hdr.Signature[:]) {
		return nil, &Error{Kind: ErrKindBadSignature}
	}

	rawEntries, err := binfmt.UnmarshalEntries(entryBuf, hdr.Count)
	if err != nil {
		return nil, newErr(ErrKindCorrupt, "", err)
	}

	seen := walkorder.NewSet()
	entries := make([]Entry, 0, len(rawEntries))
	var prevPath string
	for i, re := range rawEntries {
		if err := validatePath(re.Path); err != nil {
			return nil, newEntryErr(i, err)
		}
		// Sortedness (invariant 5) and uniqueness (invariant 6) are checked
		// independently: this only rejects a path that sorts *before* the
		// one preceding it, so two equal consecutive paths fall through to
		// seen.Add below, which is what actually catches a duplicate.
		if i > 0 && re.Path < prevPath {
			return nil, newEntryErr(i, fmt.Errorf("path %q is out of order after preceding path %q", re.Path, prevPath))
		}
		if !seen.Add(re.Path) {
			return nil, newEntryErr(i, fmt.Errorf("duplicate path %q", re.Path))
		}
		mode, err := unpackMode(re.Mode)
		if err != nil {
			return nil, newEntryErr(i, err)
		}
		end, overflow := addOverflows(re.Offset, re.Size)
		if overflow {
			return nil, newEntryErr(i, fmt.Errorf("offset %d + size %d overflows", re.Offset, re.Size))
		}
		if data != nil && end > uint64(dataLen) {
			return nil, newEntryErr(i, fmt.Errorf("data range [%d, %d) exceeds data region of %d bytes", re.Offset, end, dataLen))
		}
		entries = append(entries, Entry{
			Path:   re.Path,
			Hash:   re.Hash,
			Offset: re.Offset,
			Size:   re.Size,
			Mode:   mode,
		})
		prevPath = re.Path
	}

	return &Reader{header: hdr, entries: entries, data: data, dataLen: dataLen, closer: closer}, nil
}

func addOverflows(a, b uint64) (sum uint64, overflow bool) {
	sum = a + b
	return sum, sum < a
}

// Entries returns the verified entry vector, in the archive's path-sorted
// order. The returned slice must not be mutated by the caller.
func (r *Reader) Entries() []Entry {
	return r.entries
}

// HeaderOnly reports whether r was constructed without a data region —
// the entries are known and verified but no file content is available.
func (r *Reader) HeaderOnly() bool {
	return r.data == nil
}

// PublicKey returns the public key embedded in, and already verified
// against, the header.
func (r *Reader) PublicKey() PublicKey {
	var pub PublicKey
	copy(pub[:], r.header.PublicKey[:])
	return pub
}

// ReadFile streams entry's data bytes to w, hashing as it copies, and
// returns ErrKindHashMismatch if the streamed bytes don't match entry.Hash.
// It returns an error if r is header-only.
func (r *Reader) ReadFile(entry Entry, w io.Writer) error {
	if r.data == nil {
		return newErr(ErrKindIO, entry.Path, fmt.Errorf("reader has no data region (header-only)"))
	}
	section := io.NewSectionReader(r.data, int64(entry.Offset), int64(entry.Size))
	h := blakehash.New()
	if _, err := io.Copy(io.MultiWriter(w, h), section); err != nil {
		return newErr(ErrKindIO, entry.Path, err)
	}
	var got [blakehash.Size]byte
	copy(got[:], h.Sum(nil))
	if got != entry.Hash {
		return &Error{Kind: ErrKindHashMismatch, Path: entry.Path}
	}
	return nil
}
