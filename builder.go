package pkgar

import (
	"crypto/ed25519"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/redox-os/pkgar/internal/binfmt"
	"github.com/redox-os/pkgar/internal/blakehash"
	"github.com/redox-os/pkgar/internal/fsops"
	"github.com/redox-os/pkgar/internal/sig"
	"github.com/redox-os/pkgar/internal/walkorder"
)

// Create walks sourceDir in deterministic order (spec.md §4.5), streams
// every regular file and symlink it finds into a new archive at
// targetPath, and signs the result with secretKey. Anything that is
// neither a regular file, directory, nor symlink fails the whole operation
// with ErrKindUnsupportedFileType.
//
// Construction proceeds in the two passes spec.md §4.5 describes: pass one
// streams file bytes into a temporary data file while hashing and
// accumulating entries; pass two serializes, hashes, and signs the entry
// table, then emits header, entries, and data as one atomically renamed
// file.
func Create(sourceDir, targetPath string, secretKey SecretKey) error {
	tmpData, err := os.CreateTemp(filepath.Dir(targetPath), ".pkgar-data-*")
	if err != nil {
		return newErr(ErrKindIO, targetPath, err)
	}
	tmpDataPath := tmpData.Name()
	defer os.Remove(tmpDataPath)
	defer tmpData.Close()

	var offset uint64
	var rawEntries []binfmt.Entry

	walkErr := walkorder.Walk(sourceDir, func(rel string, d os.DirEntry) error {
		if err := validatePath(rel); err != nil {
			if pe, ok := err.(*Error); ok {
				return pe
			}
			return &Error{Kind: ErrKindInvalidEntry, Path: rel, Index: -1, Err: err}
		}

		full := filepath.Join(sourceDir, filepath.FromSlash(rel))
		info, err := d.Info()
		if err != nil {
			return newErr(ErrKindIO, rel, err)
		}

		var (
			hash [32]byte
			size uint64
			mode EntryMode
		)

		switch {
		case info.Mode().IsRegular():
			f, err := os.Open(full)
			if err != nil {
				return newErr(ErrKindIO, rel, err)
			}
			defer f.Close()

			h := blakehash.New()
			n, err := io.Copy(io.MultiWriter(tmpData, h), f)
			if err != nil {
				return newErr(ErrKindIO, rel, err)
			}
			copy(hash[:], h.Sum(nil))
			size = uint64(n)
			mode = EntryMode{Perm: info.Mode().Perm()}

		case info.Mode()&os.ModeSymlink != 0:
			target, err := os.Readlink(full)
			if err != nil {
				return newErr(ErrKindIO, rel, err)
			}
			hash = blakehash.SumBytes([]byte(target))
			n, err := tmpData.Write([]byte(target))
			if err != nil {
				return newErr(ErrKindIO, rel, err)
			}
			size = uint64(n)
			mode = EntryMode{Perm: info.Mode().Perm(), IsSymlink: true}

		default:
			return &Error{Kind: ErrKindUnsupportedFileType, Path: rel}
		}

		rawEntries = append(rawEntries, binfmt.Entry{
			Hash:   hash,
			Offset: offset,
			Size:   size,
			Mode:   mode.Pack(),
			Path:   rel,
		})
		offset += size
		return nil
	})
	if walkErr != nil {
		return walkErr
	}

	// Pass 2: resort by full path. The walk orders children per directory by
	// name, which can differ from full-path byte order: "a/x" is visited
	// before "a.txt", yet "a.txt" sorts first because '.' < '/'.
	sort.Slice(rawEntries, func(i, j int) bool { return rawEntries[i].Path < rawEntries[j].Path })

	entryBytes, err := binfmt.MarshalEntries(rawEntries)
	if err != nil {
		return newErr(ErrKindCorrupt, targetPath, err)
	}
	entriesHash := blakehash.SumBytes(entryBytes)

	pub := publicKeyFromSecret(secretKey)

	preimage := binfmt.Preimage(pub, entriesHash, uint64(len(rawEntries)))
	signature, err := sig.Sign(secretKey[:], preimage[:])
	if err != nil {
		return newErr(ErrKindIO, targetPath, err)
	}

	hdr := binfmt.Header{
		PublicKey:   pub,
		EntriesHash: entriesHash,
		Count:       uint64(len(rawEntries)),
	}
	copy(hdr.Signature[:], signature)

	return emitArchive(targetPath, hdr, entryBytes, tmpData)
}

// emitArchive writes the final archive atomically: header, entries, then
// the temporary data file's contents, written to a sibling temp file,
// fsynced, then renamed over targetPath (spec.md §3's lifecycle rule and
// §4.5's "write to <target>.tmp, fsync, rename").
func emitArchive(targetPath string, hdr binfmt.Header, entryBytes []byte, tmpData *os.File) error {
	out, err := os.CreateTemp(filepath.Dir(targetPath), ".pkgar-out-*")
	if err != nil {
		return newErr(ErrKindIO, targetPath, err)
	}
	outPath := out.Name()
	defer os.Remove(outPath)

	if _, err := out.Write(hdr.Marshal()); err != nil {
		out.Close()
		return newErr(ErrKindIO, targetPath, err)
	}
	if _, err := out.Write(entryBytes); err != nil {
		out.Close()
		return newErr(ErrKindIO, targetPath, err)
	}
	if _, err := tmpData.Seek(0, io.SeekStart); err != nil {
		out.Close()
		return newErr(ErrKindIO, targetPath, err)
	}
	if _, err := io.Copy(out, tmpData); err != nil {
		out.Close()
		return newErr(ErrKindIO, targetPath, err)
	}

	if err := fsops.SyncFile(out); err != nil {
		out.Close()
		return newErr(ErrKindIO, targetPath, err)
	}
	if err := out.Close(); err != nil {
		return newErr(ErrKindIO, targetPath, err)
	}

	if err := fsops.Rename(outPath, targetPath); err != nil {
		return newErr(ErrKindIO, targetPath, err)
	}
	if err := fsops.SyncDir(filepath.Dir(targetPath)); err != nil {
		return newErr(ErrKindIO, targetPath, err)
	}
	return nil
}

func publicKeyFromSecret(secretKey SecretKey) [32]byte {
	priv := ed25519.PrivateKey(secretKey[:])
	pub := priv.Public().(ed25519.PublicKey)
	var out [32]byte
	copy(out[:], pub)
	return out
}
