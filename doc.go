// Package pkgar implements the pkgar signed, content-addressed archive
// format: a packed binary header describing every file's content hash,
// permissions, size, and relative path, followed by an opaque data region
// holding the concatenated file bodies. Archives are deterministic — the
// same directory tree and signing key always produce byte-identical
// output — and split-friendly: a combined .pkgar file is always equal to
// the concatenation of its .pkgar_head and .pkgar_data halves.
//
// Reader parses and verifies an existing archive. Create builds a new one
// from a directory tree. List, Extract, Remove, Verify, and Split are the
// operations built atop them. Key generation, passphrase-protected key
// storage, payload compression, and the command-line front-end are
// explicitly out of scope for this package; it consumes and produces raw
// Ed25519 key material only.
package pkgar
