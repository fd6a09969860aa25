package pkgar

// List opens the archive at archivePath and returns its verified entries in
// path-sorted order. It never touches the data region (spec.md §4.6: "list:
// reader only ... no data-region access"), so it works equally against a
// header-only archive.
func List(archivePath string, trust TrustSet) ([]Entry, error) {
	r, err := OpenFile(archivePath, trust)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.Entries(), nil
}
