package catalogbrowser

// schemasLoadedMsg carries the result of listing schemas.
type schemasLoadedMsg struct {
	Schemas []string
	Err     error
}

// tablesLoadedMsg carries the tables of Schema, fetched under selection Epoch.
type tablesLoadedMsg struct {
	Schema string
	Epoch  uint64
	Tables []string
	Err    error
}
