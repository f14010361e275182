package domain

// Report is an ordered table; rows are not deduplicated.
type Report struct {
	Columns []string
	Rows    [][]string
}

// RunSettings are resolved once per run and stamped onto every alert.
type RunSettings struct {
	Account       string
	Region        string
	EditorBaseURL string
}
