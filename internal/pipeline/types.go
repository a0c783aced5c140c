package pipeline

// InputFile is one file found under the input root.
type InputFile struct {
	Path          string
	RelativePath  string
	IsSymlink     bool
	SymlinkTarget string
}

// Status represents the progress of a batch run.
type Status struct {
	Stage        string // "waiting", "scanning", "processing", "done", "error"
	Total        int
	Done         int
	Skipped      int
	Errors       int
	Links        int
	FailuresPath string
}

// RewriteError wraps a failure to rewrite one file so callers can
// distinguish it from other pipeline errors (e.g. to treat it as non-fatal).
type RewriteError struct {
	Path string
	Err  error
}

func (e *RewriteError) Error() string { return "rewrite " + e.Path + ": " + e.Err.Error() }
func (e *RewriteError) Unwrap() error { return e.Err }
