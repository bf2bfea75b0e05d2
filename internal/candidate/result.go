package candidate

// StageResult carries the outcome of one extraction or embedding stage.
// Stages fail independently; a failed stage contributes an absent field
// to the record instead of aborting the build.
type StageResult struct {
	Text string
	Err  error
}

// Ok returns a successful stage result.
func Ok(text string) StageResult {
	return StageResult{Text: text}
}

// Failed returns a failed stage result.
func Failed(err error) StageResult {
	return StageResult{Err: err}
}

// OK reports whether the stage produced usable text.
func (r StageResult) OK() bool {
	return r.Err == nil && r.Text != ""
}
