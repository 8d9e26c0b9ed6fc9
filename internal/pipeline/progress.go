package pipeline

// Reporter receives progress updates during a run.
type Reporter interface {
	Report(percent int, message string)
}

// Phase boundaries for the progress bar. Extraction owns the first 10
// percent, per-chunk analysis the span up to 80, merge to 90, and the
// render phase finishes at 100.
const (
	progressExtracted  = 10
	progressAnalyzeEnd = 80
	progressMerged     = 90
)

// analysisProgress maps "done of total chunks" onto the analysis span.
func analysisProgress(done, total int) int {
	if total <= 0 {
		return progressAnalyzeEnd
	}
	span := progressAnalyzeEnd - progressExtracted
	return progressExtracted + done*span/total
}

// jobReporter writes progress into the job's status entry.
type jobReporter struct {
	job *Job
}

func (r jobReporter) Report(percent int, message string) {
	r.job.SetProgress(percent, message)
}
