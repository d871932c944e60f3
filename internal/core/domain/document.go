package domain

// DocumentStatus tracks where a document is in the enhancement lifecycle.
type DocumentStatus string

const (
	StatusPending   DocumentStatus = "pending"
	StatusSucceeded DocumentStatus = "succeeded"
	StatusFailed    DocumentStatus = "failed"
)

// Document is one rendered school description awaiting AI enhancement.
// The key is the school code derived from the source filename; the
// enhancement stage never mutates the source, it produces a new artifact
// under the same key.
type Document struct {
	Key           string
	SourceContent string
}

// BatchStats is the sole result of one enhancement batch. Counters are
// mutated exactly once per document and are immutable once Run returns.
type BatchStats struct {
	Discovered         int
	SkippedAlreadyDone int
	Attempted          int
	Succeeded          int
	Failed             int
}
