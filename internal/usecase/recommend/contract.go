package recommend

// Query outcomes reported to the Recorder.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Recorder observes query outcomes. Implemented by the metrics layer.
type Recorder interface {
	RecordQuery(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordQuery(string) {}
