package storage

import (
	"errors"

	"ezlockin/internal/core/model"
)

// SessionSink accepts completed session records.
type SessionSink interface {
	Append(record model.SessionRecord) error
}

// MultiRecorder fans a record out to every sink. A failing sink does not
// stop the others; all failures are joined.
type MultiRecorder struct {
	sinks []SessionSink
}

// NewMultiRecorder returns a recorder over the non-nil sinks.
func NewMultiRecorder(sinks ...SessionSink) *MultiRecorder {
	recorder := &MultiRecorder{}
	for _, sink := range sinks {
		if sink != nil {
			recorder.sinks = append(recorder.sinks, sink)
		}
	}
	return recorder
}

// Append writes record to every sink.
func (recorder *MultiRecorder) Append(record model.SessionRecord) error {
	var errs []error
	for _, sink := range recorder.sinks {
		if err := sink.Append(record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
