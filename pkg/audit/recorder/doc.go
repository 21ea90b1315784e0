// Package recorder turns decisions into audit records and writes them to an
// audit.Storage from a single background worker.
//
// Usage:
//
//	rec := recorder.NewRecorder(store, &cfg.Audit.Recorder, recorder.WithObserver(collector))
//	defer rec.Close()
//
//	err := rec.Record(ctx, recorder.Entry{Decision: d, Input: in, RequestID: id})
package recorder
