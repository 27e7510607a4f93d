// Package mocks provides an audit recorder test double shared by the
// operation-level use case tests.
package mocks

import (
	"context"
	"sync"

	auditDomain "github.com/ameerarsath/publicdocsafe-sub002/internal/audit/domain"
)

// Recorder captures recorded audit events in memory. Set Err to make every
// Record call fail, which exercises the fail-closed path of the callers.
// Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []auditDomain.Event

	Err error
}

// NewRecorder creates an in-memory audit recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record captures the event, or fails with Err when set.
func (r *Recorder) Record(_ context.Context, event auditDomain.Event) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of the captured events in record order.
func (r *Recorder) Events() []auditDomain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]auditDomain.Event(nil), r.events...)
}

// Last returns the most recently captured event, or false when none exist.
func (r *Recorder) Last() (auditDomain.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return auditDomain.Event{}, false
	}
	return r.events[len(r.events)-1], true
}
