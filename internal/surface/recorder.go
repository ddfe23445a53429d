// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package surface

import (
	"context"
	"fmt"
	"sync"
)

// Call is one request seen by a Recorder.
type Call struct {
	Action string // "show" or "hide"
	ID     string
}

// Recorder is an in-memory Surface for tests. Set Fail to make every call
// return ErrDisplay.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
	fail  bool
}

func (r *Recorder) Show(_ context.Context, id string) error { return r.record("show", id) }
func (r *Recorder) Hide(_ context.Context, id string) error { return r.record("hide", id) }

func (r *Recorder) record(action, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Action: action, ID: id})
	if r.fail {
		return fmt.Errorf("%w: %s %s: recorder set to fail", ErrDisplay, action, id)
	}
	return nil
}

// SetFail toggles failure mode.
func (r *Recorder) SetFail(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = fail
}

// Calls returns a copy of all recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Count returns how many times action was requested for id.
func (r *Recorder) Count(action, id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Action == action && c.ID == id {
			n++
		}
	}
	return n
}
