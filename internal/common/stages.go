// Package common holds small helpers shared by the lens stages.
package common

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// StageTimer measures consecutive named stages of one cycle.
// It is not safe for concurrent use.
type StageTimer struct {
	now     func() time.Time
	started time.Time
	mark    time.Time
	current string
	order   []string
	stages  map[string]time.Duration
}

// NewStageTimer starts a timer.
func NewStageTimer() *StageTimer {
	return newStageTimer(time.Now)
}

func newStageTimer(now func() time.Time) *StageTimer {
	t := now()
	return &StageTimer{now: now, started: t, mark: t, stages: make(map[string]time.Duration)}
}

// Start closes the running stage, if any, and begins name.
func (t *StageTimer) Start(name string) {
	t.close()
	t.current = name
	t.mark = t.now()
}

// Stop closes the running stage and returns the total elapsed time.
func (t *StageTimer) Stop() time.Duration {
	t.close()
	return t.now().Sub(t.started)
}

func (t *StageTimer) close() {
	if t.current == "" {
		return
	}
	if _, seen := t.stages[t.current]; !seen {
		t.order = append(t.order, t.current)
	}
	t.stages[t.current] += t.now().Sub(t.mark)
	t.current = ""
}

// Stage returns the accumulated duration of name.
func (t *StageTimer) Stage(name string) time.Duration {
	return t.stages[name]
}

// Each calls fn for every closed stage in the order stages were first started.
func (t *StageTimer) Each(fn func(name string, d time.Duration)) {
	for _, name := range t.order {
		fn(name, t.stages[name])
	}
}

// Millis returns the stage durations in milliseconds, for log attributes.
func (t *StageTimer) Millis() map[string]int64 {
	out := make(map[string]int64, len(t.stages))
	for name, d := range t.stages {
		out[name] = d.Milliseconds()
	}
	return out
}

func (t *StageTimer) String() string {
	names := make([]string, 0, len(t.stages))
	for name := range t.stages {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%v", name, t.stages[name]))
	}
	return strings.Join(parts, " ")
}
