package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// OutcomeOK marks a step that ended without error.
const OutcomeOK = "ok"

// TimingEntry is the wall-clock span of one runner step, retries included.
// Outcome is OutcomeOK or the error kind the step ended with.
type TimingEntry struct {
	Stage    string    `json:"stage"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end,omitempty"`
	Duration string    `json:"duration,omitempty"`
	Attempts int       `json:"attempts,omitempty"`
	Outcome  string    `json:"outcome,omitempty"`
}

// Timing collects step spans for timing.json.
type Timing struct {
	mu      sync.Mutex
	Entries []TimingEntry `json:"entries"`
}

func timingPath(runDir string) string {
	return filepath.Join(runDir, "timing.json")
}

// LoadTiming reads timing data from a run directory.
func LoadTiming(runDir string) (*Timing, error) {
	path := timingPath(runDir)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Timing{}, nil
		}
		return nil, err
	}
	var t Timing
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Timing) save(runDir string) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return writeArtifact(timingPath(runDir), data)
}

// AddStart opens a span for stage.
func (t *Timing) AddStart(stage string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Entries = append(t.Entries, TimingEntry{
		Stage: stage,
		Start: time.Now(),
	})
}

// AddEnd closes the most recent open span of stage with the number of
// calls it took and its outcome.
func (t *Timing) AddEnd(stage string, attempts int, outcome string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.Entries) - 1; i >= 0; i-- {
		e := &t.Entries[i]
		if e.Stage == stage && e.End.IsZero() {
			e.End = time.Now()
			e.Duration = formatDuration(e.End.Sub(e.Start))
			e.Attempts = attempts
			e.Outcome = outcome
			break
		}
	}
}

// Last returns the most recent closed span of stage.
func (t *Timing) Last(stage string) (TimingEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.Entries) - 1; i >= 0; i-- {
		if t.Entries[i].Stage == stage && !t.Entries[i].End.IsZero() {
			return t.Entries[i], true
		}
	}
	return TimingEntry{}, false
}

// Total sums the closed spans.
func (t *Timing) Total() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	var d time.Duration
	for _, e := range t.Entries {
		if !e.End.IsZero() {
			d += e.End.Sub(e.Start)
		}
	}
	return d
}

// Flush writes the timing data to the run directory.
func (t *Timing) Flush(runDir string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.save(runDir)
}

// FormatDuration renders d as minutes and seconds.
func FormatDuration(d time.Duration) string {
	return formatDuration(d)
}

func formatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %02ds", m, s)
}
