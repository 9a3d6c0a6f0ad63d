// Package report collects bench runs and writes them out.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"

	"github.com/calvinalkan/tnp1/internal/search"
)

var errPathEmpty = errors.New("report path is empty")

// Entry is one search run.
type Entry struct {
	Profile string        `json:"profile"`
	Run     int           `json:"run"`
	Params  search.Params `json:"params"`
	Result  search.Result `json:"result"`
	// Verified is nil when the run was not checked against the reference.
	Verified *bool `json:"verified,omitempty"`
}

// Report is a set of runs with the host they ran on.
type Report struct {
	ID      uuid.UUID `json:"id"`
	Started time.Time `json:"started"`
	GOOS    string    `json:"goos"`
	GOARCH  string    `json:"goarch"`
	CPUs    int       `json:"cpus"`
	Entries []Entry   `json:"entries"`
}

// New starts an empty report.
func New(started time.Time) *Report {
	return &Report{
		ID:      uuid.New(),
		Started: started.UTC(),
		GOOS:    runtime.GOOS,
		GOARCH:  runtime.GOARCH,
		CPUs:    runtime.NumCPU(),
	}
}

// Add appends an entry.
func (r *Report) Add(e Entry) {
	r.Entries = append(r.Entries, e)
}

// Failed returns the entries that did not match the reference or whose
// counts wrapped.
func (r *Report) Failed() []Entry {
	var out []Entry

	for _, e := range r.Entries {
		if (e.Verified != nil && !*e.Verified) || !e.Result.Trusted() {
			out = append(out, e)
		}
	}

	return out
}

// WriteTable prints one aligned line per entry.
func (r *Report) WriteTable(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%-8s %4s %12s %6s %8s %10s %12s %s\n",
		"profile", "run", "n", "iters", "chunks", "ms", "stop", "check")
	if err != nil {
		return err
	}

	for _, e := range r.Entries {
		check := "-"

		switch {
		case !e.Result.Trusted():
			check = fmt.Sprintf("WRAPPED(%d)", e.Result.Wrapped)
		case e.Verified == nil:
		case *e.Verified:
			check = "ok"
		default:
			check = "MISMATCH"
		}

		_, err = fmt.Fprintf(w, "%-8s %4d %12d %6d %8d %10d %12s %s\n",
			e.Profile, e.Run, e.Result.Max.N, e.Result.Max.Iterations, e.Result.Chunks,
			e.Result.Elapsed.Milliseconds(), e.Result.StopReason, check)
		if err != nil {
			return err
		}
	}

	return nil
}

// WriteFile stores the report as indented JSON. The file is replaced
// atomically, so readers never see a partial report.
func (r *Report) WriteFile(path string) error {
	if path == "" {
		return errPathEmpty
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	data = append(data, '\n')

	err = atomic.WriteFile(path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}

	// atomic.WriteFile keeps the temp file's 0600 for new files.
	err = os.Chmod(path, 0o644)
	if err != nil {
		return fmt.Errorf("chmod report %s: %w", path, err)
	}

	return nil
}

// ReadFile loads a report written by WriteFile.
func ReadFile(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var r Report

	err = json.Unmarshal(data, &r)
	if err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", path, err)
	}

	return &r, nil
}
