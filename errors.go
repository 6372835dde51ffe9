package fiscalpanel

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrUnknownColumn     = errors.New("unknown column")
	ErrColumnCollision   = errors.New("column already exists")
	ErrKeyNotFound       = errors.New("no row for key")
	ErrMissingColumn     = errors.New("required column missing from source")
	ErrNoYearColumns     = errors.New("wide source has no year columns")
)

type PipelineError struct {
	Pipeline string
	Stage    string
	Op       string
	Err      error
}

func (e *PipelineError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("pipeline %s: stage %s: %s: %v", e.Pipeline, e.Stage, e.Op, e.Err)
	}
	return fmt.Sprintf("pipeline %s: %s: %v", e.Pipeline, e.Op, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func NewPipelineError(pipeline, stage, op string, err error) *PipelineError {
	return &PipelineError{Pipeline: pipeline, Stage: stage, Op: op, Err: err}
}

// LoadError is the fatal class for a source that cannot be fetched or
// parsed. There is no retry or fallback behind it: the run aborts.
type LoadError struct {
	Source  string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s: %s: %v", e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("load %s: %s", e.Source, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func NewLoadError(source, message string, err error) *LoadError {
	return &LoadError{Source: source, Message: message, Err: err}
}

// DuplicateKey records one duplicated observation key and the row indices
// where it appears.
type DuplicateKey struct {
	Key  Key
	Rows []int
}

// DuplicateKeyError is the fatal class for a non-unique (country, year) key
// after normalization or after a join. It carries every offending key so
// the diagnostic names the bad rows, not just the fact of failure.
type DuplicateKeyError struct {
	Frame string
	Op    string
	Dups  []DuplicateKey
}

func (e *DuplicateKeyError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "frame %s: %s: %d duplicate key(s):", e.Frame, e.Op, len(e.Dups))
	for _, d := range e.Dups {
		fmt.Fprintf(&b, " %s@rows%v", d.Key, d.Rows)
	}
	return b.String()
}

type JoinError struct {
	Left   string
	Right  string
	Column string
	Err    error
}

func (e *JoinError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("join %s+%s: column %q: %v", e.Left, e.Right, e.Column, e.Err)
	}
	return fmt.Sprintf("join %s+%s: %v", e.Left, e.Right, e.Err)
}

func (e *JoinError) Unwrap() error {
	return e.Err
}
