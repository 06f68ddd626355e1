package analysis

import (
	"errors"
	"fmt"

	"ca-fractal/internal/lattice"
)

// ErrSkipped marks a generation a statistic could not analyze. It is
// recoverable: the next Analyze call starts from a fresh snapshot.
var ErrSkipped = errors.New("analysis: generation skipped")

// SkippedError reports which statistic skipped which generation and why.
type SkippedError struct {
	Statistic  string
	Generation int
	Err        error
}

func (e *SkippedError) Error() string {
	return fmt.Sprintf("%s skipped generation %d: %v", e.Statistic, e.Generation, e.Err)
}

// Unwrap exposes both ErrSkipped and the underlying cause.
func (e *SkippedError) Unwrap() []error { return []error{ErrSkipped, e.Err} }

// stale reports whether err comes from reading a snapshot that changed
// underneath the reader.
func stale(err error) bool {
	return errors.Is(err, lattice.ErrGenerationUnavailable) || errors.Is(err, lattice.ErrIndexOutOfRange)
}

// retryOnce runs fn and, when it fails on a stale snapshot, runs it once
// more. A second stale failure becomes a *SkippedError.
func retryOnce(name string, generation int, fn func() error) error {
	err := fn()
	if err == nil || !stale(err) {
		return err
	}
	log().Debug("retrying after stale snapshot", "statistic", name, "generation", generation, "error", err)
	err = fn()
	if err == nil {
		return nil
	}
	if !stale(err) {
		return err
	}
	log().Warn("generation skipped", "statistic", name, "generation", generation, "error", err)
	return &SkippedError{Statistic: name, Generation: generation, Err: err}
}
