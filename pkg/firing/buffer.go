package firing

import "errors"

var (
	// ErrFrozen is returned by mutating Buffer operations after Freeze.
	ErrFrozen = errors.New("buffer is frozen")
	// ErrAlreadyTrimmed is returned by a second TrimTail on the same buffer.
	ErrAlreadyTrimmed = errors.New("buffer tail already trimmed")
)

// Buffer is the ordered sample store for a single test run. The detector is
// its sole writer: append-only during the burn, one tail trim at burnout
// finalization, then frozen for read-only analysis.
type Buffer struct {
	samples []Sample
	frozen  bool
	trimmed bool
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append adds a sample at the end of the series.
func (b *Buffer) Append(s Sample) error {
	if b.frozen {
		return ErrFrozen
	}
	b.samples = append(b.samples, s)
	return nil
}

// TrimTail removes the last n samples, clamped to the current length. It is
// valid exactly once per run, before Freeze.
func (b *Buffer) TrimTail(n int) error {
	if b.frozen {
		return ErrFrozen
	}
	if b.trimmed {
		return ErrAlreadyTrimmed
	}
	b.trimmed = true
	if n < 0 {
		n = 0
	}
	if n > len(b.samples) {
		n = len(b.samples)
	}
	b.samples = b.samples[:len(b.samples)-n]
	return nil
}

// Freeze makes the buffer immutable. Idempotent.
func (b *Buffer) Freeze() {
	b.frozen = true
}

// Frozen reports whether the buffer has been frozen.
func (b *Buffer) Frozen() bool {
	return b.frozen
}

// Len returns the number of stored samples.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// Snapshot returns the ordered series for read-only consumption. Callers must
// not modify the returned slice; after Freeze the contents never change.
func (b *Buffer) Snapshot() []Sample {
	return b.samples
}
