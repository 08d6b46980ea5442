// Package window cuts time-ordered sample columns into fixed-size windows.
//
// Rows are samples and columns are features. Consecutive windows share
// overlap samples, so the step between window starts is size-overlap.
// Inputs shorter than one window produce zero windows rather than an error.
package window

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidWindowSize is returned when the window size is not positive.
	ErrInvalidWindowSize = errors.New("window size must be positive")

	// ErrInvalidOverlap is returned when overlap is negative or not smaller
	// than the window size.
	ErrInvalidOverlap = errors.New("overlap must be in [0, window size)")
)

// Validate checks a window size and overlap pair.
func Validate(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidWindowSize, size)
	}
	if overlap < 0 || overlap >= size {
		return fmt.Errorf("%w: overlap %d, size %d", ErrInvalidOverlap, overlap, size)
	}
	return nil
}

// Count returns how many windows n samples yield. The trailing remainder
// that does not fill a whole window is dropped.
func Count(n, size, overlap int) (int, error) {
	if err := Validate(size, overlap); err != nil {
		return 0, err
	}
	if n < size {
		return 0, nil
	}
	step := size - overlap
	return (n-size)/step + 1, nil
}

// Starts returns the first row index of every window.
func Starts(n, size, overlap int) ([]int, error) {
	count, err := Count(n, size, overlap)
	if err != nil {
		return nil, err
	}
	step := size - overlap
	starts := make([]int, count)
	for i := range starts {
		starts[i] = i * step
	}
	return starts, nil
}

// Matrix slices m into windows of size rows each. Every window is an
// independent copy shaped (size, cols); with flatten set it is reshaped to
// a single row of size*cols values. A nil m is treated as zero rows.
func Matrix(m *mat.Dense, size, overlap int, flatten bool) ([]*mat.Dense, error) {
	rows, cols := 0, 0
	if m != nil && !m.IsEmpty() {
		rows, cols = m.Dims()
	}

	starts, err := Starts(rows, size, overlap)
	if err != nil {
		return nil, err
	}

	windows := make([]*mat.Dense, len(starts))
	for i, start := range starts {
		w := mat.DenseCopyOf(m.Slice(start, start+size, 0, cols))
		if flatten {
			w = mat.NewDense(1, size*cols, w.RawMatrix().Data)
		}
		windows[i] = w
	}
	return windows, nil
}

// Labels slices a label column into windows using the same policy as Matrix.
func Labels(labels []int32, size, overlap int) ([][]int32, error) {
	starts, err := Starts(len(labels), size, overlap)
	if err != nil {
		return nil, err
	}

	windows := make([][]int32, len(starts))
	for i, start := range starts {
		w := make([]int32, size)
		copy(w, labels[start:start+size])
		windows[i] = w
	}
	return windows, nil
}
