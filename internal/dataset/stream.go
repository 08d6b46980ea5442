package dataset

import (
	"fmt"
	"iter"
)

// Example is one sliding window in tensor form: Features has shape
// (window size, 1) stored row-major, Label has shape (1,).
type Example struct {
	Features []float32
	Label    [1]int32
}

// WindowStream yields corpus sliding windows one at a time without
// materialising the concatenation.
type WindowStream struct {
	sources []Source
	size    int
}

// WindowSize returns the window length.
func (s *WindowStream) WindowSize() int { return s.size }

// FeatureShape returns the shape of every Example.Features.
func (s *WindowStream) FeatureShape() [2]int { return [2]int{s.size, 1} }

// LabelShape returns the shape of every Example.Label.
func (s *WindowStream) LabelShape() [1]int { return [1]int{1} }

// All returns a sequence over every window of every source, in corpus
// order. Each range over the result starts a fresh scan, so the sequence
// can be consumed any number of times. Windowing errors are yielded once
// and end the sequence.
func (s *WindowStream) All() iter.Seq2[Example, error] {
	return func(yield func(Example, error) bool) {
		for _, src := range s.sources {
			set, err := src.SlidingWindows(s.size)
			if err != nil {
				yield(Example{}, fmt.Errorf("sliding windows for %q: %w", src.ID(), err))
				return
			}
			for i, features := range set.Features {
				ex := Example{Features: make([]float32, 0, s.size)}
				for r := 0; r < s.size; r++ {
					ex.Features = append(ex.Features, float32(features.At(r, 0)))
				}
				ex.Label[0] = set.Labels[i][0]
				if !yield(ex, nil) {
					return
				}
			}
		}
	}
}
