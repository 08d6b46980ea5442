package dataset

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// WindowMode selects the windowing policy.
type WindowMode string

const (
	// SplitMode produces disjoint windows and keeps all labels.
	SplitMode WindowMode = "split"
	// SlidingMode produces step-1 windows with one mid-point label each.
	SlidingMode WindowMode = "sliding"
)

// ParseWindowMode validates a mode name.
func ParseWindowMode(s string) (WindowMode, error) {
	switch WindowMode(s) {
	case SplitMode, SlidingMode:
		return WindowMode(s), nil
	default:
		return "", fmt.Errorf("unknown window mode %q (want %q or %q)", s, SplitMode, SlidingMode)
	}
}

// WindowSet is a batch of feature windows and their labels. Features[i] has
// shape (WindowSize, 1) and Labels[i] has LabelWidth entries: WindowSize for
// split windows, 1 for sliding windows.
type WindowSet struct {
	WindowSize int
	LabelWidth int
	Features   []*mat.Dense
	Labels     [][]int32
}

// Len returns the number of windows.
func (s WindowSet) Len() int {
	return len(s.Features)
}

// Append returns s followed by the windows of other.
func (s WindowSet) Append(other WindowSet) WindowSet {
	s.Features = append(s.Features, other.Features...)
	s.Labels = append(s.Labels, other.Labels...)
	return s
}

// Windows dispatches to the source's split or sliding windows.
func Windows(src Windower, mode WindowMode, size int) (WindowSet, error) {
	switch mode {
	case SplitMode:
		return src.SplitWindows(size)
	case SlidingMode:
		return src.SlidingWindows(size)
	default:
		return WindowSet{}, fmt.Errorf("unknown window mode %q", mode)
	}
}
