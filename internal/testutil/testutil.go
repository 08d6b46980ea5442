// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"testing"
	"time"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// Ptr returns a pointer to v, for nullable sample fields.
func Ptr[T any](v T) *T {
	return &v
}

// Epoch returns the UTC time s seconds after the Unix epoch.
func Epoch(s float64) time.Time {
	return time.Unix(0, int64(s*float64(time.Second))).UTC()
}

// EpochMillis returns the UTC time ms milliseconds after the Unix epoch.
func EpochMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
