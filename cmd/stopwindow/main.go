// Command stopwindow windows labelled accelerometer recordings, summarises
// stop durations and scores predicted stops against annotations.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
