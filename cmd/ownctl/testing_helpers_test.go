package main

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
)

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	// Drain concurrently so large outputs cannot fill the pipe.
	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	out := <-done
	r.Close()

	return string(out), fnErr
}

// resetFlags restores the global flags after a test changes them.
func resetFlags(t *testing.T) {
	t.Helper()
	saved := struct {
		verbose, quiet, jsonOut, noColor bool
		demoAllocator                    string
		demoDepth, demoWorkers, demoJobs int
		demoStats                        bool
		leakOps                          int
		leakSeed                         uint64
		leakAllocator                    string
		benchN                           int
		benchAllocators                  []string
	}{
		verbose, quiet, jsonOut, noColor,
		demoAllocator,
		demoDepth, demoWorkers, demoJobs,
		demoStats,
		leakOps,
		leakSeed,
		leakAllocator,
		benchN,
		benchAllocators,
	}
	noColor = true
	t.Cleanup(func() {
		verbose, quiet, jsonOut, noColor = saved.verbose, saved.quiet, saved.jsonOut, saved.noColor
		demoAllocator = saved.demoAllocator
		demoDepth, demoWorkers, demoJobs = saved.demoDepth, saved.demoWorkers, saved.demoJobs
		demoStats = saved.demoStats
		leakOps, leakSeed, leakAllocator = saved.leakOps, saved.leakSeed, saved.leakAllocator
		benchN, benchAllocators = saved.benchN, saved.benchAllocators
	})
}

// decodeJSON unmarshals command output into v.
func decodeJSON(t *testing.T, output string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(output), v); err != nil {
		t.Fatalf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}
