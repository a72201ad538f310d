package clitest

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

// buildCache deduplicates binary builds across tests within one test
// process. Binaries land in a shared temp directory that is left to the OS
// to clean up, since t.Cleanup would race with parallel tests reusing the
// cached path.
var buildCache = struct {
	mu      sync.Mutex
	dir     string
	entries map[string]*buildEntry
}{entries: make(map[string]*buildEntry)}

type buildEntry struct {
	once sync.Once
	path string
	err  error
}

// BuildBinary compiles the Go package at pkgPath (as understood by
// go build, e.g. "./cmd/mytool") into a cached location and returns the
// binary path. Each package is built at most once per test process; build
// failures fail the test.
func BuildBinary(t testing.TB, pkgPath string) string {
	t.Helper()

	buildCache.mu.Lock()
	entry, ok := buildCache.entries[pkgPath]
	if !ok {
		entry = &buildEntry{}
		buildCache.entries[pkgPath] = entry
	}
	buildCache.mu.Unlock()

	entry.once.Do(func() {
		entry.path, entry.err = buildBinary(pkgPath)
	})
	if entry.err != nil {
		t.Fatalf("clitest: %v", entry.err)
	}
	return entry.path
}

func buildBinary(pkgPath string) (string, error) {
	buildCache.mu.Lock()
	if buildCache.dir == "" {
		dir, err := os.MkdirTemp("", "clitest-bin-")
		if err != nil {
			buildCache.mu.Unlock()
			return "", fmt.Errorf("failed to create build directory: %w", err)
		}
		buildCache.dir = dir
	}
	dir := buildCache.dir
	buildCache.mu.Unlock()

	out := filepath.Join(dir, filepath.Base(pkgPath))
	cmd := exec.Command("go", "build", "-o", out, pkgPath)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("failed to build %s: %w\n%s", pkgPath, err, output)
	}
	return out, nil
}
