package clitest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// MatchSnapshot compares content against a golden file stored under
// testdata/snapshots/<sanitized-test-name>/<sanitized-name>.txt.
//
// Set CLITEST_UPDATE=1 to create or update golden files. Pass content
// through [Environment.Normalize] first when it contains sandbox paths or
// terminal escapes.
func MatchSnapshot(t testing.TB, name, content string) {
	t.Helper()

	dir := filepath.Join("testdata", "snapshots", sanitizeName(t.Name()))
	path := filepath.Join(dir, sanitizeName(name)+".txt")
	content = normalizeForSnapshot(content)

	if os.Getenv("CLITEST_UPDATE") == "1" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("clitest: snapshot: failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("clitest: snapshot: failed to write golden file: %v", err)
		}
		return
	}

	golden, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("clitest: snapshot: golden file not found: %s\nRun with CLITEST_UPDATE=1 to create it.\n\nActual content:\n%s", path, content)
		}
		t.Fatalf("clitest: snapshot: failed to read golden file: %v", err)
	}

	if string(golden) != content {
		dmp := diffmatchpatch.New()
		diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(string(golden), content, false))
		t.Fatalf("clitest: snapshot: mismatch for %q\nGolden file: %s\nRun with CLITEST_UPDATE=1 to update.\n\n%s",
			name, path, dmp.DiffPrettyText(diffs))
	}
}

// MatchSnapshot normalizes raw output (see Normalize) and compares it
// against the named golden file.
func (e *Environment) MatchSnapshot(t testing.TB, name, raw string) {
	t.Helper()
	MatchSnapshot(t, name, e.Normalize(raw))
}

// normalizeForSnapshot makes golden files stable across edits: trailing
// spaces are trimmed per line, trailing blank lines are dropped, and the
// content ends with exactly one newline.
func normalizeForSnapshot(raw string) string {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
