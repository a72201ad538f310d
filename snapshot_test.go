package clitest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchSnapshot_Golden(t *testing.T) {
	// Trailing whitespace and blank lines are normalized away before the
	// comparison, so raw process output matches a clean golden file.
	MatchSnapshot(t, "greeting", "Hello Ada  \n\n\n")
}

func TestMatchSnapshot_Update(t *testing.T) {
	// Run the update path in a scratch working directory so the real
	// testdata tree is untouched.
	wd, err := os.Getwd()
	require.NoError(t, err)
	tmp := t.TempDir()
	require.NoError(t, os.Chdir(tmp))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("CLITEST_UPDATE", "1")
	MatchSnapshot(t, "created", "fresh content\n")

	path := filepath.Join(tmp, "testdata", "snapshots", sanitizeName(t.Name()), "created.txt")
	golden, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fresh content\n", string(golden))

	// A second run against the file it just wrote passes.
	t.Setenv("CLITEST_UPDATE", "")
	MatchSnapshot(t, "created", "fresh content\n")
}

func TestNormalizeForSnapshot(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"Already clean", "one\ntwo\n", "one\ntwo\n"},
		{"Trailing spaces", "one  \ntwo\t\n", "one\ntwo\n"},
		{"Trailing blank lines", "one\n\n\n", "one\n"},
		{"Missing final newline", "one\ntwo", "one\ntwo\n"},
		{"Empty", "", ""},
		{"Only whitespace", "  \n\t\n", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, normalizeForSnapshot(tc.input))
		})
	}
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "TestFoo_bar_baz", sanitizeName("TestFoo/bar baz"))
	assert.Equal(t, "with-dash_and_slash", sanitizeName("with-dash/and slash"))
}
