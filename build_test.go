//go:build unix

package clitest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBinary(t *testing.T) {
	first := BuildBinary(t, "./testdata/hello")
	second := BuildBinary(t, "./testdata/hello")
	assert.Equal(t, first, second, "builds are cached per package")
}

func TestBuildBinary_EndToEnd(t *testing.T) {
	bin := BuildBinary(t, "./testdata/hello")
	env := NewEnvironment(t)

	p, err := env.Spawn(bin)
	require.NoError(t, err)

	_, err = p.Expect("Enter name:")
	require.NoError(t, err)

	require.NoError(t, p.SendLine("Grace"))

	_, err = p.Expect("Hello Grace")
	require.NoError(t, err)

	code, err := p.WaitForExit()
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}
