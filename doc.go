// Package clitest is a harness for driving and asserting on command-line
// programs in automated tests.
//
// An [Environment] gives each test an isolated filesystem sandbox with its
// own HOME and XDG directories. Commands run either to completion via
// [Environment.Run], capturing exit code and output, or interactively via
// [Environment.Spawn], which returns a [Process] that can be fed input and
// polled for expected output while the child's stdout and stderr are drained
// in the background so the child never blocks on a full pipe.
//
// Typical interactive session:
//
//	env := clitest.NewEnvironment(t)
//	p, err := env.Spawn("some-cli", "init")
//	require.NoError(t, err)
//	_, err = p.Expect("Enter name:")
//	require.NoError(t, err)
//	require.NoError(t, p.SendLine("Ada"))
//	_, err = p.Expect("Hello Ada")
//	require.NoError(t, err)
//	code, err := p.WaitForExit()
//	require.NoError(t, err)
//	require.Equal(t, 0, code)
//
// Every Process spawned through an Environment is force-killed when the
// Environment tears down, so no child outlives its test.
package clitest
