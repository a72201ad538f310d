package clitest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuote(t *testing.T) {
	assert.Equal(t, "plain", Quote("plain"))
	assert.Equal(t, "'two words'", Quote("two words"))
	assert.Equal(t, "''", Quote(""))
}

func TestQuoteCommand(t *testing.T) {
	assert.Equal(t, "ls -la", QuoteCommand([]string{"ls", "-la"}))
	assert.Equal(t, "cat 'a file.txt'", QuoteCommand([]string{"cat", "a file.txt"}))
}
