package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderCounts(t *testing.T) {
	var buf bytes.Buffer
	renderCounts(&buf, "Totals", [][2]any{{"Written", 3}, {"Skipped", 10}})

	out := buf.String()
	assert.Contains(t, out, "Totals")
	assert.Contains(t, out, "Written")
	assert.Contains(t, out, "10")
	// Not a terminal, so plain ASCII borders.
	assert.Contains(t, out, "+")
	assert.NotContains(t, out, "╭")
}

func TestRenderTable_NoHeaders(t *testing.T) {
	var buf bytes.Buffer
	renderTable(&buf, "empty", nil, nil, nil)
	assert.Empty(t, buf.String())
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	assert.NoError(t, err)
	assert.Contains(t, stdout, "strmsync")
}
