package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "WARN", false)
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)

	_, err = New(&buf, "loud", false)
	assert.Error(t, err)
}

func TestAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "debug", false)
	require.NoError(t, err)

	a := NewAdapter(logger)
	a.Debugf("leveling %d", 2)
	a.Infof("refund %s", "6000.00")
	a.Warnf("excess")
	a.Errorf("failed")

	out := buf.String()
	assert.Contains(t, out, "leveling 2")
	assert.Contains(t, out, "refund 6000.00")
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"level":"error"`)
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "", true)
	require.NoError(t, err)

	logger.Info().Msg("plain text")
	assert.Contains(t, buf.String(), "plain text")
	assert.NotContains(t, buf.String(), `"message"`)
}
