package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"debug", "info", "warn", "error"} {
		l, err := ParseLevel(s)
		require.NoError(t, err)
		assert.Equal(t, LogLevel(s), l)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&Config{Level: WarnLevel, Output: &buf})

	log.Info("hidden", "file", "a.tsv")
	assert.Empty(t, buf.String())

	log.Warn("shown", "file", "a.tsv")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "file=a.tsv")
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard().Error("nothing", "k", "v")
	})
}
