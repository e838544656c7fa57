package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromZap(zap.New(core)).With("service", "tracker")

	log.Warn("snapshot ignored", "subject", "Math")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "snapshot ignored", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "tracker", fields["service"])
	assert.Equal(t, "Math", fields["subject"])
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"dev", "prod", ""} {
		l, err := New(mode)
		require.NoError(t, err, mode)
		require.NotNil(t, l.SugaredLogger)
	}
}

func TestNopDiscards(t *testing.T) {
	l := NewNop()
	l.Info("nothing", "k", "v")
	l.Sync()
}
