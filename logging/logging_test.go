package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level string
		debug bool
		warn  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, true},
		{"error", false, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.level, func(t *testing.T) {
			t.Parallel()

			l, err := New(tt.level, false)
			require.NoError(t, err)
			assert.Equal(t, tt.debug, l.Core().Enabled(zap.DebugLevel))
			assert.Equal(t, tt.warn, l.Core().Enabled(zap.WarnLevel))
		})
	}
}

func TestNewDevelopment(t *testing.T) {
	t.Parallel()

	l, err := New("info", true)
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewBadLevel(t *testing.T) {
	t.Parallel()

	_, err := New("loud", false)
	assert.Error(t, err)
}
