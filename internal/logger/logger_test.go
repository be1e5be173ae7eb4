package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		enabled zapcore.Level
		wantErr bool
	}{
		{name: "default is debug", cfg: Config{}, enabled: zapcore.DebugLevel},
		{name: "json warn", cfg: Config{Level: "warn", Encoding: "json"}, enabled: zapcore.WarnLevel},
		{name: "console info", cfg: Config{Level: "info", Encoding: "console"}, enabled: zapcore.InfoLevel},
		{name: "bad level", cfg: Config{Level: "loud"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, err := New(tc.cfg)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tc.enabled))
			if tc.enabled > zapcore.DebugLevel {
				assert.False(t, l.Core().Enabled(tc.enabled-1))
			}
		})
	}
}
