package logging

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    zapcore.Level
		wantErr bool
	}{
		{name: "explicit level", cfg: Config{Level: "warn"}, want: zapcore.WarnLevel},
		{name: "production default", cfg: Config{}, want: zapcore.InfoLevel},
		{name: "development default", cfg: Config{Development: true}, want: zapcore.DebugLevel},
		{name: "development keeps explicit level", cfg: Config{Level: "error", Development: true}, want: zapcore.ErrorLevel},
		{name: "unknown level", cfg: Config{Level: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, logger.Level())
			assert.True(t, logger.Core().Enabled(tt.want))
			assert.False(t, logger.Core().Enabled(tt.want-1))
		})
	}
}

func TestSetLevelReachesComponents(t *testing.T) {
	logger, err := New(Config{Level: "info"})
	require.NoError(t, err)
	chat := logger.Component("chat")
	assert.False(t, chat.Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, logger.SetLevel("debug"))
	assert.True(t, chat.Core().Enabled(zapcore.DebugLevel))
	assert.Error(t, logger.SetLevel("chatty"))
	assert.Equal(t, zapcore.DebugLevel, logger.Level())
}

func TestLevelHandler(t *testing.T) {
	logger, err := New(Config{Level: "info"})
	require.NoError(t, err)
	h := logger.LevelHandler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/log/level", strings.NewReader(`{"level":"warn"}`)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, zapcore.WarnLevel, logger.Level())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/log/level", nil))
	assert.JSONEq(t, `{"level":"warn"}`, w.Body.String())
}

func TestNop(t *testing.T) {
	logger := NewNop()
	assert.NotNil(t, logger.Component("workspace"))
	assert.NoError(t, logger.SetLevel("error"))
}
