package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
		verbosity  int
	}{
		{"JSON output mode", true, 0},
		{"Console output mode", false, 0},
		{"Console debug mode", false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Logger = nil
			JSONOutput = false

			require.NoError(t, Initialize(tt.jsonOutput, tt.verbosity))
			require.NotNil(t, Logger)
			assert.Equal(t, tt.jsonOutput, JSONOutput)
			assert.Equal(t, tt.verbosity, Verbosity)

			Cleanup()
		})
	}
}

func TestVerbosityToLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(0))
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(-1))
	assert.Equal(t, zapcore.InfoLevel, VerbosityToLevel(1))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(2))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(7))
}

func TestLevelName(t *testing.T) {
	assert.Equal(t, "User", LevelName(0))
	assert.Equal(t, "Debug (-vv)", LevelName(2))
	assert.Equal(t, "All (-vvv+)", LevelName(9))
	assert.Equal(t, "Unknown", LevelName(-1))
}

func TestShouldOutput(t *testing.T) {
	assert.True(t, ShouldOutput(0, OutputResults))
	assert.False(t, ShouldOutput(0, OutputConfig))
	assert.True(t, ShouldOutput(1, OutputConfig))
	assert.False(t, ShouldOutput(1, OutputHTTPCalls))
	assert.True(t, ShouldOutput(2, OutputHTTPCalls))
	assert.False(t, ShouldOutput(2, OutputResponseBody))
	assert.True(t, ShouldOutput(3, OutputResponseBody))
	assert.False(t, ShouldOutput(2, OutputCategory(99)))
}

func TestFieldsFromContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, FieldsFromContext(ctx))

	ctx = WithRequestID(ctx, "abc")
	ctx = WithComponent(ctx, "gms.query")
	fields := FieldsFromContext(ctx)

	assert.Equal(t, []interface{}{FieldRequestID, "abc", FieldComponent, "gms.query"}, fields)
	assert.NotNil(t, LoggerFromContext(ctx))
}
