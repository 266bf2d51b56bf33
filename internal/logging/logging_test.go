package logging_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/sarchlab/bitfault/internal/logging"
)

func TestLevelTraceIsOneStepAboveInfo(t *testing.T) {
	if logging.LevelTrace != slog.LevelInfo+1 {
		t.Fatalf("LevelTrace = %v, want LevelInfo+1", logging.LevelTrace)
	}
}

func TestSetupVerboseEnablesLevelTrace(t *testing.T) {
	l := logging.Setup(slog.LevelInfo, true)
	if l == nil {
		t.Fatal("Setup returned a nil logger")
	}
	if !l.Enabled(context.Background(), logging.LevelTrace) {
		t.Fatal("verbose Setup should enable LevelTrace")
	}
}

func TestSetupNonVerboseUsesGivenLevel(t *testing.T) {
	l := logging.Setup(slog.LevelWarn, false)
	if l.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("non-verbose Setup at LevelWarn should not enable Info")
	}
	if !l.Enabled(context.Background(), slog.LevelWarn) {
		t.Fatal("non-verbose Setup at LevelWarn should enable Warn")
	}
}
