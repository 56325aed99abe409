package shared

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

func TestNewLogger(t *testing.T) {
	t.Run("writes to the given writer", func(t *testing.T) {
		output := &bytes.Buffer{}
		logger := NewLogger(output)

		logger.Info("hello")

		if !strings.Contains(output.String(), "hello") {
			t.Errorf("expected log output, got %q", output.String())
		}
	})

	t.Run("nil writer does not panic", func(t *testing.T) {
		if logger := NewLogger(nil); logger == nil {
			t.Error("expected a logger")
		}
	})
}

func TestWithLogger(t *testing.T) {
	output := &bytes.Buffer{}
	logger := NewLogger(output)

	WithLogger(logger, "handler", "auth").Info("request")

	if !strings.Contains(output.String(), "handler=auth") {
		t.Errorf("expected the child logger to carry its key-value pairs, got %q", output.String())
	}
}

func TestSetLogLevel(t *testing.T) {
	output := &bytes.Buffer{}
	logger := NewLogger(output)

	logger.Debug("hidden")
	if strings.Contains(output.String(), "hidden") {
		t.Errorf("debug should be suppressed at the default level, got %q", output.String())
	}

	SetLogLevel(logger, log.DebugLevel)

	logger.Debug("visible")
	if !strings.Contains(output.String(), "visible") {
		t.Errorf("debug should be emitted after lowering the level, got %q", output.String())
	}
}

func TestGenerateID(t *testing.T) {
	id := GenerateID()

	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("expected a UUID, got %q: %v", id, err)
	}

	if id == GenerateID() {
		t.Error("expected successive IDs to differ")
	}
}
