package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	log := New()
	if log.GetLevel() != zerolog.InfoLevel {
		t.Errorf("default level = %s, want info", log.GetLevel())
	}
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Str("slot", "accounts").Msg("slot saved")

	out := buf.String()
	if !strings.Contains(out, "slot saved") || !strings.Contains(out, `"slot":"accounts"`) {
		t.Errorf("unexpected log output: %s", out)
	}
}

func TestLevelFromEnvironment(t *testing.T) {
	t.Setenv(levelEnv, "warn")

	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Msg("suppressed")
	log.Warn().Msg("emitted")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Errorf("info line emitted at warn level: %s", out)
	}
	if !strings.Contains(out, "emitted") {
		t.Errorf("warn line missing: %s", out)
	}
}

func TestLevelFromEnvironment_Invalid(t *testing.T) {
	t.Setenv(levelEnv, "shout")

	if log := New(); log.GetLevel() != zerolog.InfoLevel {
		t.Errorf("level = %s, want info fallback", log.GetLevel())
	}
}
