package logging

import (
	"log/slog"
	"testing"
)

func TestLevelFromName(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelWarn,
	}
	for name, want := range cases {
		if got := levelFromName(name); got != want {
			t.Errorf("levelFromName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	cases := []struct {
		count int
		want  slog.Level
	}{
		{0, slog.LevelWarn},
		{1, slog.LevelInfo},
		{2, slog.LevelDebug},
		{5, slog.LevelDebug},
	}
	for _, c := range cases {
		if got := levelFromVerbosity(c.count); got != c.want {
			t.Errorf("levelFromVerbosity(%d) = %v, want %v", c.count, got, c.want)
		}
	}
}
