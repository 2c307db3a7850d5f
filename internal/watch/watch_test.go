package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRunInvokesHandlerOnWrite(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan []string, 1)
	go func() {
		_ = Run(ctx, dir, 50*time.Millisecond, logger, func(paths []string) {
			select {
			case done <- paths:
			default:
			}
		})
	}()

	time.Sleep(100 * time.Millisecond)
	target := filepath.Join(dir, "sample.bin")
	if err := os.WriteFile(target, []byte("data"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case paths := <-done:
		if len(paths) == 0 {
			t.Fatal("expected at least one changed path")
		}
	case <-time.After(1500 * time.Millisecond):
		t.Fatal("timed out waiting for handler invocation")
	}
}
