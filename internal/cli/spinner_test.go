package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSpinnerDrawsAndClears(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(context.Background(), &buf, "Charting sales.csv...")
	s.start()
	time.Sleep(3 * spinnerInterval)
	s.stop()

	out := buf.String()
	if !strings.Contains(out, "Charting sales.csv...") {
		t.Errorf("output %q does not show the message", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("output %q does not end with a cleared line", out)
	}
}

func TestSpinnerStopTwice(t *testing.T) {
	s := newSpinner(context.Background(), &bytes.Buffer{}, "Exporting...")
	s.start()
	s.stop()
	s.stop()
}

func TestSpinnerEndsWithContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	s := newSpinner(ctx, &bytes.Buffer{}, "Rendering...")
	s.start()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner kept running after its context expired")
	}
	s.stop()
}

func TestSpin(t *testing.T) {
	got, err := spin(context.Background(), "Building chart...", func() (int, error) {
		time.Sleep(20 * time.Millisecond)
		return 42, nil
	})
	if err != nil || got != 42 {
		t.Errorf("spin() = %d, %v, want 42, nil", got, err)
	}

	boom := errors.New("draw failed")
	if _, err := spin(context.Background(), "Drawing...", func() (string, error) {
		return "", boom
	}); !errors.Is(err, boom) {
		t.Errorf("spin() error = %v, want %v", err, boom)
	}
}
