package services

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapIncludesDetailAndMarker(t *testing.T) {
	base := errors.New("connection refused")
	err := Wrap(ErrExternalTool, "transcribing", "gemini request", "provider unreachable", base)
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("expected marker ErrExternalTool, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped base error, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{"transcribing", "gemini request", "provider unreachable", "connection refused"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("nil marker should default to ErrTransient, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("empty detail should collapse to generic message, got %q", err.Error())
	}
}

func TestFatalClassification(t *testing.T) {
	if !Fatal(Wrap(ErrValidation, "resume", "segments", "empty set", nil)) {
		t.Fatal("validation errors are fatal")
	}
	if Fatal(Wrap(ErrTransient, "dubbing", "tts", "rate limited", nil)) {
		t.Fatal("transient errors are not fatal")
	}
}
