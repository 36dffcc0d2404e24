package services

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("HTTP 429")
	err := Wrap(ErrTransient, "yt-dlp", "download", base)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient classification, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped base error, got %v", err)
	}
	if !strings.Contains(err.Error(), "yt-dlp: download") {
		t.Fatalf("expected tool context in message, got %q", err.Error())
	}
}

func TestWrapNilMarkerDefaultsTransient(t *testing.T) {
	err := Wrap(nil, "ffmpeg", "remux", errors.New("boom"))
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("nil marker should default to transient, got %v", err)
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := Wrap(ErrPermanent, "yt-dlp", "", nil)
	if !IsPermanent(err) {
		t.Fatalf("expected permanent, got %v", err)
	}
	if strings.Contains(err.Error(), "<nil>") {
		t.Fatalf("unexpected nil rendering: %q", err.Error())
	}
}

func TestIsPermanent(t *testing.T) {
	if IsPermanent(Wrap(ErrTransient, "x", "y", nil)) {
		t.Fatal("transient error misclassified as permanent")
	}
	if !IsPermanent(Wrap(ErrPermanent, "x", "y", nil)) {
		t.Fatal("permanent error not detected")
	}
}
