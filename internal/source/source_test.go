package source

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestClassifyMime(t *testing.T) {
	cases := []struct {
		mime string
		want string
		ok   bool
	}{
		{"audio/mpeg", FileTypeAudio, true},
		{"audio/ogg; codecs=opus", FileTypeAudio, true},
		{"AUDIO/FLAC", FileTypeAudio, true},
		{"application/pdf", FileTypePDF, true},
		{"application/PDF", FileTypePDF, true},
		{"video/mp4", "", false},
		{"application/zip", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ClassifyMime(tc.mime)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ClassifyMime(%q) = %q, %v; want %q, %v", tc.mime, got, ok, tc.want, tc.ok)
		}
	}
}

func TestSynthesizeName(t *testing.T) {
	if got := SynthesizeName(FileTypeAudio, 10, "Artist", "Track"); got != "Artist - Track.mp3" {
		t.Fatalf("audio with tags = %q", got)
	}
	if got := SynthesizeName(FileTypeAudio, 10, "", "Track"); got != "Track.mp3" {
		t.Fatalf("audio with title only = %q", got)
	}
	if got := SynthesizeName(FileTypeAudio, 10, "", ""); got != "file_10.mp3" {
		t.Fatalf("audio without tags = %q", got)
	}
	if got := SynthesizeName(FileTypePDF, 42, "", ""); got != "file_42.pdf" {
		t.Fatalf("pdf fallback = %q", got)
	}
}

func TestAsRateLimit(t *testing.T) {
	base := &RateLimitError{Wait: 7 * time.Second}
	wrapped := fmt.Errorf("list messages: %w", base)

	wait, ok := AsRateLimit(wrapped)
	if !ok || wait != 7*time.Second {
		t.Fatalf("AsRateLimit = %s, %v", wait, ok)
	}
	if _, ok := AsRateLimit(errors.New("plain")); ok {
		t.Fatal("plain error must not match")
	}
}
