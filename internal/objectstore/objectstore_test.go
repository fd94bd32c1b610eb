package objectstore

import "testing"

func TestStoragePathRoundTrip(t *testing.T) {
	path := FormatStoragePath("bucket-messages", "100/10/lecture.mp3")
	if path != "bucket-messages/100/10/lecture.mp3" {
		t.Fatalf("path = %q", path)
	}

	bucket, object, err := ParseStoragePath(path)
	if err != nil {
		t.Fatalf("ParseStoragePath: %v", err)
	}
	if bucket != "bucket-messages" || object != "100/10/lecture.mp3" {
		t.Fatalf("parsed = %q, %q", bucket, object)
	}
}

func TestParseStoragePathRejectsMalformed(t *testing.T) {
	for _, path := range []string{"", "no-slash", "/leading", "trailing/"} {
		if _, _, err := ParseStoragePath(path); err == nil {
			t.Errorf("ParseStoragePath(%q) should fail", path)
		}
	}
}

func TestObjectName(t *testing.T) {
	if got := ObjectName(100, 10, "lecture.mp3"); got != "100/10/lecture.mp3" {
		t.Fatalf("ObjectName = %q", got)
	}
}
