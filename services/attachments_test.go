package services

import (
	"errors"
	"testing"

	"subjectswap_server/models"
)

func TestClassifyAttachment(t *testing.T) {
	tests := []struct {
		name     string
		wantExt  string
		wantKind ResourceKind
	}{
		{"notes.pdf", "pdf", ResourceRaw},
		{"photo.JPG", "jpg", ResourceImage},
		{"scan.webp", "webp", ResourceImage},
		{"diagram.png", "png", ResourceImage},
		{"archive.tar.gz", "gz", ResourceAuto},
		{"README", "", ResourceAuto},
	}

	for _, tt := range tests {
		ext, kind, err := ClassifyAttachment(tt.name, false)
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if ext != tt.wantExt || kind != tt.wantKind {
			t.Errorf("%s = %q, %q; want %q, %q", tt.name, ext, kind, tt.wantExt, tt.wantKind)
		}
	}
}

func TestClassifyAttachmentRequireImage(t *testing.T) {
	if _, _, err := ClassifyAttachment("avatar.png", true); err != nil {
		t.Errorf("image rejected: %v", err)
	}
	for _, name := range []string{"cv.pdf", "notes.txt", "noext"} {
		if _, _, err := ClassifyAttachment(name, true); !errors.Is(err, models.ErrUnsupportedFileType) {
			t.Errorf("%s: err = %v, want ErrUnsupportedFileType", name, err)
		}
	}
}

func TestAttachmentKey(t *testing.T) {
	if got := AttachmentKey("abc", "pdf"); got != "chat_files/abc.pdf" {
		t.Errorf("key = %q", got)
	}
	if got := AttachmentKey("abc", ""); got != "chat_files/abc" {
		t.Errorf("key = %q", got)
	}
}
