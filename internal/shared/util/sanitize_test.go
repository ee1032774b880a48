package util

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeFileName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"cv.pdf", "cv.pdf"},
		{"  سيرة.docx ", "سيرة.docx"},
		{"dir/cv.txt", "dir_cv.txt"},
		{`C:\Users\me\cv.pdf`, "C:_Users_me_cv.pdf"},
		{"cv\x00\n.pdf", "cv.pdf"},
	}
	for _, tc := range cases {
		got, err := SanitizeFileName(tc.in)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestSanitizeFileNameRejects(t *testing.T) {
	for _, in := range []string{"", "   ", "../etc/passwd", "\x01\x02"} {
		if _, err := SanitizeFileName(in); !errors.Is(err, ErrInvalidFileName) {
			t.Fatalf("%q: expected ErrInvalidFileName, got %v", in, err)
		}
	}
}

func TestSanitizeFileNameCapsLength(t *testing.T) {
	got, err := SanitizeFileName(strings.Repeat("ب", 200) + ".pdf")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(got) > maxFileNameLen || !utf8.ValidString(got) {
		t.Fatalf("expected valid name within %d bytes, got %d", maxFileNameLen, len(got))
	}
}
