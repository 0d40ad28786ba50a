package opaque

import (
	"encoding/base64"
	"path/filepath"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	base := t.TempDir()

	paths := []string{
		"clip.mp4",
		"project/shorts/clip_1.00-2.00.mp4",
		"account/My Project_20240101/video.mp4",
	}
	for _, rel := range paths {
		abs := filepath.Join(base, filepath.FromSlash(rel))

		id, err := Encode(base, abs)
		if err != nil {
			t.Fatalf("Encode(%q) error = %v", rel, err)
		}

		decoded, err := Decode(id)
		if err != nil {
			t.Fatalf("Decode(%q) error = %v", id, err)
		}
		if decoded != rel {
			t.Errorf("Decode(Encode(%q)) = %q", rel, decoded)
		}
	}
}

func TestEncodeRejectsOutsideBase(t *testing.T) {
	base := t.TempDir()
	other := t.TempDir()

	if _, err := Encode(base, filepath.Join(other, "clip.mp4")); err == nil {
		t.Error("Encode() should reject a path outside the base")
	}
	if _, err := Encode(base, base); err == nil {
		t.Error("Encode() should reject the base itself (empty relative path)")
	}
	if _, err := Encode(base, filepath.Join(base, "..", "escape.mp4")); err == nil {
		t.Error("Encode() should reject an escaping path")
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"traversal":  base64.RawURLEncoding.EncodeToString([]byte("../secret")),
		"inner dots": base64.RawURLEncoding.EncodeToString([]byte("a/../../b")),
		"null byte":  base64.RawURLEncoding.EncodeToString([]byte("a\x00b")),
		"absolute":   base64.RawURLEncoding.EncodeToString([]byte("/etc/passwd")),
		"empty":      "",
		"not base64": "!!!not-base64!!!",
	}
	for name, id := range cases {
		if _, err := Decode(id); err == nil {
			t.Errorf("Decode(%s) should fail", name)
		}
	}
}

func TestDecodeAcceptsPadding(t *testing.T) {
	id := base64.URLEncoding.EncodeToString([]byte("a/b.mp4"))

	rel, err := Decode(id)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if rel != "a/b.mp4" {
		t.Errorf("Decode() = %q, want a/b.mp4", rel)
	}
}

func TestSecureJoin(t *testing.T) {
	base := t.TempDir()

	joined, err := SecureJoin(base, "project/clip.mp4")
	if err != nil {
		t.Fatalf("SecureJoin() error = %v", err)
	}
	want := filepath.Join(base, "project", "clip.mp4")
	if joined != want {
		t.Errorf("SecureJoin() = %q, want %q", joined, want)
	}

	for name, rel := range map[string]string{
		"traversal": "../outside",
		"nested":    "a/../../outside",
		"absolute":  "/etc/passwd",
		"null byte": "a\x00b",
		"empty":     "",
		"dot":       ".",
	} {
		if _, err := SecureJoin(base, rel); err == nil {
			t.Errorf("SecureJoin(%s: %q) should fail", name, rel)
		}
	}
}
