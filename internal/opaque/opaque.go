// Package opaque implements the reversible, traversal-safe path identifiers
// handed across the application boundary in place of raw filesystem paths.
//
// An id is the base64url (unpadded) encoding of a POSIX-style path relative
// to the library root. Decoding rejects anything that could address a file
// outside that root: embedded null bytes, ".." segments, and absolute paths.
package opaque

import (
	"encoding/base64"
	"errors"
	"path"
	"path/filepath"
	"strings"
)

var (
	// ErrOutsideBase is returned when a path does not resolve under the base
	// directory.
	ErrOutsideBase = errors.New("path resolves outside base directory")

	// ErrMalformed is returned for ids that cannot be decoded or decode to a
	// path that is not safe to join.
	ErrMalformed = errors.New("malformed opaque id")
)

// Encode returns the opaque id for absolutePath relative to baseDir.
// It fails if the relative path escapes baseDir or is empty.
func Encode(baseDir, absolutePath string) (string, error) {
	rel, err := filepath.Rel(baseDir, absolutePath)
	if err != nil {
		return "", ErrOutsideBase
	}
	rel = filepath.ToSlash(rel)
	if rel == "" || rel == "." || rel == ".." || strings.HasPrefix(rel, "../") || path.IsAbs(rel) {
		return "", ErrOutsideBase
	}
	return base64.RawURLEncoding.EncodeToString([]byte(rel)), nil
}

// Decode reverses Encode, returning the library-relative POSIX path.
// Padded input is accepted; the padding is stripped before decoding.
func Decode(id string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(id, "="))
	if err != nil {
		return "", ErrMalformed
	}
	rel := string(raw)
	if rel == "" || strings.ContainsRune(rel, 0) {
		return "", ErrMalformed
	}
	if hasDotDotSegment(rel) || path.IsAbs(rel) || filepath.IsAbs(filepath.FromSlash(rel)) {
		return "", ErrMalformed
	}
	return rel, nil
}

// SecureJoin joins a library-relative path onto baseDir and re-validates
// containment. Decode already rejects ".." segments, but relative paths also
// arrive un-decoded from other callers, so the join is checked again.
func SecureJoin(baseDir, relativePath string) (string, error) {
	if relativePath == "" || strings.ContainsRune(relativePath, 0) {
		return "", ErrMalformed
	}
	native := filepath.FromSlash(relativePath)
	if filepath.IsAbs(native) {
		return "", ErrOutsideBase
	}
	joined := filepath.Join(baseDir, native)
	rel, err := filepath.Rel(baseDir, joined)
	if err != nil {
		return "", ErrOutsideBase
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideBase
	}
	return joined, nil
}

func hasDotDotSegment(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return true
		}
	}
	// Windows-style separators are not produced by Encode but must not smuggle
	// a traversal through Decode either.
	for _, seg := range strings.Split(p, "\\") {
		if seg == ".." {
			return true
		}
	}
	return false
}
