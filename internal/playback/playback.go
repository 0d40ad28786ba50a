// Package playback streams local library files over HTTP with Range support.
// Files are addressed exclusively by opaque ids; the decoded path is
// re-validated against the library root before anything is opened.
package playback

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/clipdex/clipdex-agent/internal/library"
	"github.com/clipdex/clipdex-agent/internal/opaque"
)

var (
	errInvalidRange  = errors.New("invalid range format")
	errUnsatisfiable = errors.New("range not satisfiable")
)

type Server struct {
	roots  *library.RootResolver
	logger *slog.Logger
}

func NewServer(roots *library.RootResolver, logger *slog.Logger) *Server {
	return &Server{roots: roots, logger: logger}
}

// ServeOpaque resolves an opaque file id under the library root and streams
// the file. Traversal-violating ids are a 400, absent files a 404.
func (s *Server) ServeOpaque(w http.ResponseWriter, r *http.Request, id string) error {
	root, err := s.roots.Root()
	if err != nil {
		http.Error(w, "library unavailable", http.StatusServiceUnavailable)
		return nil
	}
	rel, err := opaque.Decode(id)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return nil
	}
	path, err := opaque.SecureJoin(root, rel)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return nil
	}
	return s.serveFile(w, r, path)
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "file not found", http.StatusNotFound)
			return nil
		}
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if stat.IsDir() {
		http.Error(w, "file not found", http.StatusNotFound)
		return nil
	}

	size := stat.Size()
	contentType := mime.TypeByExtension(filepath.Ext(filePath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", contentType)

	rng, err := parseRange(r.Header.Get("Range"), size)
	if err == errUnsatisfiable {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "Range Not Satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return nil
	}
	if err != nil && err != errInvalidRange {
		return err
	}

	if rng == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		io.Copy(w, file)
		return nil
	}

	length := rng.end - rng.start + 1
	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", rng.start, rng.end, size))
	w.WriteHeader(http.StatusPartialContent)

	if _, err := file.Seek(rng.start, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	io.CopyN(w, file, length)
	return nil
}

type byteRange struct {
	start int64
	end   int64
}

// parseRange handles single "bytes=" ranges; a multi-range header is reduced
// to its first range. A missing header yields (nil, nil).
func parseRange(header string, size int64) (*byteRange, error) {
	if header == "" {
		return nil, nil
	}
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return nil, errInvalidRange
	}
	if idx := strings.IndexByte(spec, ','); idx != -1 {
		spec = strings.TrimSpace(spec[:idx])
	}

	first, last, ok := strings.Cut(spec, "-")
	if !ok {
		return nil, errInvalidRange
	}

	var start, end int64
	var err error
	if first == "" {
		suffix, err := strconv.ParseInt(last, 10, 64)
		if err != nil || suffix <= 0 {
			return nil, errInvalidRange
		}
		start = max(size-suffix, 0)
		end = size - 1
	} else {
		start, err = strconv.ParseInt(first, 10, 64)
		if err != nil || start < 0 {
			return nil, errInvalidRange
		}
		if last == "" {
			end = size - 1
		} else {
			end, err = strconv.ParseInt(last, 10, 64)
			if err != nil {
				return nil, errInvalidRange
			}
		}
	}

	if start > end || start >= size {
		return nil, errUnsatisfiable
	}
	if end >= size {
		end = size - 1
	}
	return &byteRange{start: start, end: end}, nil
}
