package library

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"time"
)

// Service lists clip records for the surrounding application. Records are
// rebuilt from the filesystem on every call; only the library root location
// is reused between calls (via the RootResolver).
type Service struct {
	roots  *RootResolver
	logger *slog.Logger
}

func NewService(roots *RootResolver, logger *slog.Logger) *Service {
	return &Service{roots: roots, logger: logger}
}

// Roots exposes the resolver so collaborators share the memoized root.
func (s *Service) Roots() *RootResolver {
	return s.roots
}

// ResolveAccountClipsDirectory returns the library base and the directory
// scoped to accountID (the base itself when accountID is empty).
func (s *Service) ResolveAccountClipsDirectory(accountID string) (base string, accountDir string, err error) {
	return s.roots.AccountDir(accountID)
}

// ListAccountClips walks the account directory, builds a record for every
// rendered short, and returns them most recent first. Per-clip failures are
// logged and skipped; a single malformed file never aborts the listing.
func (s *Service) ListAccountClips(ctx context.Context, accountID string) ([]Clip, error) {
	base, accountDir, err := s.roots.AccountDir(accountID)
	if err != nil {
		if err == ErrNoRoot {
			return nil, err
		}
		// Unknown account: an empty listing, not an error.
		return []Clip{}, nil
	}

	clips := []Clip{}
	for _, projectDir := range DiscoverProjects(accountDir) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		candidates := LoadCandidates(projectDir)
		for _, short := range EnumerateShorts(projectDir) {
			clip, err := BuildClip(base, projectDir, candidates, short.Path, short.ModTime)
			if err != nil {
				if s.logger != nil {
					s.logger.Warn("skipping unaddressable clip",
						"path", filepath.Base(short.Path), "error", err)
				}
				continue
			}
			clips = append(clips, *clip)
		}
	}

	// Most recent first; stable so equal timestamps keep traversal order.
	sort.SliceStable(clips, func(i, j int) bool {
		return clips[i].CreatedAt.After(clips[j].CreatedAt)
	})
	return clips, nil
}

// ShortFile is one rendered short discovered inside a project's sentinel
// subdirectory.
type ShortFile struct {
	Path    string
	ModTime time.Time
}

// EnumerateShorts returns the media files under a project's sentinel
// subdirectory. Nested sentinel directories are not descended into, and
// non-media files (sidecars, manifests) are skipped.
func EnumerateShorts(projectDir string) []ShortFile {
	var shorts []ShortFile
	shortsDir := filepath.Join(projectDir, SentinelDirName)
	filepath.WalkDir(shortsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != shortsDir && d.Name() == SentinelDirName {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsVideoFile(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		shorts = append(shorts, ShortFile{Path: path, ModTime: info.ModTime()})
		return nil
	})
	return shorts
}
