// Package source locates and materializes the full-length source video
// behind a clip or project reference. Resolution is a chain of terminal
// checks (preferred hint, canonical file, top-level discovery); when nothing
// exists locally, the materializer downloads the remote original recorded in
// the project's description sidecars.
package source

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/clipdex/clipdex-agent/internal/library"
	"github.com/clipdex/clipdex-agent/internal/opaque"
)

// Error codes surfaced to callers. Resolution never returns a bare error for
// a user request; it returns one of these in a typed result.
const (
	CodeInvalidProject = "invalid-project"
	CodeProjectMissing = "project-missing"
	CodeSourceMissing  = "source-missing"
	CodeDownloadFailed = "download-failed"
	CodeUnauthorised   = "unauthorised"
	CodeUnknown        = "unknown"
)

// Origin identifies which resolution step produced a source file.
type Origin string

const (
	OriginPreferred  Origin = "preferred"
	OriginCanonical  Origin = "canonical"
	OriginDiscovered Origin = "discovered"
)

// ResolveRequest identifies the project whose source video is wanted. Either
// id may be supplied; a clip id is mapped to its owning project. The
// preferred path is an optional local hint checked before anything else.
type ResolveRequest struct {
	ClipID        string `json:"clip_id,omitempty"`
	VideoID       string `json:"video_id,omitempty"`
	PreferredPath string `json:"preferred_path,omitempty"`
}

// ResolveResult is the tagged outcome of ResolveProjectSourceVideo.
type ResolveResult struct {
	Status       string `json:"status"` // ok | missing | error
	FilePath     string `json:"file_path,omitempty"`
	FileURL      string `json:"file_url,omitempty"`
	Origin       Origin `json:"origin,omitempty"`
	ExpectedPath string `json:"expected_path,omitempty"`
	Code         string `json:"code,omitempty"`
	Message      string `json:"message,omitempty"`
}

// AdjustedResult is the tagged outcome of ResolveAdjustedSourceURL.
type AdjustedResult struct {
	Status              string `json:"status"` // ok | error
	URL                 string `json:"url,omitempty"`
	ProjectRelativePath string `json:"project_relative_path,omitempty"`
	Code                string `json:"code,omitempty"`
	Message             string `json:"message,omitempty"`
}

// Resolver answers source-video requests against the library tree.
type Resolver struct {
	roots        *library.RootResolver
	materializer *Materializer
	logger       *slog.Logger
}

func NewResolver(roots *library.RootResolver, materializer *Materializer, logger *slog.Logger) *Resolver {
	return &Resolver{roots: roots, materializer: materializer, logger: logger}
}

// ResolveProjectSourceVideo runs the local resolution chain. It never
// downloads; a project with no local source yields status "missing" with the
// expected canonical path.
func (r *Resolver) ResolveProjectSourceVideo(req ResolveRequest) ResolveResult {
	root, err := r.roots.Root()
	if err != nil {
		return ResolveResult{Status: "error", Code: CodeUnauthorised, Message: "library root unavailable"}
	}

	if path, ok := usablePreferredPath(req.PreferredPath); ok {
		return r.okResult(root, path, OriginPreferred)
	}

	projectDir, res := r.locateProject(root, req)
	if res != nil {
		return *res
	}

	canonical := library.CanonicalSourcePath(projectDir)
	if isRegularFile(canonical) {
		return r.okResult(root, canonical, OriginCanonical)
	}

	if discovered, ok := discoverTopLevelVideo(projectDir); ok {
		return r.okResult(root, discovered, OriginDiscovered)
	}

	return ResolveResult{Status: "missing", ExpectedPath: canonical}
}

// ResolveAdjustedSourceURL guarantees a local copy of the project's original
// source, downloading it if only a remote reference is known, and returns an
// opaque playback address for it.
func (r *Resolver) ResolveAdjustedSourceURL(ctx context.Context, req ResolveRequest) AdjustedResult {
	root, err := r.roots.Root()
	if err != nil {
		return AdjustedResult{Status: "error", Code: CodeUnauthorised, Message: "library root unavailable"}
	}

	projectDir, res := r.locateProject(root, req)
	if res != nil {
		return AdjustedResult{Status: "error", Code: res.Code, Message: res.Message}
	}

	dest := library.CanonicalSourcePath(projectDir)
	outcome := r.materializer.Materialize(ctx, projectDir, dest)
	switch outcome.Status {
	case MaterializeOK:
	case MaterializeMissingRemote:
		return AdjustedResult{Status: "error", Code: CodeSourceMissing,
			Message: "no local source video and no remote reference found"}
	case MaterializeDownloadFailed:
		return AdjustedResult{Status: "error", Code: CodeDownloadFailed, Message: outcome.Message}
	default:
		return AdjustedResult{Status: "error", Code: CodeUnknown, Message: outcome.Message}
	}

	id, err := opaque.Encode(root, dest)
	if err != nil {
		return AdjustedResult{Status: "error", Code: CodeUnknown, Message: "source path not addressable"}
	}
	rel, _ := opaque.Decode(id)
	return AdjustedResult{
		Status:              "ok",
		URL:                 library.PlaybackURLFor(id),
		ProjectRelativePath: rel,
	}
}

// locateProject decodes the request's ids into an existing project
// directory. A clip id is mapped to the parent of its sentinel directory.
// The second return value is non-nil on failure.
func (r *Resolver) locateProject(root string, req ResolveRequest) (string, *ResolveResult) {
	if req.VideoID == "" && req.ClipID == "" {
		return "", &ResolveResult{Status: "error", Code: CodeInvalidProject, Message: "no project or clip reference supplied"}
	}

	decoded := false
	if req.VideoID != "" {
		if dir, ok := r.decodeToPath(root, req.VideoID); ok {
			decoded = true
			if isDir(dir) {
				return dir, nil
			}
		}
	}
	if req.ClipID != "" {
		if clipPath, ok := r.decodeToPath(root, req.ClipID); ok {
			decoded = true
			if dir := projectDirForClipPath(clipPath); dir != "" && isDir(dir) {
				return dir, nil
			}
		}
	}

	if !decoded {
		return "", &ResolveResult{Status: "error", Code: CodeInvalidProject, Message: "malformed project reference"}
	}
	return "", &ResolveResult{Status: "error", Code: CodeProjectMissing, Message: "project directory does not exist"}
}

func (r *Resolver) decodeToPath(root, id string) (string, bool) {
	rel, err := opaque.Decode(id)
	if err != nil {
		return "", false
	}
	abs, err := opaque.SecureJoin(root, rel)
	if err != nil {
		return "", false
	}
	return abs, true
}

func (r *Resolver) okResult(root, path string, origin Origin) ResolveResult {
	res := ResolveResult{Status: "ok", FilePath: path, Origin: origin}
	if id, err := opaque.Encode(root, path); err == nil {
		res.FileURL = library.PlaybackURLFor(id)
	}
	return res
}

// projectDirForClipPath walks up from a clip file to the parent of its
// sentinel directory.
func projectDirForClipPath(clipPath string) string {
	dir := filepath.Dir(clipPath)
	for dir != "" {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		if filepath.Base(dir) == library.SentinelDirName {
			return parent
		}
		dir = parent
	}
	// No sentinel segment: fall back to the grandparent layout
	// <project>/<sentinel>/<clip>.
	return filepath.Dir(filepath.Dir(clipPath))
}

// usablePreferredPath validates a caller-supplied local hint: a non-URL .mp4
// outside any sentinel subdirectory that actually exists.
func usablePreferredPath(path string) (string, bool) {
	if path == "" || strings.Contains(path, "://") {
		return "", false
	}
	if !strings.EqualFold(filepath.Ext(path), ".mp4") {
		return "", false
	}
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == library.SentinelDirName {
			return "", false
		}
	}
	if !isRegularFile(path) {
		return "", false
	}
	return path, true
}

// discoverTopLevelVideo lists files directly in the project directory,
// keeping .mp4 files and picking the case-insensitively first name.
func discoverTopLevelVideo(projectDir string) (string, bool) {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return "", false
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".mp4") {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return "", false
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return filepath.Join(projectDir, names[0]), true
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
