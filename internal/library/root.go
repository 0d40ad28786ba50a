package library

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/clipdex/clipdex-agent/internal/config"
	"github.com/clipdex/clipdex-agent/internal/opaque"
)

// ErrNoRoot is returned when no library root could be located.
var ErrNoRoot = errors.New("library root unavailable")

// RootResolver locates the library root once and reuses the answer for the
// process lifetime. The root cannot change without a restart, so a negative
// probe is memoized too.
type RootResolver struct {
	override   string
	candidates []string

	mu       sync.Mutex
	resolved bool
	root     string
	err      error
}

// NewRootResolver builds a resolver. override, when non-empty, is used
// verbatim (it still must exist); otherwise candidates are probed in order
// and the first existing directory wins.
func NewRootResolver(override string, candidates []string) *RootResolver {
	if candidates == nil {
		candidates = config.LibraryRootCandidates
	}
	return &RootResolver{override: override, candidates: candidates}
}

// Root returns the absolute library root, resolving it on first use.
func (r *RootResolver) Root() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolved {
		return r.root, r.err
	}
	r.root, r.err = r.probe()
	r.resolved = true
	return r.root, r.err
}

// Reset clears the memoized result so tests can re-probe.
func (r *RootResolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolved = false
	r.root = ""
	r.err = nil
}

func (r *RootResolver) probe() (string, error) {
	if r.override != "" {
		if info, err := os.Stat(r.override); err == nil && info.IsDir() {
			return filepath.Abs(r.override)
		}
		return "", ErrNoRoot
	}
	for _, cand := range r.candidates {
		if info, err := os.Stat(cand); err == nil && info.IsDir() {
			return filepath.Abs(cand)
		}
	}
	return "", ErrNoRoot
}

// AccountDir resolves the directory scoped to one account, or the root itself
// when accountID is empty. The returned directory must exist.
func (r *RootResolver) AccountDir(accountID string) (base string, accountDir string, err error) {
	root, err := r.Root()
	if err != nil {
		return "", "", err
	}
	if accountID == "" {
		return root, root, nil
	}
	dir, err := opaque.SecureJoin(root, accountID)
	if err != nil {
		return root, "", os.ErrNotExist
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return root, "", os.ErrNotExist
	}
	return root, dir, nil
}
