package library

import (
	"os"
	"path/filepath"
)

// DiscoverProjects walks an account root and returns every project directory:
// a directory that directly contains the sentinel subdirectory. Discovered
// projects are not descended into, and entries named after the sentinel are
// skipped entirely so already-classified output is never re-walked.
//
// The returned order is traversal order, not sorted. Callers needing a
// deterministic order must sort.
func DiscoverProjects(accountRoot string) []string {
	var projects []string
	visited := map[string]bool{}

	stack := []string{accountRoot}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		key := canonicalKey(dir)
		if visited[key] {
			continue
		}
		visited[key] = true

		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.Name() == SentinelDirName {
				continue
			}
			child := filepath.Join(dir, entry.Name())
			info, err := os.Stat(child)
			if err != nil || !info.IsDir() {
				continue
			}
			if IsProjectDir(child) {
				projects = append(projects, child)
				continue
			}
			stack = append(stack, child)
		}
	}
	return projects
}

// IsProjectDir reports whether dir directly contains the sentinel
// subdirectory.
func IsProjectDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, SentinelDirName))
	return err == nil && info.IsDir()
}

// canonicalKey resolves symlinks so a cycle cannot re-enter the traversal
// under a different spelling. Falls back to the lexical path when resolution
// fails.
func canonicalKey(dir string) string {
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		return resolved
	}
	return dir
}
