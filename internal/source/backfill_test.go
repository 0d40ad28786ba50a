package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/clipdex/clipdex-agent/internal/fetch"
	"github.com/clipdex/clipdex-agent/internal/library"
)

func TestBackfillMaterializesMissingSources(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("source"))
	}))
	defer server.Close()

	root := t.TempDir()

	withRemote := newProject(t, root, "NeedsDownload")
	writeRemoteDescription(t, withRemote, server.URL+"/source.mp4")

	alreadyDone := newProject(t, root, "Complete")
	os.WriteFile(library.CanonicalSourcePath(alreadyDone), []byte("existing"), 0644)

	noRemote := newProject(t, root, "Orphan")

	roots := library.NewRootResolver(root, nil)
	b := NewBackfill(roots, NewMaterializer(fetch.NewClient(), nil), 2, nil)

	if got := b.Run(context.Background()); got != 1 {
		t.Errorf("Run() = %d, want 1 project materialized", got)
	}
	if _, err := os.Stat(library.CanonicalSourcePath(withRemote)); err != nil {
		t.Errorf("canonical source not materialized: %v", err)
	}
	if _, err := os.Stat(library.CanonicalSourcePath(noRemote)); !os.IsNotExist(err) {
		t.Error("project without a remote reference must stay unmaterialized")
	}
}

func TestBackfillNoRoot(t *testing.T) {
	roots := library.NewRootResolver(filepath.Join(t.TempDir(), "missing"), nil)
	b := NewBackfill(roots, NewMaterializer(nil, nil), 1, nil)

	if got := b.Run(context.Background()); got != 0 {
		t.Errorf("Run() = %d, want 0 without a library root", got)
	}
}
