package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"golang.org/x/sync/singleflight"

	"github.com/clipdex/clipdex-agent/internal/fetch"
	"github.com/clipdex/clipdex-agent/internal/library"
	"github.com/clipdex/clipdex-agent/internal/logging"
)

// Materialization outcomes. MissingRemote means no description sidecar in the
// project carried a usable source URL; DownloadFailed covers both transfer
// errors and unsupported URL schemes.
const (
	MaterializeOK             = "ok"
	MaterializeMissingRemote  = "missing-remote"
	MaterializeDownloadFailed = "download-failed"
)

// MaterializeOutcome is the terminal result of one materialization request.
type MaterializeOutcome struct {
	Status   string
	DestPath string
	Message  string
}

// Downloader is the transfer capability the materializer depends on.
type Downloader interface {
	DownloadTo(ctx context.Context, url string, w io.Writer) (int64, error)
}

// Materializer ensures a project's full-length source video exists locally,
// downloading it from the remote reference recorded in description sidecars
// when necessary. Concurrent requests for the same project directory join a
// single in-flight download: the coordination entry is registered before the
// transfer starts and removed once it finishes, so a later request may retry.
type Materializer struct {
	client Downloader
	logger *slog.Logger
	group  singleflight.Group
}

func NewMaterializer(client Downloader, logger *slog.Logger) *Materializer {
	if logger != nil {
		logger = logging.WithComponent(logger, "materializer")
	}
	return &Materializer{client: client, logger: logger}
}

// Materialize makes destPath exist for projectDir. An already-present
// destination succeeds trivially without touching the single-flight group.
func (m *Materializer) Materialize(ctx context.Context, projectDir, destPath string) MaterializeOutcome {
	if fileExists(destPath) {
		return MaterializeOutcome{Status: MaterializeOK, DestPath: destPath}
	}

	v, _, _ := m.group.Do(projectDir, func() (interface{}, error) {
		return m.materialize(ctx, projectDir, destPath), nil
	})
	return v.(MaterializeOutcome)
}

func (m *Materializer) materialize(ctx context.Context, projectDir, destPath string) MaterializeOutcome {
	// The transfer is shared by every caller joined on the single-flight
	// entry, so it must not die with the caller that started it. An in-flight
	// download runs to completion or failure.
	ctx = context.WithoutCancel(ctx)

	// A concurrent caller may have finished while this one waited on the
	// single-flight entry.
	if fileExists(destPath) {
		return MaterializeOutcome{Status: MaterializeOK, DestPath: destPath}
	}

	remote, ok := library.FindRemoteSourceURL(projectDir)
	if !ok {
		return MaterializeOutcome{Status: MaterializeMissingRemote, DestPath: destPath,
			Message: "no remote source reference in project descriptions"}
	}

	parsed, err := url.Parse(remote)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		// No silent protocol downgrade: anything but http(s) is a failure.
		return MaterializeOutcome{Status: MaterializeDownloadFailed, DestPath: destPath,
			Message: fmt.Sprintf("unsupported source url scheme in %q", remote)}
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return MaterializeOutcome{Status: MaterializeDownloadFailed, DestPath: destPath,
			Message: fmt.Sprintf("create destination directory: %v", err)}
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), "."+filepath.Base(destPath)+".download-*")
	if err != nil {
		return MaterializeOutcome{Status: MaterializeDownloadFailed, DestPath: destPath,
			Message: fmt.Sprintf("create temp file: %v", err)}
	}

	if m.logger != nil {
		m.logger.Info("downloading source video",
			"url", remote, "dest", logging.SanitizePath(destPath))
	}

	written, err := m.client.DownloadTo(ctx, remote, tmp)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		// Partial data must never become visible at the destination.
		os.Remove(tmp.Name())
		return MaterializeOutcome{Status: MaterializeDownloadFailed, DestPath: destPath,
			Message: fmt.Sprintf("download failed: %v", err)}
	}

	if err := os.Rename(tmp.Name(), destPath); err != nil {
		os.Remove(tmp.Name())
		return MaterializeOutcome{Status: MaterializeDownloadFailed, DestPath: destPath,
			Message: fmt.Sprintf("finalize download: %v", err)}
	}

	if m.logger != nil {
		m.logger.Info("source video materialized",
			"dest", logging.SanitizePath(destPath), "bytes", written)
	}
	return MaterializeOutcome{Status: MaterializeOK, DestPath: destPath}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

var _ Downloader = (*fetch.Client)(nil)
