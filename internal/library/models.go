package library

import (
	"strings"
	"time"
)

const (
	// SentinelDirName marks a directory as a project: any directory that
	// directly contains a subdirectory of this name holds rendered shorts.
	SentinelDirName = "shorts"

	// AdjustSidecarSuffix is appended to a clip's stem to locate its
	// adjustment sidecar.
	AdjustSidecarSuffix = ".adjust.json"
)

// CandidateManifestNames is the fixed, ordered list of manifest files read
// per project, most specific first. Earlier files win for fields they set;
// later files only fill fields still missing.
var CandidateManifestNames = []string{
	"render_queue.json",
	"candidates.json",
	"candidates_top.json",
	"candidates_all.json",
}

// VideoExtensions lists the media file extensions treated as rendered shorts.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
}

// Candidate is one merged time-range annotation from the project's candidate
// manifests. Start and end are the (rounded) range key components; the
// annotation fields stay nil/empty until some manifest provides them.
type Candidate struct {
	Start  float64
	End    float64
	Rating *float64
	Quote  string
	Reason string
}

// DescriptionMeta is the metadata extracted from a free-text description
// sidecar. Absent fields are empty strings / nil.
type DescriptionMeta struct {
	Description      string
	SourceURL        string
	TimestampURL     string
	TimestampSeconds *int
	Channel          string
}

// Adjustment records a user override of the pipeline-assigned clip window,
// read from a <stem>.adjust.json sidecar.
type Adjustment struct {
	StartSeconds         float64
	EndSeconds           float64
	OriginalStartSeconds *float64
	OriginalEndSeconds   *float64
}

// Clip is the normalized record for one rendered short. It is rebuilt from
// the filesystem on every listing call; nothing here is cached.
type Clip struct {
	ID      string `json:"id"`
	VideoID string `json:"video_id"`

	Title   string   `json:"title"`
	Channel *string  `json:"channel"`
	Quote   *string  `json:"quote"`
	Reason  *string  `json:"reason"`
	Rating  *float64 `json:"rating"`

	StartSeconds         *float64 `json:"start_seconds"`
	EndSeconds           *float64 `json:"end_seconds"`
	OriginalStartSeconds *float64 `json:"original_start_seconds"`
	OriginalEndSeconds   *float64 `json:"original_end_seconds"`
	DurationSeconds      *float64 `json:"duration_seconds"`
	HasAdjustments       bool     `json:"has_adjustments"`

	PlaybackURL      string `json:"playback_url"`
	PreviewURL       string `json:"preview_url"`
	SourceURL        string `json:"source_url"`
	TimestampURL     string `json:"timestamp_url"`
	TimestampSeconds *int   `json:"timestamp_seconds"`

	CreatedAt time.Time `json:"created_at"`
}

// IsVideoFile reports whether the filename has a recognized media extension.
func IsVideoFile(filename string) bool {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 {
		return false
	}
	return VideoExtensions[strings.ToLower(filename[idx:])]
}
