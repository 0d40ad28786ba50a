package library

import (
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/clipdex/clipdex-agent/internal/opaque"
)

// adjustTolerance is the window delta below which an adjustment sidecar is
// considered a no-op.
const adjustTolerance = 1e-3

var (
	clipStemPattern  = regexp.MustCompile(`(?i)^clip_(\d+(?:\.\d+)?)-(\d+(?:\.\d+)?)(?:_r(\d+(?:\.\d+)?))?$`)
	dateSuffix       = regexp.MustCompile(`_(\d{8})$`)
	separatorRuns    = regexp.MustCompile(`[-_]+`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
	descriptionNames = []string{"description.txt", "description.md"}
)

// CanonicalSourcePath is the expected location of a project's full-length
// source video: a file named after the project directory itself.
func CanonicalSourcePath(projectDir string) string {
	return filepath.Join(projectDir, filepath.Base(projectDir)+".mp4")
}

// PlaybackURLFor returns the agent-relative playback address for an opaque id.
func PlaybackURLFor(id string) string {
	return "/playback?id=" + url.QueryEscape(id)
}

// BuildClip assembles the normalized record for one rendered short. It
// returns an error only when the clip cannot be addressed at all (its path
// escapes the library root); every metadata problem degrades to defaults.
func BuildClip(libraryRoot, projectDir string, candidates map[string]*Candidate, clipPath string, modTime time.Time) (*Clip, error) {
	clipID, err := opaque.Encode(libraryRoot, clipPath)
	if err != nil {
		return nil, fmt.Errorf("clip outside library root: %w", err)
	}
	videoID, err := opaque.Encode(libraryRoot, projectDir)
	if err != nil {
		return nil, fmt.Errorf("project outside library root: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(clipPath), filepath.Ext(clipPath))
	origStart, origEnd, rating := parseClipStem(stem)

	var cand *Candidate
	if !math.IsNaN(origStart) && !math.IsNaN(origEnd) {
		cand = candidates[CandidateKey(origStart, origEnd)]
	}

	desc := ParseDescription(findDescription(clipPath, stem))

	effStart, effEnd := origStart, origEnd
	if adj, ok := LoadAdjustment(clipPath); ok {
		effStart, effEnd = adj.StartSeconds, adj.EndSeconds
		if adj.OriginalStartSeconds != nil {
			origStart = *adj.OriginalStartSeconds
		}
		if adj.OriginalEndSeconds != nil {
			origEnd = *adj.OriginalEndSeconds
		}
	}
	if !finite(effStart) {
		effStart = origStart
	}
	if !finite(effEnd) {
		effEnd = origEnd
	}
	if finite(effStart) && (!finite(effEnd) || effEnd < effStart) {
		effEnd = effStart
	}
	hasAdjustments := math.Abs(effStart-origStart) > adjustTolerance ||
		math.Abs(effEnd-origEnd) > adjustTolerance

	timestampURL := desc.TimestampURL
	if timestampURL == "" && desc.SourceURL != "" && finite(effStart) {
		timestampURL = withTimestampParam(desc.SourceURL, int(math.Round(effStart)))
	}

	playbackURL := PlaybackURLFor(clipID)
	previewURL := playbackURL
	if canonical := CanonicalSourcePath(projectDir); isRegularFile(canonical) {
		if previewID, err := opaque.Encode(libraryRoot, canonical); err == nil {
			previewURL = PlaybackURLFor(previewID)
		}
	}

	clip := &Clip{
		ID:                   clipID,
		VideoID:              videoID,
		Channel:              strPtr(desc.Channel),
		StartSeconds:         floatPtr(effStart),
		EndSeconds:           floatPtr(effEnd),
		OriginalStartSeconds: floatPtr(origStart),
		OriginalEndSeconds:   floatPtr(origEnd),
		HasAdjustments:       hasAdjustments,
		PlaybackURL:          playbackURL,
		PreviewURL:           previewURL,
		SourceURL:            desc.SourceURL,
		TimestampURL:         timestampURL,
		TimestampSeconds:     desc.TimestampSeconds,
		CreatedAt:            modTime,
	}
	if finite(effStart) && finite(effEnd) {
		d := effEnd - effStart
		clip.DurationSeconds = &d
	}
	if cand != nil {
		clip.Quote = strPtr(cand.Quote)
		clip.Reason = strPtr(cand.Reason)
		clip.Rating = cand.Rating
	}
	if !math.IsNaN(rating) && clip.Rating == nil {
		clip.Rating = &rating
	}

	switch {
	case clip.Quote != nil:
		clip.Title = *clip.Quote
	default:
		if title := ProjectTitle(filepath.Base(projectDir)); title != "" {
			clip.Title = title
		} else {
			clip.Title = stem
		}
	}

	return clip, nil
}

// parseClipStem extracts start/end/rating from a rendered short's filename
// stem. NaN marks a value that could not be parsed.
func parseClipStem(stem string) (start, end, rating float64) {
	start, end, rating = math.NaN(), math.NaN(), math.NaN()
	m := clipStemPattern.FindStringSubmatch(stem)
	if m == nil {
		return
	}
	if v, err := strconv.ParseFloat(m[1], 64); err == nil {
		start = v
	}
	if v, err := strconv.ParseFloat(m[2], 64); err == nil {
		end = v
	}
	if m[3] != "" {
		if v, err := strconv.ParseFloat(m[3], 64); err == nil {
			rating = v
		}
	}
	return
}

// ProjectTitle derives a human title from a project directory name: a
// trailing _YYYYMMDD date suffix is stripped, separator runs become spaces,
// and whitespace is collapsed.
func ProjectTitle(dirName string) string {
	title := dateSuffix.ReplaceAllString(dirName, "")
	title = separatorRuns.ReplaceAllString(title, " ")
	title = whitespaceRuns.ReplaceAllString(title, " ")
	return strings.TrimSpace(title)
}

// findDescription returns the first non-empty description sidecar for a clip,
// trying clip-specific names before the shared per-directory ones.
func findDescription(clipPath, stem string) string {
	dir := filepath.Dir(clipPath)
	names := []string{stem + ".txt", stem + ".md"}
	names = append(names, descriptionNames...)
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if text := strings.TrimSpace(string(data)); text != "" {
			return text
		}
	}
	return ""
}

func withTimestampParam(sourceURL string, seconds int) string {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return sourceURL
	}
	q := u.Query()
	q.Set("t", strconv.Itoa(seconds))
	u.RawQuery = q.Encode()
	return u.String()
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func floatPtr(v float64) *float64 {
	if !finite(v) {
		return nil
	}
	return &v
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
