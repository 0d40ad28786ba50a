package library

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// mkClip writes a fake rendered short inside a project's sentinel directory.
func mkClip(t *testing.T, projectDir, name string) string {
	t.Helper()
	path := filepath.Join(projectDir, SentinelDirName, name)
	if err := os.WriteFile(path, []byte("fake video content"), 0644); err != nil {
		t.Fatalf("failed to write clip %s: %v", name, err)
	}
	return path
}

func buildTestClip(t *testing.T, root, projectDir, clipPath string) *Clip {
	t.Helper()
	clip, err := BuildClip(root, projectDir, LoadCandidates(projectDir), clipPath, time.Now())
	if err != nil {
		t.Fatalf("BuildClip() error = %v", err)
	}
	return clip
}

func TestBuildClipFromFilename(t *testing.T) {
	root := t.TempDir()
	project := mkProject(t, root, "My_Cool-Video_20240315")
	clipPath := mkClip(t, project, "clip_10.50-20.25_r8.5.mp4")

	clip := buildTestClip(t, root, project, clipPath)

	if clip.StartSeconds == nil || *clip.StartSeconds != 10.5 {
		t.Errorf("StartSeconds = %v, want 10.5", clip.StartSeconds)
	}
	if clip.EndSeconds == nil || *clip.EndSeconds != 20.25 {
		t.Errorf("EndSeconds = %v, want 20.25", clip.EndSeconds)
	}
	if clip.Rating == nil || *clip.Rating != 8.5 {
		t.Errorf("Rating = %v, want 8.5", clip.Rating)
	}
	if clip.DurationSeconds == nil || math.Abs(*clip.DurationSeconds-9.75) > 1e-9 {
		t.Errorf("DurationSeconds = %v, want 9.75", clip.DurationSeconds)
	}
	if clip.HasAdjustments {
		t.Error("HasAdjustments = true without a sidecar")
	}
	if clip.Title != "My Cool Video" {
		t.Errorf("Title = %q, want date suffix stripped and separators spaced", clip.Title)
	}
	if clip.ID == "" || clip.VideoID == "" {
		t.Error("opaque ids must be populated")
	}
	if clip.PlaybackURL == "" || clip.PreviewURL != clip.PlaybackURL {
		t.Errorf("PreviewURL = %q, want the clip's own playback URL without a canonical file", clip.PreviewURL)
	}
}

func TestBuildClipAdjustmentPrecedence(t *testing.T) {
	root := t.TempDir()
	project := mkProject(t, root, "Video")
	clipPath := mkClip(t, project, "clip_10.50-20.25.mp4")

	sidecar := filepath.Join(project, SentinelDirName, "clip_10.50-20.25.adjust.json")
	if err := os.WriteFile(sidecar, []byte(`{"start_seconds": 9.0, "end_seconds": 21.0}`), 0644); err != nil {
		t.Fatalf("failed to write sidecar: %v", err)
	}

	clip := buildTestClip(t, root, project, clipPath)

	if !clip.HasAdjustments {
		t.Error("HasAdjustments = false, want true")
	}
	if clip.StartSeconds == nil || *clip.StartSeconds != 9.0 {
		t.Errorf("StartSeconds = %v, want sidecar value 9", clip.StartSeconds)
	}
	if clip.EndSeconds == nil || *clip.EndSeconds != 21.0 {
		t.Errorf("EndSeconds = %v, want sidecar value 21", clip.EndSeconds)
	}
	if clip.OriginalStartSeconds == nil || *clip.OriginalStartSeconds != 10.5 {
		t.Errorf("OriginalStartSeconds = %v, want filename value 10.5", clip.OriginalStartSeconds)
	}
	if clip.OriginalEndSeconds == nil || *clip.OriginalEndSeconds != 20.25 {
		t.Errorf("OriginalEndSeconds = %v, want filename value 20.25", clip.OriginalEndSeconds)
	}
}

func TestBuildClipCorruptAdjustmentIgnored(t *testing.T) {
	root := t.TempDir()
	project := mkProject(t, root, "Video")
	clipPath := mkClip(t, project, "clip_1.00-2.00.mp4")

	sidecar := filepath.Join(project, SentinelDirName, "clip_1.00-2.00.adjust.json")
	os.WriteFile(sidecar, []byte(`{definitely not json`), 0644)

	clip := buildTestClip(t, root, project, clipPath)

	if clip.HasAdjustments {
		t.Error("corrupt sidecar must not count as an adjustment")
	}
	if clip.StartSeconds == nil || *clip.StartSeconds != 1.0 {
		t.Errorf("StartSeconds = %v, want filename value", clip.StartSeconds)
	}
}

func TestBuildClipTitleAndMetadataPrecedence(t *testing.T) {
	root := t.TempDir()
	project := mkProject(t, root, "Some_Video_20240101")
	clipPath := mkClip(t, project, "clip_5.00-10.00.mp4")

	writeManifest(t, project, "candidates.json",
		`[{"start": 5.0, "end": 10.0, "quote": "the money quote", "reason": "peak moment", "rating": 9.1}]`)

	descPath := filepath.Join(project, SentinelDirName, "clip_5.00-10.00.txt")
	desc := "Full video: https://example.com/watch?v=abc&t=1m30s\nCredit: Some Channel\n"
	if err := os.WriteFile(descPath, []byte(desc), 0644); err != nil {
		t.Fatalf("failed to write description: %v", err)
	}

	clip := buildTestClip(t, root, project, clipPath)

	if clip.Title != "the money quote" {
		t.Errorf("Title = %q, want the candidate quote", clip.Title)
	}
	if clip.Reason == nil || *clip.Reason != "peak moment" {
		t.Errorf("Reason = %v", clip.Reason)
	}
	if clip.Rating == nil || *clip.Rating != 9.1 {
		t.Errorf("Rating = %v, want 9.1", clip.Rating)
	}
	if clip.Channel == nil || *clip.Channel != "Some Channel" {
		t.Errorf("Channel = %v", clip.Channel)
	}
	if clip.SourceURL != "https://example.com/watch?v=abc" {
		t.Errorf("SourceURL = %q", clip.SourceURL)
	}
	if clip.TimestampURL != "https://example.com/watch?v=abc&t=1m30s" {
		t.Errorf("TimestampURL = %q, want the description's deep link", clip.TimestampURL)
	}
	if clip.TimestampSeconds == nil || *clip.TimestampSeconds != 90 {
		t.Errorf("TimestampSeconds = %v, want 90", clip.TimestampSeconds)
	}
}

func TestBuildClipUnparseableStem(t *testing.T) {
	root := t.TempDir()
	project := mkProject(t, root, "Video_Name")
	clipPath := mkClip(t, project, "highlight.mp4")

	clip := buildTestClip(t, root, project, clipPath)

	if clip.StartSeconds != nil || clip.EndSeconds != nil || clip.DurationSeconds != nil {
		t.Errorf("timing should be null for unparseable stem, got %+v", clip)
	}
	if clip.Title != "Video Name" {
		t.Errorf("Title = %q, want the project title fallback", clip.Title)
	}
}

func TestBuildClipPreviewPrefersCanonical(t *testing.T) {
	root := t.TempDir()
	project := mkProject(t, root, "Video")
	clipPath := mkClip(t, project, "clip_1.00-2.00.mp4")

	canonical := CanonicalSourcePath(project)
	if err := os.WriteFile(canonical, []byte("full source"), 0644); err != nil {
		t.Fatalf("failed to write canonical: %v", err)
	}

	clip := buildTestClip(t, root, project, clipPath)

	if clip.PreviewURL == clip.PlaybackURL {
		t.Error("PreviewURL should point at the canonical source, not the clip")
	}
}

func TestClipAbsentFieldsSerializeAsNull(t *testing.T) {
	root := t.TempDir()
	project := mkProject(t, root, "Video")
	clipPath := mkClip(t, project, "highlight.mp4")

	clip := buildTestClip(t, root, project, clipPath)
	data, err := json.Marshal(clip)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, want := range []string{
		`"quote":null`,
		`"reason":null`,
		`"channel":null`,
		`"rating":null`,
		`"start_seconds":null`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("serialized clip missing %s in %s", want, data)
		}
	}
}

func TestProjectTitle(t *testing.T) {
	cases := map[string]string{
		"My_Video_20240101": "My Video",
		"some-mixed_name":   "some mixed name",
		"Plain":             "Plain",
		"_20240101":         "",
		"a__b--c":           "a b c",
	}
	for in, want := range cases {
		if got := ProjectTitle(in); got != want {
			t.Errorf("ProjectTitle(%q) = %q, want %q", in, got, want)
		}
	}
}
