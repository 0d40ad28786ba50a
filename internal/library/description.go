package library

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	fullVideoLine = regexp.MustCompile(`(?i)^full video:\s*(https?://\S+)`)
	creditLine    = regexp.MustCompile(`(?i)^credit:\s*(.+)$`)
	hmsToken      = regexp.MustCompile(`^(?:(\d+)h)?(?:(\d+)m)?(?:(\d+)s?)?$`)
	digitRun      = regexp.MustCompile(`\d+`)
)

// DescriptionForClip locates and parses the description sidecar for a
// rendered short, following the lookup chain: <stem>.txt, <stem>.md,
// description.txt, description.md in the clip's directory.
func DescriptionForClip(clipPath string) DescriptionMeta {
	stem := strings.TrimSuffix(filepath.Base(clipPath), filepath.Ext(clipPath))
	return ParseDescription(findDescription(clipPath, stem))
}

// FindRemoteSourceURL scans a project's shorts for the first description
// sidecar that yields a usable source URL.
func FindRemoteSourceURL(projectDir string) (string, bool) {
	for _, short := range EnumerateShorts(projectDir) {
		if meta := DescriptionForClip(short.Path); meta.SourceURL != "" {
			return meta.SourceURL, true
		}
	}
	return "", false
}

// ParseDescription scans a free-text description sidecar line by line. The
// first "full video:" line sets the timestamp URL and the first "credit:"
// line sets the channel; later matches are ignored.
func ParseDescription(text string) DescriptionMeta {
	meta := DescriptionMeta{Description: text}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if meta.TimestampURL == "" {
			if m := fullVideoLine.FindStringSubmatch(line); m != nil {
				meta.TimestampURL = m[1]
				continue
			}
		}
		if meta.Channel == "" {
			if m := creditLine.FindStringSubmatch(line); m != nil {
				meta.Channel = strings.TrimSpace(m[1])
			}
		}
	}

	if meta.TimestampURL != "" {
		meta.SourceURL = StripTimeParams(meta.TimestampURL)
		if secs, ok := timestampSecondsFromURL(meta.TimestampURL); ok {
			meta.TimestampSeconds = &secs
		}
	}
	return meta
}

// StripTimeParams removes the t and start query parameters and any fragment
// from a URL, yielding the canonical source address. Unparseable URLs are
// returned unchanged.
func StripTimeParams(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Del("t")
	q.Del("start")
	u.RawQuery = q.Encode()
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// timestampSecondsFromURL derives a deep-link offset from a timestamp URL by
// checking the t query parameter, then start, then a t= token inside the
// fragment.
func timestampSecondsFromURL(raw string) (int, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return 0, false
	}
	q := u.Query()
	for _, token := range []string{q.Get("t"), q.Get("start")} {
		if token != "" {
			return parseTimeToken(token)
		}
	}
	for _, part := range strings.Split(u.Fragment, "&") {
		if token, ok := strings.CutPrefix(part, "t="); ok && token != "" {
			return parseTimeToken(token)
		}
	}
	return 0, false
}

// parseTimeToken parses a timestamp token as a bare integer, then as an
// XhYmZ[s] duration, then falls back to the first run of digits anywhere in
// the token.
func parseTimeToken(token string) (int, bool) {
	if n, err := strconv.Atoi(token); err == nil {
		return n, true
	}
	if m := hmsToken.FindStringSubmatch(token); m != nil && (m[1] != "" || m[2] != "" || m[3] != "") {
		secs := 0
		if m[1] != "" {
			h, _ := strconv.Atoi(m[1])
			secs += h * 3600
		}
		if m[2] != "" {
			min, _ := strconv.Atoi(m[2])
			secs += min * 60
		}
		if m[3] != "" {
			s, _ := strconv.Atoi(m[3])
			secs += s
		}
		return secs, true
	}
	if run := digitRun.FindString(token); run != "" {
		if n, err := strconv.Atoi(run); err == nil {
			return n, true
		}
	}
	return 0, false
}
