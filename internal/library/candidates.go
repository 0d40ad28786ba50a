package library

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// manifestEntry is the raw shape of one candidate manifest element. Pointer
// fields distinguish "absent" from zero values; nothing untyped leaves this
// file.
type manifestEntry struct {
	Start  *float64 `json:"start"`
	End    *float64 `json:"end"`
	Rating *float64 `json:"rating"`
	Quote  *string  `json:"quote"`
	Reason *string  `json:"reason"`
}

// CandidateKey is the rounded range key shared by manifests and clip
// filenames: both start and end rounded to two decimals, formatted with two
// decimal places.
func CandidateKey(start, end float64) string {
	return fmt.Sprintf("%.2f-%.2f", round2(start), round2(end))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// LoadCandidates reads every candidate manifest in projectDir and merges the
// entries by rounded range key. Missing, unreadable, or non-list manifests
// are skipped, and a malformed entry is skipped individually so its valid
// siblings survive. For a key seen before, later manifests only fill fields
// that are still missing; they never overwrite.
func LoadCandidates(projectDir string) map[string]*Candidate {
	merged := map[string]*Candidate{}
	for _, name := range CandidateManifestNames {
		data, err := os.ReadFile(filepath.Join(projectDir, name))
		if err != nil {
			continue
		}
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			continue
		}
		for _, elem := range raw {
			var entry manifestEntry
			if err := json.Unmarshal(elem, &entry); err != nil {
				continue
			}
			if entry.Start == nil || entry.End == nil {
				continue
			}
			key := CandidateKey(*entry.Start, *entry.End)
			cand, ok := merged[key]
			if !ok {
				cand = &Candidate{Start: round2(*entry.Start), End: round2(*entry.End)}
				merged[key] = cand
			}
			if cand.Quote == "" && entry.Quote != nil {
				cand.Quote = *entry.Quote
			}
			if cand.Reason == "" && entry.Reason != nil {
				cand.Reason = *entry.Reason
			}
			if cand.Rating == nil && entry.Rating != nil {
				rating := *entry.Rating
				cand.Rating = &rating
			}
		}
	}
	return merged
}
