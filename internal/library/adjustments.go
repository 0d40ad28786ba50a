package library

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// adjustSidecar is the raw shape of a <stem>.adjust.json file.
type adjustSidecar struct {
	StartSeconds         *float64 `json:"start_seconds"`
	EndSeconds           *float64 `json:"end_seconds"`
	OriginalStartSeconds *float64 `json:"original_start_seconds"`
	OriginalEndSeconds   *float64 `json:"original_end_seconds"`
}

// LoadAdjustment reads the adjustment sidecar next to clipPath. Any read or
// parse failure, and any non-finite required field, yields (nil, false):
// a corrupt sidecar is treated the same as an absent one.
func LoadAdjustment(clipPath string) (*Adjustment, bool) {
	data, err := os.ReadFile(adjustSidecarPath(clipPath))
	if err != nil {
		return nil, false
	}
	var raw adjustSidecar
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false
	}
	if !finitePtr(raw.StartSeconds) || !finitePtr(raw.EndSeconds) {
		return nil, false
	}
	adj := &Adjustment{
		StartSeconds: *raw.StartSeconds,
		EndSeconds:   *raw.EndSeconds,
	}
	if finitePtr(raw.OriginalStartSeconds) {
		v := *raw.OriginalStartSeconds
		adj.OriginalStartSeconds = &v
	}
	if finitePtr(raw.OriginalEndSeconds) {
		v := *raw.OriginalEndSeconds
		adj.OriginalEndSeconds = &v
	}
	return adj, true
}

func adjustSidecarPath(clipPath string) string {
	return strings.TrimSuffix(clipPath, filepath.Ext(clipPath)) + AdjustSidecarSuffix
}

func finitePtr(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
